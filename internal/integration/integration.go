// Package integration resolves inbound requests to installed integration
// records. Records are read-only references; this layer never mutates them.
package integration

// Integration is the external identity record of one installed integration.
type Integration struct {
	ID         int64
	Provider   string
	ExternalID string
}
