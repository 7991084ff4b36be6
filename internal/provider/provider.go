package provider

import (
	"errors"
	"net/http"
)

// ErrInvalidSignature means the inbound request failed the provider's signing
// check. Providers probe public endpoints with bad signatures on purpose, so
// this is an expected condition, not an incident.
var ErrInvalidSignature = errors.New("provider: invalid webhook signature")

// InteractionKind is the semantic type of a verified webhook.
type InteractionKind int

const (
	KindUnclassified InteractionKind = iota
	KindPing
	KindCommand
	KindBroadcastEvent
)

func (k InteractionKind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindCommand:
		return "command"
	case KindBroadcastEvent:
		return "broadcast_event"
	default:
		return "unclassified"
	}
}

// VerifiedRequest is the result of a successful signature check. At most one
// exists per inbound request; re-verifying an already-checked body is a defect.
type VerifiedRequest struct {
	// ExternalID is the provider-native identifier of the calling entity
	// (Discord guild, GitHub installation, ...). May be empty.
	ExternalID string
	// Event is the provider's event name, when carried out-of-band in a
	// header rather than the payload.
	Event string
	// Payload is the parsed request body.
	Payload map[string]interface{}
}

// Provider is the capability interface one webhook provider implements:
// verify the signature, classify the interaction, answer liveness probes.
// The router is written against this interface and never inspects concrete
// provider types.
type Provider interface {
	Name() string

	// Verify checks the signing headers against the already-buffered body and
	// parses the payload. It never reads from the network. A signature
	// mismatch returns ErrInvalidSignature.
	Verify(header http.Header, body []byte) (*VerifiedRequest, error)

	// Classify derives the interaction kind. Pure function of vr: repeated
	// calls on the same VerifiedRequest return the same kind.
	Classify(vr *VerifiedRequest) InteractionKind

	// Pong returns the protocol-defined acknowledgement body for a ping.
	Pong() []byte
}
