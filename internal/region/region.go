// Package region maps resolved integrations to the backend regions that own
// their data.
package region

// Region is one independently deployed backend unit.
type Region struct {
	Name string
	URL  string
}
