// Package request holds the buffered view of one inbound webhook call.
package request

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/siloroute/internal/provider"
)

// RouteKind tags which class of endpoint received the request. It is attached
// at route-registration time and drives the dispatch policy.
type RouteKind int

const (
	RouteUnknown RouteKind = iota
	// RouteInteractions is the provider's public webhook endpoint; signature
	// verification applies.
	RouteInteractions
	// RouteControl is an internally-signed action route (identity
	// link/unlink); token unsigning applies, provider verification does not.
	RouteControl
)

func (k RouteKind) String() string {
	switch k {
	case RouteInteractions:
		return "interactions"
	case RouteControl:
		return "control"
	default:
		return "unknown"
	}
}

// Request is the immutable view of one inbound call. The raw body is read
// exactly once, at capture time; verification is memoized so the body is
// parsed at most once no matter how many components ask for it.
type Request struct {
	ID     string
	Method string
	Path   string
	Header http.Header
	Body   []byte
	Route  RouteKind

	// SignedParams is the opaque token from the URL on control routes.
	SignedParams string

	prov provider.Provider

	verifyOnce sync.Once
	verified   *provider.VerifiedRequest
	verifyErr  error
}

// Capture buffers the inbound request. The body reader is fully consumed here
// and never touched again.
func Capture(r *http.Request, prov provider.Provider, route RouteKind, signedParams string) (*Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("request: read body: %w", err)
	}
	return &Request{
		ID:           uuid.New().String(),
		Method:       r.Method,
		Path:         r.URL.Path,
		Header:       r.Header.Clone(),
		Body:         body,
		Route:        route,
		SignedParams: signedParams,
		prov:         prov,
	}, nil
}

// Provider returns the provider this request was routed to (nil if unknown).
func (r *Request) Provider() provider.Provider { return r.prov }

// ProviderName returns the provider name, or "" when no provider matched.
func (r *Request) ProviderName() string {
	if r.prov == nil {
		return ""
	}
	return r.prov.Name()
}

// Verified returns the memoized verification result. The underlying Verify
// runs at most once per request. On routes other than the public interactions
// endpoint there is nothing to verify and Verified returns (nil, nil).
func (r *Request) Verified() (*provider.VerifiedRequest, error) {
	r.verifyOnce.Do(func() {
		if r.Route != RouteInteractions || r.prov == nil {
			return
		}
		r.verified, r.verifyErr = r.prov.Verify(r.Header, r.Body)
	})
	return r.verified, r.verifyErr
}
