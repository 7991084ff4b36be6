// Package dispatch performs the outbound half of routing: re-issuing the
// captured request to backend regions or handling it in the control silo.
// No retries happen at this layer; retry policy belongs to the caller's HTTP
// client downstream.
package dispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gyaneshwarpardhi/siloroute/internal/region"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

// Result is the downstream outcome for one dispatch destination.
type Result struct {
	Destination string // region name, or "control"
	Status      int
	Header      http.Header
	Body        []byte
	Err         error
}

// Forwarder re-issues a captured request to a backend region.
type Forwarder interface {
	Forward(ctx context.Context, reg region.Region, req *request.Request) *Result
}

// ControlHandler handles a request inside the local control silo.
type ControlHandler interface {
	Handle(ctx context.Context, req *request.Request) *Result
}

// ControlFunc adapts a function to the ControlHandler interface.
type ControlFunc func(ctx context.Context, req *request.Request) *Result

func (f ControlFunc) Handle(ctx context.Context, req *request.Request) *Result {
	return f(ctx, req)
}

// Hop-by-hop headers never forwarded to regions or proxied back.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// HTTPForwarder re-issues the original method, headers and body to a region's
// base URL and returns the region's response verbatim.
type HTTPForwarder struct {
	client *http.Client
}

func NewHTTPForwarder(timeout time.Duration) *HTTPForwarder {
	return &HTTPForwarder{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPForwarder) Forward(ctx context.Context, reg region.Region, req *request.Request) *Result {
	out, err := http.NewRequestWithContext(ctx, req.Method, reg.URL+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return &Result{Destination: reg.Name, Err: err}
	}
	out.Header = forwardableHeaders(req.Header)

	resp, err := f.client.Do(out)
	if err != nil {
		return &Result{Destination: reg.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Destination: reg.Name, Err: err}
	}
	return &Result{
		Destination: reg.Name,
		Status:      resp.StatusCode,
		Header:      forwardableHeaders(resp.Header),
		Body:        body,
	}
}

func forwardableHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, name := range hopHeaders {
		out.Del(name)
	}
	return out
}
