package dispatch

import (
	"context"
	"net/http"

	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

// LocalControl answers control-silo requests in-process. The real identity
// link/unlink views are an external collaborator; this handler acknowledges
// the request so the control silo is a dispatch target like any region.
func LocalControl() ControlHandler {
	return ControlFunc(func(ctx context.Context, req *request.Request) *Result {
		header := http.Header{}
		header.Set("Content-Type", "application/json")
		return &Result{
			Destination: "control",
			Status:      http.StatusOK,
			Header:      header,
			Body:        []byte(`{"silo":"control"}`),
		}
	})
}
