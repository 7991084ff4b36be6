package dispatch_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/siloroute/internal/dispatch"
	"github.com/gyaneshwarpardhi/siloroute/internal/region"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

func capture(t *testing.T, method, path string, body []byte, header http.Header) *request.Request {
	t.Helper()
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	for name, values := range header {
		r.Header[name] = values
	}
	req, err := request.Capture(r, nil, request.RouteInteractions, "")
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	return req
}

func TestForward_ReissuesRequestVerbatim(t *testing.T) {
	var gotMethod, gotPath, gotSignature string
	var gotBody []byte
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotSignature = r.Header.Get("X-Signature-Ed25519")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("X-Backend", "r1")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"handled":true}`))
	}))
	defer backend.Close()

	header := http.Header{}
	header.Set("X-Signature-Ed25519", "abc123")
	header.Set("Connection", "keep-alive") // hop-by-hop, must not be forwarded
	req := capture(t, http.MethodPost, "/extensions/discord/interactions", []byte(`{"type":2}`), header)

	f := dispatch.NewHTTPForwarder(5 * time.Second)
	res := f.Forward(context.Background(), region.Region{Name: "r1", URL: backend.URL}, req)

	if res.Err != nil {
		t.Fatalf("Forward error: %v", res.Err)
	}
	if gotMethod != http.MethodPost || gotPath != "/extensions/discord/interactions" {
		t.Errorf("backend saw %s %s", gotMethod, gotPath)
	}
	if gotSignature != "abc123" {
		t.Errorf("signature header not forwarded, got %q", gotSignature)
	}
	if !bytes.Equal(gotBody, []byte(`{"type":2}`)) {
		t.Errorf("body not forwarded verbatim: %q", gotBody)
	}
	if res.Status != http.StatusAccepted {
		t.Errorf("Status = %d, want 202", res.Status)
	}
	if res.Header.Get("X-Backend") != "r1" {
		t.Errorf("response header not proxied: %v", res.Header)
	}
	if !bytes.Equal(res.Body, []byte(`{"handled":true}`)) {
		t.Errorf("response body not proxied: %q", res.Body)
	}
}

func TestForward_Unreachable(t *testing.T) {
	req := capture(t, http.MethodPost, "/x", nil, nil)
	f := dispatch.NewHTTPForwarder(500 * time.Millisecond)
	res := f.Forward(context.Background(), region.Region{Name: "r1", URL: "http://127.0.0.1:1"}, req)
	if res.Err == nil {
		t.Fatal("expected transport error, got nil")
	}
	if res.Destination != "r1" {
		t.Errorf("Destination = %q, want r1", res.Destination)
	}
}
