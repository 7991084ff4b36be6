package dispatch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/siloroute/internal/dispatch"
	"github.com/gyaneshwarpardhi/siloroute/internal/region"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

// recordingForwarder records which regions were dispatched to and fails some.
type recordingForwarder struct {
	mu      sync.Mutex
	called  []string
	failFor map[string]bool
}

func (f *recordingForwarder) Forward(ctx context.Context, reg region.Region, req *request.Request) *dispatch.Result {
	f.mu.Lock()
	f.called = append(f.called, reg.Name)
	f.mu.Unlock()
	if f.failFor[reg.Name] {
		return &dispatch.Result{Destination: reg.Name, Err: errors.New("boom")}
	}
	return &dispatch.Result{Destination: reg.Name, Status: http.StatusOK}
}

func regions(names ...string) []region.Region {
	out := make([]region.Region, len(names))
	for i, n := range names {
		out[i] = region.Region{Name: n, URL: "https://" + n + ".internal"}
	}
	return out
}

func TestBroadcast_OneCallPerRegion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &recordingForwarder{}
	b := dispatch.NewBroadcaster(ctx, f, 4, 16)
	defer b.Shutdown()

	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	req, _ := request.Capture(r, nil, request.RouteInteractions, "")

	results := b.Broadcast(context.Background(), regions("r1", "r2", "r3"), req)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if len(f.called) != 3 {
		t.Fatalf("forwarder called %d times, want 3", len(f.called))
	}
	seen := make(map[string]bool)
	for _, name := range f.called {
		if seen[name] {
			t.Errorf("region %s dispatched twice", name)
		}
		seen[name] = true
	}
}

func TestBroadcast_FailureDoesNotBlockOthers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &recordingForwarder{failFor: map[string]bool{"r2": true}}
	b := dispatch.NewBroadcaster(ctx, f, 2, 16)
	defer b.Shutdown()

	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	req, _ := request.Capture(r, nil, request.RouteInteractions, "")

	results := b.Broadcast(context.Background(), regions("r1", "r2", "r3"), req)

	var failed, succeeded int
	for _, res := range results {
		if res.Err != nil {
			failed++
			if res.Destination != "r2" {
				t.Errorf("unexpected failure for %s", res.Destination)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("failed=%d succeeded=%d, want 1/2", failed, succeeded)
	}
	if len(f.called) != 3 {
		t.Errorf("forwarder called %d times, want all 3 regions attempted", len(f.called))
	}
}

// gatedForwarder blocks each call until released, or until the call context
// is cancelled.
type gatedForwarder struct {
	entered chan struct{}
	release chan struct{}
}

func (f *gatedForwarder) Forward(ctx context.Context, reg region.Region, req *request.Request) *dispatch.Result {
	select {
	case f.entered <- struct{}{}:
	default:
	}
	select {
	case <-f.release:
	case <-ctx.Done():
		return &dispatch.Result{Destination: reg.Name, Err: ctx.Err()}
	}
	return &dispatch.Result{Destination: reg.Name, Status: http.StatusOK}
}

func TestBroadcast_QueuedJobsServicedAfterPoolCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &gatedForwarder{entered: make(chan struct{}, 1), release: make(chan struct{})}
	b := dispatch.NewBroadcaster(ctx, f, 1, 16)
	defer b.Shutdown()

	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	req, _ := request.Capture(r, nil, request.RouteInteractions, "")

	done := make(chan []*dispatch.Result, 1)
	go func() { done <- b.Broadcast(context.Background(), regions("r1", "r2", "r3"), req) }()

	<-f.entered // one call in flight, the rest queued behind the single worker
	cancel()    // pool context gone with jobs still queued
	close(f.release)

	select {
	case results := <-done:
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast never returned after pool context cancellation")
	}
}

func TestBroadcast_CallerCancelUnblocksCollection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &gatedForwarder{entered: make(chan struct{}, 1), release: make(chan struct{})}
	b := dispatch.NewBroadcaster(ctx, f, 1, 16)
	defer b.Shutdown()
	defer close(f.release)

	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	req, _ := request.Capture(r, nil, request.RouteInteractions, "")

	reqCtx, reqCancel := context.WithCancel(context.Background())
	defer reqCancel()
	done := make(chan []*dispatch.Result, 1)
	go func() { done <- b.Broadcast(reqCtx, regions("r1", "r2"), req) }()

	<-f.entered
	reqCancel()

	select {
	case results := <-done:
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
		for _, res := range results {
			if res.Err == nil {
				t.Errorf("region %s reported success after cancellation", res.Destination)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast never returned after caller cancellation")
	}
}

func TestBroadcast_AfterShutdownFailsFast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &recordingForwarder{}
	b := dispatch.NewBroadcaster(ctx, f, 2, 16)
	b.Shutdown()

	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	req, _ := request.Capture(r, nil, request.RouteInteractions, "")

	results := b.Broadcast(context.Background(), regions("r1", "r2"), req)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, res := range results {
		if !errors.Is(res.Err, dispatch.ErrQueueFull) {
			t.Errorf("region %s err = %v, want ErrQueueFull", res.Destination, res.Err)
		}
	}
	if len(f.called) != 0 {
		t.Errorf("forwarder called %d times after shutdown, want 0", len(f.called))
	}
}
