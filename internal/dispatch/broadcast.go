package dispatch

import (
	"context"
	"errors"

	"github.com/gyaneshwarpardhi/siloroute/internal/region"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

// ErrQueueFull means the fan-out pool rejected a region call because its
// bounded queue was saturated. The region is reported as failed; other
// regions in the same broadcast are unaffected.
var ErrQueueFull = errors.New("dispatch: fan-out queue full")

type fanoutJob struct {
	ctx     context.Context
	reg     region.Region
	req     *request.Request
	resultC chan *Result
}

// Broadcaster fans a request out to every resolved region through a bounded
// worker pool. Region calls are independent: one failure never blocks the
// others, and there is no ordering guarantee between them.
type Broadcaster struct {
	forwarder Forwarder
	pool      *workerPool[*fanoutJob]
}

// NewBroadcaster starts the fan-out pool. workers caps concurrent outbound
// calls; queueDepth bounds pending calls across all in-flight broadcasts.
func NewBroadcaster(ctx context.Context, f Forwarder, workers, queueDepth int) *Broadcaster {
	b := &Broadcaster{forwarder: f}
	b.pool = newWorkerPool(ctx, workers, queueDepth, func(ctx context.Context, j *fanoutJob) {
		j.resultC <- b.forwarder.Forward(j.ctx, j.reg, j.req)
	})
	return b
}

// Broadcast dispatches req to every region and returns one Result per region.
// The caller guarantees regions contains no duplicates. When ctx is cancelled
// before every region answered, the unanswered regions report ctx.Err().
func (b *Broadcaster) Broadcast(ctx context.Context, regions []region.Region, req *request.Request) []*Result {
	resultC := make(chan *Result, len(regions))
	for _, reg := range regions {
		j := &fanoutJob{ctx: ctx, reg: reg, req: req, resultC: resultC}
		if !b.pool.Submit(j) {
			resultC <- &Result{Destination: reg.Name, Err: ErrQueueFull}
		}
	}

	results := make([]*Result, 0, len(regions))
	answered := make(map[string]bool, len(regions))
	for len(results) < len(regions) {
		select {
		case res := <-resultC:
			answered[res.Destination] = true
			results = append(results, res)
		case <-ctx.Done():
		drain:
			for {
				select {
				case res := <-resultC:
					answered[res.Destination] = true
					results = append(results, res)
				default:
					break drain
				}
			}
			for _, reg := range regions {
				if !answered[reg.Name] {
					results = append(results, &Result{Destination: reg.Name, Err: ctx.Err()})
				}
			}
			return results
		}
	}
	return results
}

// QueueUtilization returns fan-out queue used / capacity (0–1).
func (b *Broadcaster) QueueUtilization() float64 {
	if b.pool.QueueCap() == 0 {
		return 0
	}
	return float64(b.pool.QueueLen()) / float64(b.pool.QueueCap())
}

// Shutdown drains the fan-out pool gracefully.
func (b *Broadcaster) Shutdown() {
	b.pool.Drain()
}
