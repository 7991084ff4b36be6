// Package router implements the dispatch policy: given one captured webhook
// request, decide between control-silo handling, a single-region forward, or
// an all-region broadcast, and execute exactly that.
package router

import (
	"context"
	"net/http"

	"github.com/gyaneshwarpardhi/siloroute/internal/dispatch"
	"github.com/gyaneshwarpardhi/siloroute/internal/integration"
	"github.com/gyaneshwarpardhi/siloroute/internal/provider"
	"github.com/gyaneshwarpardhi/siloroute/internal/region"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

// Outcome is the terminal state of the dispatch policy.
type Outcome string

const (
	OutcomeControlSilo  Outcome = "control_silo"
	OutcomeForward      Outcome = "region_forward"
	OutcomeBroadcast    Outcome = "region_broadcast"
	OutcomePong         Outcome = "pong"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeBadToken     Outcome = "bad_token"
	OutcomeResolveError Outcome = "resolve_error"
)

// Decision records which terminal state fired and the regions involved.
// It is computed once per request and immutable after that.
type Decision struct {
	Outcome Outcome
	Kind    provider.InteractionKind
	// ResolvedRegions is how many regions resolved for the request's
	// integration; zero when resolution never ran or found none. A
	// control-silo fallback with resolution intact is not a miss.
	ResolvedRegions int
	Regions         []region.Region
}

// Response is what the ingress returns to the original caller.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// IntegrationResolver is the integration lookup collaborator.
type IntegrationResolver interface {
	Resolve(req *request.Request) (*integration.Integration, error)
}

// RegionResolver is the region lookup collaborator.
type RegionResolver interface {
	RegionsFor(integ *integration.Integration) []region.Region
}

// Broadcaster fans one request out to several regions.
type Broadcaster interface {
	Broadcast(ctx context.Context, regions []region.Region, req *request.Request) []*dispatch.Result
}

// Router executes the dispatch policy. It holds no per-request state; one
// Router serves all requests concurrently.
type Router struct {
	integrations IntegrationResolver
	regions      RegionResolver
	control      dispatch.ControlHandler
	forwarder    dispatch.Forwarder
	broadcaster  Broadcaster
	observers    []Observer
}

func New(
	integrations IntegrationResolver,
	regions RegionResolver,
	control dispatch.ControlHandler,
	forwarder dispatch.Forwarder,
	broadcaster Broadcaster,
) *Router {
	return &Router{
		integrations: integrations,
		regions:      regions,
		control:      control,
		forwarder:    forwarder,
		broadcaster:  broadcaster,
	}
}

// AddObserver registers a hook invoked once per terminal state. Observers do
// the logging and metrics so the state machine itself stays free of I/O.
func (rt *Router) AddObserver(o Observer) {
	rt.observers = append(rt.observers, o)
}

// Dispatch runs the decision policy for req and executes the terminal state.
// Precedence: control routes, missing verification and pings are all settled
// before any integration or region lookup, so high-volume liveness probes and
// misconfigured clients never touch the resolvers.
func (rt *Router) Dispatch(ctx context.Context, req *request.Request) *Response {
	// 1. Control-class routes never leave the control silo, whatever the
	// body or signature contain. The signed token must still unsign cleanly.
	if req.Route == request.RouteControl {
		integ, err := rt.integrations.Resolve(req)
		if err != nil {
			rt.emit(req, Decision{Outcome: OutcomeBadToken}, nil, nil, err)
			return &Response{Status: http.StatusBadRequest}
		}
		res := rt.control.Handle(ctx, req)
		rt.emit(req, Decision{Outcome: OutcomeControlSilo}, integ, []*dispatch.Result{res}, nil)
		return toResponse(res)
	}

	// 2. Unrecognized route shapes degrade to control-silo handling.
	if req.Route != request.RouteInteractions {
		res := rt.control.Handle(ctx, req)
		rt.emit(req, Decision{Outcome: OutcomeControlSilo}, nil, []*dispatch.Result{res}, nil)
		return toResponse(res)
	}

	// 3. Providers probe the public endpoint with invalid signatures as a
	// routine security check; the answer is a plain 401, nothing else runs.
	vr, err := req.Verified()
	if err != nil {
		rt.emit(req, Decision{Outcome: OutcomeUnauthorized}, nil, nil, err)
		return &Response{Status: http.StatusUnauthorized}
	}
	if vr == nil {
		res := rt.control.Handle(ctx, req)
		rt.emit(req, Decision{Outcome: OutcomeControlSilo}, nil, []*dispatch.Result{res}, nil)
		return toResponse(res)
	}

	// 4. Pings are acknowledged before any lookup so probes stay cheap.
	kind := req.Provider().Classify(vr)
	if kind == provider.KindPing {
		rt.emit(req, Decision{Outcome: OutcomePong, Kind: kind}, nil, nil, nil)
		header := http.Header{}
		header.Set("Content-Type", "application/json")
		return &Response{Status: http.StatusOK, Header: header, Body: req.Provider().Pong()}
	}

	integ, err := rt.integrations.Resolve(req)
	if err != nil {
		// The interactions path carries no token, so a resolver failure here
		// is an internal fault, not a client error.
		rt.emit(req, Decision{Outcome: OutcomeResolveError, Kind: kind}, nil, nil, err)
		return &Response{Status: http.StatusInternalServerError}
	}
	regions := rt.regions.RegionsFor(integ)

	// 5. No owning regions: the control silo answers, whatever the kind.
	if len(regions) == 0 {
		res := rt.control.Handle(ctx, req)
		rt.emit(req, Decision{Outcome: OutcomeControlSilo, Kind: kind}, integ, []*dispatch.Result{res}, nil)
		return toResponse(res)
	}

	switch kind {
	case provider.KindCommand:
		// 6. Commands are scoped to one tenant: first region in the stable
		// name order.
		res := rt.forwarder.Forward(ctx, regions[0], req)
		rt.emit(req, Decision{Outcome: OutcomeForward, Kind: kind, ResolvedRegions: len(regions), Regions: regions[:1]}, integ, []*dispatch.Result{res}, res.Err)
		return toResponse(res)

	case provider.KindBroadcastEvent:
		// 7. Every owning region sees the event; failures are per-region.
		results := rt.broadcaster.Broadcast(ctx, regions, req)
		rt.emit(req, Decision{Outcome: OutcomeBroadcast, Kind: kind, ResolvedRegions: len(regions), Regions: regions}, integ, results, nil)
		return aggregate(results)
	}

	// 8. Unclassified payloads fall back to the control silo.
	res := rt.control.Handle(ctx, req)
	rt.emit(req, Decision{Outcome: OutcomeControlSilo, Kind: kind, ResolvedRegions: len(regions)}, integ, []*dispatch.Result{res}, nil)
	return toResponse(res)
}

// toResponse proxies one downstream result back verbatim. A transport error
// maps to 502; the downstream status is otherwise passed through unchanged.
func toResponse(res *dispatch.Result) *Response {
	if res.Err != nil {
		return &Response{Status: http.StatusBadGateway}
	}
	return &Response{Status: res.Status, Header: res.Header, Body: res.Body}
}

// aggregate picks the response for a broadcast: the first region that
// answered without a transport error, 502 if none did. Individual failures
// are already reported through the observer hook.
func aggregate(results []*dispatch.Result) *Response {
	for _, res := range results {
		if res.Err == nil {
			return toResponse(res)
		}
	}
	return &Response{Status: http.StatusBadGateway}
}

func (rt *Router) emit(req *request.Request, dec Decision, integ *integration.Integration, results []*dispatch.Result, err error) {
	ev := TerminalEvent{
		RequestID: req.ID,
		Provider:  req.ProviderName(),
		Path:      req.Path,
		Route:     req.Route,
		Decision:  dec,
		Results:   results,
		Err:       err,
	}
	if integ != nil {
		ev.IntegrationID = integ.ID
	}
	for _, o := range rt.observers {
		o.Observe(ev)
	}
}
