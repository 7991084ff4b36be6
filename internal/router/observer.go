package router

import (
	"log/slog"
	"strconv"

	"github.com/gyaneshwarpardhi/siloroute/internal/dispatch"
	"github.com/gyaneshwarpardhi/siloroute/internal/metrics"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
)

// TerminalEvent describes one terminal state transition of the dispatch
// policy. Emitted exactly once per request, used for visibility only, never
// for control flow.
type TerminalEvent struct {
	RequestID     string
	Provider      string
	Path          string
	Route         request.RouteKind
	Decision      Decision
	IntegrationID int64 // 0 when unresolved
	Results       []*dispatch.Result
	Err           error
}

// Observer is a hook invoked at each terminal state transition.
type Observer interface {
	Observe(ev TerminalEvent)
}

// LogObserver writes one structured log line per terminal state. Severity
// follows the error taxonomy: auth failures are routine probing (debug), bad
// control tokens mean tampering or misissuance (error).
type LogObserver struct {
	log *slog.Logger
}

func NewLogObserver(log *slog.Logger) *LogObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) Observe(ev TerminalEvent) {
	attrs := []any{
		"request_id", ev.RequestID,
		"provider", ev.Provider,
		"path", ev.Path,
		"route", ev.Route.String(),
		"outcome", string(ev.Decision.Outcome),
	}
	if ev.IntegrationID != 0 {
		attrs = append(attrs, "integration_id", ev.IntegrationID)
	}
	if len(ev.Decision.Regions) > 0 {
		attrs = append(attrs, "regions", regionNames(ev.Decision))
	}

	switch ev.Decision.Outcome {
	case OutcomeUnauthorized:
		o.log.Debug("webhook rejected", attrs...)
	case OutcomeBadToken:
		o.log.Error("control route token rejected", append(attrs, "err", ev.Err)...)
	case OutcomeResolveError:
		o.log.Error("integration resolution failed", append(attrs, "err", ev.Err)...)
	default:
		for _, res := range ev.Results {
			if res.Err != nil {
				o.log.Warn("region dispatch failed",
					"request_id", ev.RequestID,
					"destination", res.Destination,
					"err", res.Err,
				)
			}
		}
		o.log.Info("webhook dispatched", attrs...)
	}
}

func regionNames(dec Decision) []string {
	names := make([]string, len(dec.Regions))
	for i, r := range dec.Regions {
		names[i] = r.Name
	}
	return names
}

// MetricsObserver increments prometheus counters per terminal state.
type MetricsObserver struct{}

func (MetricsObserver) Observe(ev TerminalEvent) {
	outcome := string(ev.Decision.Outcome)
	metrics.Dispatches.WithLabelValues(ev.Provider, outcome).Inc()

	switch ev.Decision.Outcome {
	case OutcomeUnauthorized:
		metrics.AuthFailures.WithLabelValues(ev.Provider).Inc()
	case OutcomeBadToken:
		metrics.UnsignFailures.WithLabelValues(ev.Provider).Inc()
	case OutcomePong:
		metrics.Pongs.WithLabelValues(ev.Provider).Inc()
	case OutcomeControlSilo:
		// A fallback on the public endpoint is a miss only when the
		// integration or its regions did not resolve; unclassified payloads
		// from healthy integrations land here too.
		if ev.Route == request.RouteInteractions && (ev.IntegrationID == 0 || ev.Decision.ResolvedRegions == 0) {
			metrics.ResolutionMisses.WithLabelValues(ev.Provider).Inc()
		}
	}

	for _, res := range ev.Results {
		if res.Destination == "control" {
			continue
		}
		status := "error"
		if res.Err == nil {
			status = strconv.Itoa(res.Status)
		}
		metrics.RegionDispatches.WithLabelValues(res.Destination, status).Inc()
	}
}
