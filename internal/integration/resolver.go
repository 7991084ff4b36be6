package integration

import (
	"log/slog"

	"github.com/gyaneshwarpardhi/siloroute/internal/request"
	"github.com/gyaneshwarpardhi/siloroute/internal/signing"
)

// Resolver maps one inbound request to its Integration record. Two disjoint
// paths: control routes carry a signed token, public routes carry the
// provider-native external ID recovered during verification.
type Resolver struct {
	store *Store
	codec *signing.Codec
}

func NewResolver(store *Store, codec *signing.Codec) *Resolver {
	return &Resolver{store: store, codec: codec}
}

// Resolve returns the integration for req, or nil when none matches. A nil
// result is not an error; the router degrades to control-silo handling.
// Unsigning failure on a control route is a hard error (signing.ErrBadToken).
func (r *Resolver) Resolve(req *request.Request) (*Integration, error) {
	switch req.Route {
	case request.RouteControl:
		claims, err := r.codec.Unsign(req.SignedParams)
		if err != nil {
			return nil, err
		}
		slog.Info("integration resolved from signed params",
			"provider", req.ProviderName(),
			"path", req.Path,
			"integration_id", claims.IntegrationID,
		)
		return r.store.ByID(claims.IntegrationID), nil

	case request.RouteInteractions:
		vr, err := req.Verified()
		if err != nil || vr == nil {
			return nil, nil
		}
		return r.store.ByExternal(req.ProviderName(), vr.ExternalID), nil
	}

	slog.Info("integration resolution skipped: unrecognized route", "path", req.Path)
	return nil, nil
}
