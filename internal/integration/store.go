package integration

import (
	"sync/atomic"

	"github.com/gyaneshwarpardhi/siloroute/internal/config"
)

type externalKey struct {
	provider   string
	externalID string
}

// snapshot is immutable once built; hot-reload builds a new one and swaps.
type snapshot struct {
	byID       map[int64]*Integration
	byExternal map[externalKey]*Integration
	orgs       map[int64][]int64 // integration id → organization ids
}

// Store is the config-backed integration lookup. Reads are lock-free against
// an atomic snapshot, safe for concurrent request handling.
type Store struct {
	snap atomic.Pointer[snapshot]
}

// NewStore builds a Store from the initial config.
func NewStore(cfg *config.Config) *Store {
	s := &Store{}
	s.Swap(cfg)
	return s
}

// Swap atomically replaces the lookup tables (used on config hot-reload).
func (s *Store) Swap(cfg *config.Config) {
	next := &snapshot{
		byID:       make(map[int64]*Integration, len(cfg.Integrations)),
		byExternal: make(map[externalKey]*Integration, len(cfg.Integrations)),
		orgs:       make(map[int64][]int64, len(cfg.Integrations)),
	}
	for _, in := range cfg.Integrations {
		rec := &Integration{ID: in.ID, Provider: in.Provider, ExternalID: in.ExternalID}
		next.byID[rec.ID] = rec
		next.byExternal[externalKey{in.Provider, in.ExternalID}] = rec
		next.orgs[rec.ID] = append([]int64(nil), in.Organizations...)
	}
	s.snap.Store(next)
}

// ByID returns the integration with the given ID, or nil.
func (s *Store) ByID(id int64) *Integration {
	return s.snap.Load().byID[id]
}

// ByExternal returns the integration registered for (provider, externalID), or nil.
func (s *Store) ByExternal(provider, externalID string) *Integration {
	if externalID == "" {
		return nil
	}
	return s.snap.Load().byExternal[externalKey{provider, externalID}]
}

// Organizations returns the organization IDs associated with an integration.
func (s *Store) Organizations(integrationID int64) []int64 {
	return s.snap.Load().orgs[integrationID]
}
