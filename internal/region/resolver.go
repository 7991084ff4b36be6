package region

import (
	"sort"
	"sync/atomic"

	"github.com/gyaneshwarpardhi/siloroute/internal/config"
	"github.com/gyaneshwarpardhi/siloroute/internal/integration"
)

// OrganizationLookup reports the organizations an integration belongs to.
type OrganizationLookup interface {
	Organizations(integrationID int64) []int64
}

type snapshot struct {
	byOrg map[int64]Region
}

// Resolver turns an Integration into the distinct set of owning regions via
// organization membership. The org→region table is an atomic snapshot,
// swapped on config hot-reload.
type Resolver struct {
	orgs OrganizationLookup
	snap atomic.Pointer[snapshot]
}

// NewResolver builds a Resolver from the initial config.
func NewResolver(orgs OrganizationLookup, cfg *config.Config) *Resolver {
	r := &Resolver{orgs: orgs}
	r.Swap(cfg)
	return r
}

// Swap atomically replaces the org→region table.
func (r *Resolver) Swap(cfg *config.Config) {
	byName := make(map[string]Region, len(cfg.Regions))
	for _, rc := range cfg.Regions {
		byName[rc.Name] = Region{Name: rc.Name, URL: rc.URL}
	}
	next := &snapshot{byOrg: make(map[int64]Region, len(cfg.Organizations))}
	for _, o := range cfg.Organizations {
		if reg, ok := byName[o.Region]; ok {
			next.byOrg[o.ID] = reg
		}
	}
	r.snap.Store(next)
}

// RegionsFor returns the distinct regions owning integ's organizations,
// sorted by name. Single-region dispatch picks the first entry, so the order
// must be stable across runs, not map-iteration order. A nil integration or
// an integration with no region-bound organizations yields an empty set.
func (r *Resolver) RegionsFor(integ *integration.Integration) []Region {
	if integ == nil {
		return nil
	}
	snap := r.snap.Load()
	seen := make(map[string]bool)
	var out []Region
	for _, orgID := range r.orgs.Organizations(integ.ID) {
		reg, ok := snap.byOrg[orgID]
		if !ok || seen[reg.Name] {
			continue
		}
		seen[reg.Name] = true
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
