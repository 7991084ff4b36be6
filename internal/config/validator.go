package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - Duplicate provider/region names and organization/integration IDs
//   - Dangling references (org → region, integration → org)
//   - Required fields and signing material
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Version == "" {
		errs = append(errs, "version is required")
	}
	if cfg.SigningSecret == "" {
		errs = append(errs, "signing_secret is required")
	}

	providers := make(map[string]bool)
	for i, p := range cfg.Providers {
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("providers[%d]: name is required", i))
			continue
		}
		if providers[p.Name] {
			errs = append(errs, fmt.Sprintf("duplicate provider %q", p.Name))
		}
		providers[p.Name] = true
		if p.PublicKey == "" && p.WebhookSecret == "" {
			errs = append(errs, fmt.Sprintf("provider %s: one of public_key or webhook_secret is required", p.Name))
		}
	}

	regions := make(map[string]bool)
	for i, r := range cfg.Regions {
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("regions[%d]: name is required", i))
			continue
		}
		if regions[r.Name] {
			errs = append(errs, fmt.Sprintf("duplicate region %q", r.Name))
		}
		regions[r.Name] = true
		if r.URL == "" {
			errs = append(errs, fmt.Sprintf("region %s: url is required", r.Name))
		}
	}

	orgs := make(map[int64]bool)
	for i, o := range cfg.Organizations {
		if o.ID == 0 {
			errs = append(errs, fmt.Sprintf("organizations[%d]: id is required", i))
			continue
		}
		if orgs[o.ID] {
			errs = append(errs, fmt.Sprintf("duplicate organization %d", o.ID))
		}
		orgs[o.ID] = true
		if !regions[o.Region] {
			errs = append(errs, fmt.Sprintf("organization %d: unknown region %q", o.ID, o.Region))
		}
	}

	integrations := make(map[int64]bool)
	for i, in := range cfg.Integrations {
		if in.ID == 0 {
			errs = append(errs, fmt.Sprintf("integrations[%d]: id is required", i))
			continue
		}
		if integrations[in.ID] {
			errs = append(errs, fmt.Sprintf("duplicate integration %d", in.ID))
		}
		integrations[in.ID] = true
		if !providers[in.Provider] {
			errs = append(errs, fmt.Sprintf("integration %d: unknown provider %q", in.ID, in.Provider))
		}
		if in.ExternalID == "" {
			errs = append(errs, fmt.Sprintf("integration %d: external_id is required", in.ID))
		}
		for _, orgID := range in.Organizations {
			if !orgs[orgID] {
				errs = append(errs, fmt.Sprintf("integration %d: unknown organization %d", in.ID, orgID))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
