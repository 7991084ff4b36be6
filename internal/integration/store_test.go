package integration_test

import (
	"testing"

	"github.com/gyaneshwarpardhi/siloroute/internal/config"
	"github.com/gyaneshwarpardhi/siloroute/internal/integration"
)

func testConfig() *config.Config {
	return &config.Config{
		Integrations: []config.IntegrationConf{
			{ID: 42, Provider: "discord", ExternalID: "guild-1", Organizations: []int64{101, 102}},
			{ID: 43, Provider: "github", ExternalID: "991", Organizations: []int64{101}},
		},
	}
}

func TestStore_Lookups(t *testing.T) {
	s := integration.NewStore(testConfig())

	if got := s.ByID(42); got == nil || got.ExternalID != "guild-1" {
		t.Errorf("ByID(42) = %+v, want guild-1", got)
	}
	if got := s.ByID(99); got != nil {
		t.Errorf("ByID(99) = %+v, want nil", got)
	}
	if got := s.ByExternal("discord", "guild-1"); got == nil || got.ID != 42 {
		t.Errorf("ByExternal(discord, guild-1) = %+v, want id 42", got)
	}
	if got := s.ByExternal("github", "guild-1"); got != nil {
		t.Errorf("ByExternal with wrong provider = %+v, want nil", got)
	}
	if got := s.ByExternal("discord", ""); got != nil {
		t.Errorf("ByExternal with empty id = %+v, want nil", got)
	}
	if got := s.Organizations(42); len(got) != 2 {
		t.Errorf("Organizations(42) = %v, want 2 entries", got)
	}
	if got := s.Organizations(99); got != nil {
		t.Errorf("Organizations(99) = %v, want nil", got)
	}
}

func TestStore_Swap(t *testing.T) {
	s := integration.NewStore(testConfig())
	s.Swap(&config.Config{
		Integrations: []config.IntegrationConf{
			{ID: 50, Provider: "discord", ExternalID: "guild-2"},
		},
	})

	if got := s.ByID(42); got != nil {
		t.Errorf("ByID(42) after Swap = %+v, want nil", got)
	}
	if got := s.ByID(50); got == nil {
		t.Error("ByID(50) after Swap = nil, want integration")
	}
}
