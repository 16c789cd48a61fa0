package config

import (
	"os"
	"testing"
)

func TestProductionConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("CONTEXTD_PRODUCTION_MODE")
	defer os.Unsetenv("CONTEXTD_LOCAL_MODE")
	os.Unsetenv("CONTEXTD_PRODUCTION_MODE")
	os.Unsetenv("CONTEXTD_LOCAL_MODE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Production.Enabled {
		t.Error("Production.Enabled = true, want false (disabled by default)")
	}
}

func TestProductionConfig_EnabledViaEnv(t *testing.T) {
	defer os.Unsetenv("CONTEXTD_PRODUCTION_MODE")
	os.Setenv("CONTEXTD_PRODUCTION_MODE", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if !cfg.Production.Enabled {
		t.Error("Production.Enabled = false, want true when CONTEXTD_PRODUCTION_MODE=1")
	}
}

func TestProductionConfig_Validate_RejectsNoIsolationInProduction(t *testing.T) {
	cfg := ProductionConfig{Enabled: true, AllowNoIsolation: true}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for AllowNoIsolation in production mode")
	}
}

func TestProductionConfig_Validate_RejectsUnconfiguredAuth(t *testing.T) {
	cfg := ProductionConfig{Enabled: true, RequireAuthentication: true, AuthenticationConfigured: false}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when authentication is required but not configured")
	}
}
