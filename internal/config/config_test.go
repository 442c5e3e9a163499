package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "DATABASE_URL", "JWT_SECRET", "URGENT_LEVELS",
		"DICTIONARY_SOURCE", "DICTIONARY_CACHE_TTL", "INTEGRITY_REBUILD_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 || !cfg.IsDevelopment() {
		t.Errorf("unexpected server defaults %+v", cfg)
	}
	if cfg.DictionarySource != DictionaryFromFile || cfg.DictionaryCacheTTL != 10*time.Minute {
		t.Errorf("unexpected dictionary defaults %+v", cfg)
	}
	if cfg.IntegrityRebuildInterval != 5*time.Minute {
		t.Errorf("unexpected rebuild interval %v", cfg.IntegrityRebuildInterval)
	}
	if len(cfg.UrgentLevels) != 1 || cfg.UrgentLevels[0] != "urgent" {
		t.Errorf("unexpected urgent levels %v", cfg.UrgentLevels)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("URGENT_LEVELS", "high, urgent ,")
	t.Setenv("DICTIONARY_CACHE_TTL", "1")
	t.Setenv("ALLOWED_ORIGINS", "https://desk.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 || cfg.DictionaryCacheTTL != time.Minute {
		t.Errorf("unexpected overrides %+v", cfg)
	}
	if len(cfg.UrgentLevels) != 2 || cfg.UrgentLevels[1] != "urgent" {
		t.Errorf("unexpected urgent levels %q", cfg.UrgentLevels)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without database", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s", "DATABASE_URL": ""}},
		{"production without secret", map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://x", "JWT_SECRET": ""}},
		{"unknown dictionary source", map[string]string{"DICTIONARY_SOURCE": "ldap"}},
		{"postgres dictionary without database", map[string]string{"DICTIONARY_SOURCE": "postgres", "DATABASE_URL": ""}},
		{"zero rebuild interval", map[string]string{"INTEGRITY_REBUILD_INTERVAL": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
