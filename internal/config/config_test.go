package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q, want :3000", cfg.ServerAddr)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.ListTTL != 5*time.Minute || cfg.ItemTTL != 30*time.Minute || cfg.PyramidTTL != time.Hour {
		t.Errorf("TTLs = %v/%v/%v, want 5m/30m/1h", cfg.ListTTL, cfg.ItemTTL, cfg.PyramidTTL)
	}
	if cfg.ImportBatchSize != 100 {
		t.Errorf("ImportBatchSize = %d, want 100", cfg.ImportBatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("CACHE_LIST_TTL", "90s")
	t.Setenv("IMPORT_BATCH_SIZE", "250")

	cfg := Load()

	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want :8080", cfg.ServerAddr)
	}
	if cfg.ListTTL != 90*time.Second {
		t.Errorf("ListTTL = %v, want 90s", cfg.ListTTL)
	}
	if cfg.ImportBatchSize != 250 {
		t.Errorf("ImportBatchSize = %d, want 250", cfg.ImportBatchSize)
	}
}

func TestIsDev(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{Env: tt.env}
		if got := cfg.IsDev(); got != tt.want {
			t.Errorf("IsDev() with Env=%q = %v, want %v", tt.env, got, tt.want)
		}
	}
}
