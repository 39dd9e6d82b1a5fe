package config

import (
	"testing"
	"time"
)

func TestLoadMemoryStoreSkipsDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE", StoreMemory)
	t.Setenv("LIFECYCLE_MAX_ATTEMPTS", "5")

	cfg := Load()
	if cfg.Store != StoreMemory || cfg.DBHost != "" {
		t.Fatalf("unexpected store config: %+v", cfg)
	}
	if cfg.MaxAttempts != 5 || cfg.CascadeSweeps != 2 || cfg.ServiceName != "lifecycle" || cfg.LifecycleLogDir != "logs" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 || cfg.RefillInterval != 2*time.Second {
		t.Fatalf("unexpected bucket: %+v", cfg)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("ttl must cover five refill intervals, got %s", cfg.TTL)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_ENABLED", "off")

	cfg := LoadCacheConfig()
	if cfg.Enabled || !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.TTL != 5*time.Second {
		t.Fatalf("unexpected cache config: %+v", cfg)
	}
}
