package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Storage != StorageMemory || cfg.LockBackend != LockMemory {
		t.Errorf("expected memory backends, got %q/%q", cfg.Storage, cfg.LockBackend)
	}
	if cfg.LockTTL != 10*time.Second || cfg.LockWait != 3*time.Second {
		t.Errorf("unexpected lock timings: ttl=%v wait=%v", cfg.LockTTL, cfg.LockWait)
	}
	if cfg.AuditWorkers != 4 {
		t.Errorf("expected 4 audit workers, got %d", cfg.AuditWorkers)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env by default")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s3cret",
		"STORAGE":      "mongo",
		"MONGO_DB":     "studio",
		"LOCK_BACKEND": "redis",
		"REDIS_ADDR":   "redis:6379",
		"LOCK_WAIT":    "500ms",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mongo.Database != "studio" {
		t.Errorf("expected database studio, got %q", cfg.Mongo.Database)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("expected redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.LockWait != 500*time.Millisecond {
		t.Errorf("expected 500ms lock wait, got %v", cfg.LockWait)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Storage:      StorageMemory,
			LockBackend:  LockMemory,
			LockWait:     time.Second,
			AuditWorkers: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown storage", func(c *Config) { c.Storage = "postgres" }, "STORAGE"},
		{"unknown lock backend", func(c *Config) { c.LockBackend = "etcd" }, "LOCK_BACKEND"},
		{"redis without addr", func(c *Config) { c.LockBackend = LockRedis }, "REDIS_ADDR"},
		{"zero wait", func(c *Config) { c.LockWait = 0 }, "LOCK_WAIT"},
		{"no workers", func(c *Config) { c.AuditWorkers = 0 }, "AUDIT_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
