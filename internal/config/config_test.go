package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.MaxPaws <= 0 {
		t.Fatalf("expected default max paws")
	}
	if cfg.WalkSpeedLimitMps <= 0 {
		t.Fatalf("expected default walk speed limit")
	}
	if cfg.AdProvider != "stub" {
		t.Fatalf("expected stub ad provider by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MAX_PAWS", "9")
	t.Setenv("AD_PROVIDER", "network")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.MaxPaws != 9 {
		t.Fatalf("expected override max paws")
	}
	if cfg.AdProvider != "network" {
		t.Fatalf("expected override ad provider")
	}
}
