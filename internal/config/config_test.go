package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.fitsphere.test/")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" || cfg.Server.CookieName != "fitsphere_sid" {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.State.Driver != "memory" || cfg.State.TTL != 720*time.Hour {
		t.Fatalf("state = %+v", cfg.State)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("backend timeout = %v", cfg.Backend.Timeout)
	}
	if cfg.Backend.RealtimeURL != "wss://api.fitsphere.test/ws" {
		t.Fatalf("realtime url = %q", cfg.Backend.RealtimeURL)
	}
	if cfg.S3.Enabled() || cfg.S3.PresignExpiry != 15*time.Minute {
		t.Fatalf("s3 = %+v", cfg.S3)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
state:
  driver: redis
redis:
  address: cache:6379
s3:
  bucket_name: exports
backend:
  realtime_url: ws://chat.internal/socket
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.State.Driver != "redis" || cfg.Redis.Address != "cache:6379" {
		t.Fatalf("state/redis = %+v %+v", cfg.State, cfg.Redis)
	}
	if !cfg.S3.Enabled() {
		t.Fatal("bucket configured but S3 disabled")
	}
	if cfg.Backend.RealtimeURL != "ws://chat.internal/socket" {
		t.Fatalf("explicit realtime url overridden: %q", cfg.Backend.RealtimeURL)
	}
}

func TestDeriveRealtimeURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8001":    "ws://localhost:8001/ws",
		"https://api.example.com":  "wss://api.example.com/ws",
		"https://api.example.com/": "wss://api.example.com/ws",
	}
	for in, want := range tests {
		if got := DeriveRealtimeURL(in); got != want {
			t.Errorf("DeriveRealtimeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
