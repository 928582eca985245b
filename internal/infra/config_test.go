package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("VIDEO_BACKEND", "")
	t.Setenv("VIDEO_POLL_INTERVAL_SECONDS", "")
	t.Setenv("LOADING_STEP_INTERVAL_SECONDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("MAX_VIDEO_MB", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VideoBackend != VideoBackendVeo {
		t.Fatalf("VideoBackend = %q, want %q", cfg.VideoBackend, VideoBackendVeo)
	}
	if cfg.VideoPollInterval != 10*time.Second {
		t.Fatalf("VideoPollInterval = %s, want 10s", cfg.VideoPollInterval)
	}
	if cfg.LoadingStepInterval != 5*time.Second {
		t.Fatalf("LoadingStepInterval = %s, want 5s", cfg.LoadingStepInterval)
	}
	if cfg.MaxVideoBytes != 256<<20 {
		t.Fatalf("MaxVideoBytes = %d, want 256 MiB", cfg.MaxVideoBytes)
	}
	if cfg.VideoPollTimeout != 0 {
		t.Fatalf("VideoPollTimeout = %s, want unbounded", cfg.VideoPollTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("VIDEO_BACKEND", "sora")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown video backend")
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("VIDEO_BACKEND", "Synthetic")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://promo.example.com, ,https://www.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VideoBackend != VideoBackendSynthetic {
		t.Fatalf("VideoBackend = %q, want %q", cfg.VideoBackend, VideoBackendSynthetic)
	}
	expected := []string{"https://promo.example.com", "https://www.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsNonPositivePollInterval(t *testing.T) {
	t.Setenv("VIDEO_BACKEND", "")
	t.Setenv("VIDEO_POLL_INTERVAL_SECONDS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero poll interval")
	}
}

func TestLoadConfigRejectsNonPositiveVideoLimit(t *testing.T) {
	t.Setenv("VIDEO_BACKEND", "")
	t.Setenv("MAX_VIDEO_MB", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero video size limit")
	}
}
