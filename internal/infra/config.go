package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	VideoBackendVeo       = "veo"
	VideoBackendSynthetic = "synthetic"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	DatabaseURL         string
	StoragePath         string
	GeoIPDBPath         string
	DefaultLocale       string
	CORSAllowedOrigins  []string
	GeminiAPIKey        string
	GeminiBaseURL       string
	VideoModel          string
	VideoBackend        string
	VideoPollInterval   time.Duration
	LoadingStepInterval time.Duration
	VideoPollTimeout    time.Duration
	KeySelectionTimeout time.Duration
	SessionTTL          time.Duration
	TrademarkDelay      time.Duration
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
	MaxVideoBytes       int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		StoragePath:         getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		GeminiAPIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VideoModel:          getEnv("VIDEO_MODEL", "veo-3.1-fast-generate-preview"),
		VideoBackend:        strings.ToLower(getEnv("VIDEO_BACKEND", VideoBackendVeo)),
		VideoPollInterval:   time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)),
		LoadingStepInterval: time.Second * time.Duration(getEnvInt("LOADING_STEP_INTERVAL_SECONDS", 5)),
		VideoPollTimeout:    time.Second * time.Duration(getEnvInt("VIDEO_POLL_TIMEOUT_SECONDS", 0)),
		KeySelectionTimeout: time.Second * time.Duration(getEnvInt("KEY_SELECTION_TIMEOUT_SECONDS", 120)),
		SessionTTL:          time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)),
		TrademarkDelay:      time.Millisecond * time.Duration(getEnvInt("TRADEMARK_DELAY_MS", 1500)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MaxVideoBytes:       int64(getEnvInt("MAX_VIDEO_MB", 256)) << 20,
	}

	switch cfg.VideoBackend {
	case VideoBackendVeo, VideoBackendSynthetic:
	default:
		return nil, fmt.Errorf("VIDEO_BACKEND must be %q or %q, got %q", VideoBackendVeo, VideoBackendSynthetic, cfg.VideoBackend)
	}

	if cfg.VideoPollInterval <= 0 {
		return nil, fmt.Errorf("VIDEO_POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.LoadingStepInterval <= 0 {
		return nil, fmt.Errorf("LOADING_STEP_INTERVAL_SECONDS must be positive")
	}
	if cfg.MaxVideoBytes <= 0 {
		return nil, fmt.Errorf("MAX_VIDEO_MB must be positive")
	}
	if cfg.VideoPollTimeout < 0 {
		cfg.VideoPollTimeout = 0
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
