package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"promostudio/internal/http/handlers"
	"promostudio/internal/http/httpapi"
	"promostudio/internal/infra"
	"promostudio/internal/infra/credentials"
	"promostudio/internal/infra/geoip"
	"promostudio/internal/media"
	"promostudio/internal/promo"
	"promostudio/internal/providers/genai"
	"promostudio/internal/providers/video"
	"promostudio/internal/storage"
	"promostudio/internal/trademark"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// The stored operator key is only available with a database.
	var keyStore credentials.KeyStore
	var dbpool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		dbpool, err = infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		keyStore = credentials.NewStore(infra.NewSQLRunner(dbpool, logger))
	} else {
		logger.Warn().Msg("DATABASE_URL not set, no stored api key fallback")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}
	logger.Info().Str("root", files.Root()).Msg("saved videos are written under storage root")

	envKey := cfg.GeminiAPIKey
	var factory video.Factory
	switch cfg.VideoBackend {
	case infra.VideoBackendSynthetic:
		factory = video.NewSynthetic(2).Factory()
		if envKey == "" {
			envKey = "synthetic"
		}
	default:
		factory = video.NewVEOFactory(genai.Options{
			BaseURL:          cfg.GeminiBaseURL,
			Model:            cfg.VideoModel,
			HTTPClient:       &http.Client{Timeout: 5 * time.Minute},
			Logger:           &logger,
			MaxDownloadBytes: cfg.MaxVideoBytes,
		})
	}

	keys := credentials.NewSelector(credentials.SelectorOptions{
		EnvKey: envKey,
		Store:  keyStore,
		Window: cfg.KeySelectionTimeout,
		Logger: &logger,
	})

	mediaStore := media.NewStore("/v1/media")
	manager := promo.NewManager(promo.Config{
		Keys:         func(id string) video.KeySelector { return keys.ForSession(id) },
		Factory:      factory,
		Media:        mediaStore,
		PollInterval: cfg.VideoPollInterval,
		StepInterval: cfg.LoadingStepInterval,
		PollTimeout:  cfg.VideoPollTimeout,
		Logger:       &logger,
	}, cfg.SessionTTL, files)

	app := &handlers.App{
		Config:     *cfg,
		Logger:     &logger,
		Trademarks: trademark.NewFabricator(trademark.Options{Delay: cfg.TrademarkDelay, Logger: &logger}),
		History:    trademark.NewHistory(cfg.SessionTTL),
		Promo:      manager,
		Media:      mediaStore,
		Keys:       keys,
	}

	router := httpapi.NewRouter(app, resolver.Lookup())
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("video_backend", cfg.VideoBackend).
			Str("video_model", cfg.VideoModel).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	manager.Shutdown()
	logger.Info().Msg("server stopped")
}
