// Command server runs the story backend HTTP API.
//
// Startup order: environment (.env optional), configuration, logging,
// OpenTelemetry (optional), SQLite + migrations, media store, provider
// slots, router. Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-story-backend/internal/config"
	httpapi "github.com/tbourn/go-story-backend/internal/http"
	"github.com/tbourn/go-story-backend/internal/media"
	"github.com/tbourn/go-story-backend/internal/observability"
	"github.com/tbourn/go-story-backend/internal/provider"
	"github.com/tbourn/go-story-backend/internal/repo"
	"github.com/tbourn/go-story-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// @title        Story Backend API
// @version      1.0
// @description  REST backend for short narrated stories: persistence with full-text search, audio artifacts, a playback queue, share links, and an LLM/TTS generation pipeline with provider fallback.
// @BasePath     /api/v1
func main() {
	// Local development convenience; missing files are fine and real
	// environment always wins.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
		if err != nil {
			log.Fatal().Err(err).Msg("otel setup failed")
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Warn().Err(err).Msg("otel shutdown")
			}
		}()
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing")
		}
	}

	store, err := media.NewStore(cfg.MediaDir, log.With().Str("component", "media").Logger())
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("media store")
	}

	text, speech := buildProviders(cfg.Providers)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, store, text, speech, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("stopped")
}

// setupLogging configures the process-wide zerolog defaults.
func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// buildProviders assembles the ordered adapter slots, primary first. Slots
// configured as "none" contribute nothing; an Ollama slot contributes text
// generation only.
func buildProviders(pc config.ProvidersConfig) ([]provider.TextGenerator, []provider.SpeechSynthesizer) {
	var text []provider.TextGenerator
	var speech []provider.SpeechSynthesizer

	for _, kind := range []string{pc.Primary, pc.Fallback} {
		tg, ss, err := provider.New(slotFor(kind, pc))
		if err != nil {
			log.Fatal().Err(err).Str("provider", kind).Msg("provider init")
		}
		if tg != nil {
			text = append(text, tg)
		}
		if ss != nil {
			speech = append(speech, ss)
		}
	}
	return text, speech
}

// slotFor maps a provider kind to its vendor-specific settings.
func slotFor(kind string, pc config.ProvidersConfig) provider.SlotConfig {
	switch kind {
	case "openai":
		return provider.SlotConfig{
			Kind:        kind,
			APIKey:      pc.OpenAIAPIKey,
			BaseURL:     pc.OpenAIBaseURL,
			TextModel:   pc.OpenAITextModel,
			SpeechModel: pc.OpenAISpeechModel,
			HTTPTimeout: pc.Timeout,
		}
	case "ollama":
		return provider.SlotConfig{
			Kind:        kind,
			BaseURL:     pc.OllamaHost,
			TextModel:   pc.OllamaModel,
			HTTPTimeout: pc.Timeout,
		}
	default:
		return provider.SlotConfig{Kind: kind}
	}
}
