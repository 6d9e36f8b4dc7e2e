// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/tbourn/go-story-backend/docs"
	"github.com/tbourn/go-story-backend/internal/cache"
	"github.com/tbourn/go-story-backend/internal/config"
	"github.com/tbourn/go-story-backend/internal/http/handlers"
	"github.com/tbourn/go-story-backend/internal/http/middleware"
	"github.com/tbourn/go-story-backend/internal/media"
	"github.com/tbourn/go-story-backend/internal/provider"
	"github.com/tbourn/go-story-backend/internal/repo"
	"github.com/tbourn/go-story-backend/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression (audio streaming and /metrics excluded)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per client/IP, bypass on replay; generation routes carry
//     a stricter per-route bucket)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store *media.Store, text []provider.TextGenerator, speech []provider.SpeechSynthesizer, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); generation inputs are text, not uploads
	r.Use(limitBody(1 << 20))

	// 6) Response compression. Audio downloads stream pre-encoded bytes and
	// ServeContent range math needs real offsets; /metrics negotiates its own
	// encoding with promhttp.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithExcludedPathsRegexs([]string{`/audio$`}),
	))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, clientID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, clientID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per client/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientOrIP())
	r.Use(rl.Handler())

	// Generation routes spend provider quota, so they carry their own
	// stricter bucket on top of the global one.
	genRL := middleware.NewRateLimiter(cfg.Generation.RateRPS, cfg.Generation.RateBurst, middleware.KeyByClientOrIP())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health; degraded when the store stops answering
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API docs (swag-generated; gated so production deployments can hide it)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/media/providers
	storySvc := &services.StoryService{
		DB:               db,
		Media:            store,
		TextMinRunes:     cfg.Limits.StoryTextMin,
		TextMaxRunes:     cfg.Limits.StoryTextMax,
		TopicMaxRunes:    cfg.Limits.TopicMaxChars,
		MaxCategories:    cfg.Limits.MaxCategories,
		CategoryMaxRunes: cfg.Limits.CategoryMax,
		QueryMinRunes:    cfg.Limits.SearchQueryMin,
		QueryMaxRunes:    cfg.Limits.SearchQueryMax,
		SearchLimit:      cfg.Limits.SearchLimit,
		TitleMaxLen:      cfg.Limits.TitleMaxChars,
		TitleLocale:      language.English,
	}
	audioSvc := &services.AudioService{DB: db, Media: store}
	queueSvc := &services.QueueService{DB: db}
	shareSvc := &services.ShareService{
		DB:         db,
		TokenBytes: cfg.Shares.TokenBytes,
		DefaultTTL: cfg.Shares.DefaultTTL,
	}

	var results *cache.Results
	if cfg.Generation.CacheSize > 0 {
		if c, err := cache.NewResults(cfg.Generation.CacheSize, cfg.Generation.CacheTTL); err == nil {
			results = c
		}
	}
	genSvc := &services.GenerationService{
		DB:              db,
		Stories:         storySvc,
		Audio:           audioSvc,
		Media:           store,
		Text:            text,
		Speech:          speech,
		Cache:           results,
		ProviderTimeout: cfg.Providers.Timeout,
		PromptMaxRunes:  cfg.Generation.PromptMaxChars,
		PromptMaxTokens: cfg.Generation.PromptMaxTokens,
		SpeechMaxRunes:  cfg.Generation.SpeechMaxChars,
		TextParams: provider.TextParams{
			MaxOutputTokens: cfg.Generation.MaxOutputTokens,
			Temperature:     cfg.Generation.Temperature,
		},
	}

	h := handlers.New(storySvc, audioSvc, queueSvc, shareSvc, genSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Stories
		api.POST("/stories", h.CreateStory)
		api.GET("/stories", h.ListStories)
		api.GET("/stories/search", h.SearchStories)
		api.GET("/stories/:id", h.GetStory)
		api.PUT("/stories/:id", h.UpdateStory)
		api.POST("/stories/:id/favorite", h.ToggleFavorite)
		api.DELETE("/stories/:id", h.DeleteStory)

		// Generation
		api.POST("/stories/generate", genRL.Handler(), h.GenerateStory)
		api.POST("/stories/:id/audio", genRL.Handler(), h.GenerateAudio)
		api.GET("/stories/:id/audio", h.DownloadAudio)

		// Playback queue
		api.GET("/queue", h.GetQueue)
		api.PUT("/queue", h.SetQueue)
		api.POST("/queue", h.AddToQueue)

		// Shares
		api.POST("/stories/:id/share", h.CreateShare)
		api.DELETE("/shares/:token", h.RevokeShare)
		api.GET("/shared/:token", h.ResolveShare)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
