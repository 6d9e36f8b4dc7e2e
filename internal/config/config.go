// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database and media paths, provider slots,
// generation budgets, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-story-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ProvidersConfig selects and parameterizes the text/speech provider slots.
// Primary and Fallback name the adapter kind per slot; the per-vendor
// settings below apply to whichever slot uses that vendor.
type ProvidersConfig struct {
	Primary  string        // PRIMARY_PROVIDER: openai|ollama|none
	Fallback string        // FALLBACK_PROVIDER: openai|ollama|none
	Timeout  time.Duration // PROVIDER_TIMEOUT: per-call budget

	OpenAIAPIKey      string // OPENAI_API_KEY
	OpenAIBaseURL     string // OPENAI_BASE_URL (empty = api.openai.com; any OpenAI-compatible endpoint works)
	OpenAITextModel   string // OPENAI_TEXT_MODEL
	OpenAISpeechModel string // OPENAI_SPEECH_MODEL

	OllamaHost  string // OLLAMA_HOST (e.g. "http://localhost:11434")
	OllamaModel string // OLLAMA_MODEL
}

// GenerationConfig tunes the story generation pipeline.
type GenerationConfig struct {
	PromptMaxChars  int           // PROMPT_MAX_CHARS: prompt rune budget
	PromptMaxTokens int           // PROMPT_MAX_TOKENS: estimated-token budget (0 disables)
	SpeechMaxChars  int           // SPEECH_MAX_CHARS: narration input rune budget
	MaxOutputTokens int           // GEN_MAX_OUTPUT_TOKENS: completion cap per call
	Temperature     float64       // GEN_TEMPERATURE
	CacheSize       int           // GEN_CACHE_SIZE: prompt cache entries (0 disables)
	CacheTTL        time.Duration // GEN_CACHE_TTL
	RateRPS         float64       // GEN_RATE_RPS: stricter bucket for generation routes
	RateBurst       int           // GEN_RATE_BURST
}

// LimitsConfig carries the story validation bounds.
type LimitsConfig struct {
	StoryTextMin   int // STORY_TEXT_MIN: minimum story runes
	StoryTextMax   int // STORY_TEXT_MAX: maximum story runes
	TopicMaxChars  int // TOPIC_MAX_CHARS
	MaxCategories  int // CATEGORIES_MAX
	CategoryMax    int // CATEGORY_MAX_CHARS
	SearchQueryMin int // SEARCH_QUERY_MIN
	SearchQueryMax int // SEARCH_QUERY_MAX
	SearchLimit    int // SEARCH_LIMIT: default result cap
	TitleMaxChars  int // TITLE_MAX_CHARS: derived title clip length
}

// SharesConfig tunes share token minting.
type SharesConfig struct {
	TokenBytes int           // SHARE_TOKEN_BYTES: random bytes per token
	DefaultTTL time.Duration // SHARE_DEFAULT_TTL: applied when the caller names none (0 = no expiry)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath   string // SQLite path
	MediaDir string // directory for audio artifacts

	// Domain
	Providers  ProvidersConfig
	Generation GenerationConfig
	Limits     LimitsConfig
	Shares     SharesConfig

	// Rate limiting (CRUD routes)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath:   getenv("DB_PATH", "stories.db"),
		MediaDir: getenv("MEDIA_DIR", "media"),

		// Providers
		Providers: ProvidersConfig{
			Primary:  strings.ToLower(getenv("PRIMARY_PROVIDER", "openai")),
			Fallback: strings.ToLower(getenv("FALLBACK_PROVIDER", "none")),
			Timeout:  getdur("PROVIDER_TIMEOUT", 45*time.Second),

			OpenAIAPIKey:      getenv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getenv("OPENAI_BASE_URL", ""),
			OpenAITextModel:   getenv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
			OpenAISpeechModel: getenv("OPENAI_SPEECH_MODEL", "tts-1"),

			OllamaHost:  getenv("OLLAMA_HOST", "http://localhost:11434"),
			OllamaModel: getenv("OLLAMA_MODEL", "llama3"),
		},

		// Generation
		Generation: GenerationConfig{
			PromptMaxChars:  getint("PROMPT_MAX_CHARS", 20000),
			PromptMaxTokens: getint("PROMPT_MAX_TOKENS", 0),
			SpeechMaxChars:  getint("SPEECH_MAX_CHARS", 50000),
			MaxOutputTokens: getint("GEN_MAX_OUTPUT_TOKENS", 4096),
			Temperature:     getfloat("GEN_TEMPERATURE", 0.8),
			CacheSize:       getint("GEN_CACHE_SIZE", 256),
			CacheTTL:        getdur("GEN_CACHE_TTL", time.Hour),
			RateRPS:         getfloat("GEN_RATE_RPS", 0.5),
			RateBurst:       getint("GEN_RATE_BURST", 3),
		},

		// Limits
		Limits: LimitsConfig{
			StoryTextMin:   getint("STORY_TEXT_MIN", 10),
			StoryTextMax:   getint("STORY_TEXT_MAX", 50000),
			TopicMaxChars:  getint("TOPIC_MAX_CHARS", 200),
			MaxCategories:  getint("CATEGORIES_MAX", 20),
			CategoryMax:    getint("CATEGORY_MAX_CHARS", 50),
			SearchQueryMin: getint("SEARCH_QUERY_MIN", 2),
			SearchQueryMax: getint("SEARCH_QUERY_MAX", 500),
			SearchLimit:    getint("SEARCH_LIMIT", 20),
			TitleMaxChars:  getint("TITLE_MAX_CHARS", 80),
		},

		// Shares
		Shares: SharesConfig{
			TokenBytes: getint("SHARE_TOKEN_BYTES", 16),
			DefaultTTL: getdur("SHARE_DEFAULT_TTL", 0),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-story-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.MediaDir) == "" {
		return cfg, errors.New("MEDIA_DIR must not be empty")
	}
	if !validProviderKind(cfg.Providers.Primary) {
		return cfg, errors.New("PRIMARY_PROVIDER must be one of: openai, ollama, none")
	}
	if !validProviderKind(cfg.Providers.Fallback) {
		return cfg, errors.New("FALLBACK_PROVIDER must be one of: openai, ollama, none")
	}
	if cfg.Providers.Timeout <= 0 {
		return cfg, errors.New("PROVIDER_TIMEOUT must be > 0")
	}
	if cfg.Generation.PromptMaxChars < 1 {
		return cfg, errors.New("PROMPT_MAX_CHARS must be >= 1")
	}
	if cfg.Generation.PromptMaxTokens < 0 {
		return cfg, errors.New("PROMPT_MAX_TOKENS must be >= 0")
	}
	if cfg.Generation.SpeechMaxChars < 1 {
		return cfg, errors.New("SPEECH_MAX_CHARS must be >= 1")
	}
	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 2 {
		return cfg, errors.New("GEN_TEMPERATURE must be in [0,2]")
	}
	if cfg.Generation.CacheSize < 0 {
		return cfg, errors.New("GEN_CACHE_SIZE must be >= 0")
	}
	if cfg.Generation.RateRPS < 0 {
		return cfg, errors.New("GEN_RATE_RPS must be >= 0")
	}
	if cfg.Generation.RateBurst < 1 {
		return cfg, errors.New("GEN_RATE_BURST must be >= 1")
	}
	if cfg.Limits.StoryTextMin < 1 || cfg.Limits.StoryTextMax < cfg.Limits.StoryTextMin {
		return cfg, errors.New("STORY_TEXT_MIN/STORY_TEXT_MAX must satisfy 1 <= min <= max")
	}
	if cfg.Limits.SearchQueryMin < 1 || cfg.Limits.SearchQueryMax < cfg.Limits.SearchQueryMin {
		return cfg, errors.New("SEARCH_QUERY_MIN/SEARCH_QUERY_MAX must satisfy 1 <= min <= max")
	}
	if cfg.Limits.SearchLimit < 1 {
		return cfg, errors.New("SEARCH_LIMIT must be >= 1")
	}
	if cfg.Shares.TokenBytes < 8 || cfg.Shares.TokenBytes > 32 {
		return cfg, errors.New("SHARE_TOKEN_BYTES must be in [8,32]")
	}
	if cfg.Shares.DefaultTTL < 0 {
		return cfg, errors.New("SHARE_DEFAULT_TTL must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// validProviderKind reports whether s names a known provider slot kind.
func validProviderKind(s string) bool {
	switch s {
	case "openai", "ollama", "none":
		return true
	}
	return false
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
