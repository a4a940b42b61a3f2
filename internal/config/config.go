package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	AgridocAPIKey string

	// Gemini generation
	GeminiAPIKey   string
	GeminiModel    string
	GeminiProModel string
	GeminiBaseURL  string
	GeminiTimeout  time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxBodyBytes   int64
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int

	// Job state
	JobTTL time.Duration

	// History
	HistoryDB       string
	HistoryMaxItems int

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		AgridocAPIKey: os.Getenv("AGRIDOC_API_KEY"),

		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiProModel: envOr("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		GeminiBaseURL:  os.Getenv("GEMINI_BASE_URL"),
		GeminiTimeout:  envDuration("GEMINI_TIMEOUT", 120*time.Second),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxBodyBytes:   envInt64("MAX_BODY_BYTES", 1<<20),    // 1MB
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20), // 10MB
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		HistoryDB:       envOr("HISTORY_DB", "agridoc.db"),
		HistoryMaxItems: envInt("HISTORY_MAX_ITEMS", 10),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.HistoryMaxItems <= 0 {
		cfg.HistoryMaxItems = 10
	}
	if cfg.GeminiTimeout <= 0 {
		cfg.GeminiTimeout = 120 * time.Second
	}

	return cfg
}

// Validate checks settings the server cannot run without. A missing Gemini
// key is allowed: generation endpoints then answer 503.
func (c Config) Validate() error {
	if c.AgridocAPIKey == "" {
		return fmt.Errorf("AGRIDOC_API_KEY is required")
	}
	if c.HistoryDB == "" {
		return fmt.Errorf("HISTORY_DB must not be empty")
	}
	return nil
}

// GenerationEnabled reports whether a Gemini key is configured.
func (c Config) GenerationEnabled() bool {
	return c.GeminiAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
