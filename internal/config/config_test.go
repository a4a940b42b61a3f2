package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "AGRIDOC_API_KEY", "GEMINI_API_KEY", "WORKER_COUNT", "JOB_TTL", "RATE_LIMIT_RPS", "HISTORY_MAX_ITEMS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" || cfg.GeminiProModel != "gemini-2.5-pro" {
		t.Errorf("unexpected models %q %q", cfg.GeminiModel, cfg.GeminiProModel)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("unexpected pool settings %d %d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.MaxBodyBytes != 1<<20 || cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("unexpected limits %d %d", cfg.MaxBodyBytes, cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour || cfg.HistoryMaxItems != 10 {
		t.Errorf("unexpected ttl/history %v %d", cfg.JobTTL, cfg.HistoryMaxItems)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Errorf("unexpected rate limit %v %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback enabled by default")
	}
	if cfg.GenerationEnabled() {
		t.Error("expected generation disabled without a key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg := Load()
	if cfg.Port != "9000" || cfg.WorkerCount != 8 {
		t.Errorf("unexpected overrides %q %d", cfg.Port, cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", cfg.JobTTL)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if !cfg.GenerationEnabled() {
		t.Error("expected generation enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "lots")
	t.Setenv("MAX_QUEUE_SIZE", "-3")
	t.Setenv("JOB_TTL", "soon")

	cfg := Load()
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.JobTTL != time.Hour {
		t.Errorf("expected defaults, got %d %d %v", cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{HistoryDB: "x.db"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without AGRIDOC_API_KEY")
	}
	cfg.AgridocAPIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.HistoryDB = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty HISTORY_DB")
	}
}
