package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/seo_intel")
		t.Setenv("RABBITMQ_URL", "amqp://localhost:5672")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ServerPort != "8080" {
			t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
		}
		if cfg.BatchSize != 20 {
			t.Errorf("BatchSize = %d, want 20", cfg.BatchSize)
		}
		if cfg.MaxArticleChars != 8000 {
			t.Errorf("MaxArticleChars = %d, want 8000", cfg.MaxArticleChars)
		}
		if cfg.FetchTimeout != 30*time.Second {
			t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout)
		}
		if cfg.ProviderTimeout != 120*time.Second {
			t.Errorf("ProviderTimeout = %v, want 120s", cfg.ProviderTimeout)
		}
	})

	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("RABBITMQ_URL", "amqp://localhost:5672")

		if _, err := Load(); err == nil {
			t.Fatal("expected error without DATABASE_URL")
		}
	})

	t.Run("missing rabbitmq url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/seo_intel")
		t.Setenv("RABBITMQ_URL", "")

		if _, err := Load(); err == nil {
			t.Fatal("expected error without RABBITMQ_URL")
		}
	})

	t.Run("invalid batch size", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/seo_intel")
		t.Setenv("RABBITMQ_URL", "amqp://localhost:5672")
		t.Setenv("PIPELINE_BATCH_SIZE", "0")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for zero batch size")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/seo_intel")
		t.Setenv("RABBITMQ_URL", "amqp://localhost:5672")
		t.Setenv("PIPELINE_BATCH_SIZE", "5")
		t.Setenv("PIPELINE_FETCH_TIMEOUT", "10s")
		t.Setenv("WORKER_DEBUG_MODE", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BatchSize != 5 {
			t.Errorf("BatchSize = %d, want 5", cfg.BatchSize)
		}
		if cfg.FetchTimeout != 10*time.Second {
			t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
		}
		if !cfg.WorkerDebugMode {
			t.Error("WorkerDebugMode should be true")
		}
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "45s")
	if got := getEnvDuration("TEST_DURATION", time.Second); got != 45*time.Second {
		t.Errorf("getEnvDuration = %v, want 45s", got)
	}

	t.Setenv("TEST_DURATION", "not-a-duration")
	if got := getEnvDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration with invalid value = %v, want default", got)
	}
}
