package cfg

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_PATH", "FEEDS_FILE", "FETCH_TIMEOUT", "WORKER_COUNT", "INGEST_SCHEDULE", "PORT", "API_ACCESS_KEY", "DEBUG", "USER_AGENT"} {
		unsetEnv(t, key)
	}

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.Command != CommandServe {
		t.Errorf("Expected default command 'serve', got '%s'", cfg.Command)
	}
	if cfg.DBPath != "./db/database.sqlite" {
		t.Errorf("Expected default DB path, got '%s'", cfg.DBPath)
	}
	if cfg.FeedsFile != "./feeds.yml" {
		t.Errorf("Expected default feeds file, got '%s'", cfg.FeedsFile)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %v", cfg.FetchTimeout)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.IngestSchedule != "" {
		t.Errorf("Expected empty ingest schedule, got '%s'", cfg.IngestSchedule)
	}
}

func TestLoadFlagsAndCommand(t *testing.T) {
	cfg, err := Load([]string{"--db-path", "/tmp/news.sqlite", "--fetch-timeout", "5", "--worker-count", "2", "ingest"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Command != CommandIngest {
		t.Errorf("Expected command 'ingest', got '%s'", cfg.Command)
	}
	if cfg.DBPath != "/tmp/news.sqlite" {
		t.Errorf("Expected DB path '/tmp/news.sqlite', got '%s'", cfg.DBPath)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("Expected fetch timeout 5s, got %v", cfg.FetchTimeout)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FEEDS_FILE", "/etc/news/feeds.yml")
	t.Setenv("INGEST_SCHEDULE", "@every 15m")
	t.Setenv("API_ACCESS_KEY", "secret")

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.FeedsFile != "/etc/news/feeds.yml" {
		t.Errorf("Expected feeds file from env, got '%s'", cfg.FeedsFile)
	}
	if cfg.IngestSchedule != "@every 15m" {
		t.Errorf("Expected ingest schedule from env, got '%s'", cfg.IngestSchedule)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key from env, got '%s'", cfg.APIAccessKey)
	}
}

func TestLoadRejectsUnknownCommand(t *testing.T) {
	if _, err := Load([]string{"publish"}); err == nil {
		t.Error("Expected error for unknown command")
	}
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	if _, err := Load([]string{"--worker-count", "0"}); err == nil {
		t.Error("Expected error for zero worker count")
	}
}
