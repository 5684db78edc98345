package config

import (
	"testing"
	"time"
)

func TestLoadClientDefaults(t *testing.T) {
	for _, key := range []string{
		"FLASHQUIZ_API_URL", "FLASHQUIZ_DATA_DIR", "FLASHQUIZ_STORE", "FLASHQUIZ_SQLITE_PATH",
		"FLASHQUIZ_HTTP_TIMEOUT", "FLASHQUIZ_WEEKLY_TARGET", "FLASHQUIZ_FALLBACK",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadClient()
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.StoreDriver != StoreFile {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreFile)
	}
	if cfg.DataDir != defaultDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, defaultDataDir)
	}
	if cfg.SQLitePath != "" {
		t.Fatalf("SQLitePath = %q, want empty so the data dir decides", cfg.SQLitePath)
	}
	if cfg.HTTPTimeout != defaultHTTPTimeout {
		t.Fatalf("HTTPTimeout = %v, want %v", cfg.HTTPTimeout, defaultHTTPTimeout)
	}
	if !cfg.FallbackLocal {
		t.Fatalf("expected fallback enabled by default")
	}
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("FLASHQUIZ_STORE", "SQLite")
	t.Setenv("FLASHQUIZ_HTTP_TIMEOUT", "750ms")
	t.Setenv("FLASHQUIZ_WEEKLY_TARGET", "20")
	t.Setenv("FLASHQUIZ_FALLBACK", "false")
	t.Setenv("FLASHQUIZ_REDIS_DB", "not-a-number")

	cfg := LoadClient()
	if cfg.StoreDriver != StoreSQLite {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreSQLite)
	}
	if cfg.HTTPTimeout != 750*time.Millisecond {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.WeeklyTarget != 20 {
		t.Fatalf("WeeklyTarget = %d, want 20", cfg.WeeklyTarget)
	}
	if cfg.FallbackLocal {
		t.Fatalf("expected fallback disabled")
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("RedisDB = %d, want default 0 for invalid value", cfg.RedisDB)
	}
}

func TestLoadClientRedisStore(t *testing.T) {
	t.Setenv("FLASHQUIZ_STORE", " Redis ")
	t.Setenv("FLASHQUIZ_REDIS_ADDR", "cache:6380")
	t.Setenv("FLASHQUIZ_REDIS_DB", "2")

	cfg := LoadClient()
	if cfg.StoreDriver != StoreRedis {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreRedis)
	}
	if cfg.RedisAddr != "cache:6380" || cfg.RedisDB != 2 {
		t.Fatalf("redis = %s/%d, want cache:6380/2", cfg.RedisAddr, cfg.RedisDB)
	}
}

func TestLoadServiceOverrides(t *testing.T) {
	t.Setenv("QUESTION_ADDR", ":9090")
	t.Setenv("QUESTION_LOG_MODE", "production")
	t.Setenv("ADDR", ":7070")
	t.Setenv("QUESTION_DB_PATH", "")
	t.Setenv("QUESTION_OPENTDB_AMOUNT", "25")

	cfg := LoadService()
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.LogMode != "production" {
		t.Fatalf("LogMode = %q, want production", cfg.LogMode)
	}
	if cfg.DBPath != defaultQuestionDB {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, defaultQuestionDB)
	}
	if cfg.OpenTDBAmount != 25 {
		t.Fatalf("OpenTDBAmount = %d, want 25", cfg.OpenTDBAmount)
	}
}
