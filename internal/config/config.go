package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

const (
	defaultAPIURL       = "http://127.0.0.1:8000"
	defaultDataDir      = ".flashquiz"
	defaultHTTPTimeout  = 5 * time.Second
	defaultWeeklyTarget = 50
	defaultListenAddr   = ":8000"
	defaultQuestionDB   = "questions.db"
)

// Client configures the flashquiz shell. An empty SQLitePath means
// flashquiz.db inside DataDir.
type Client struct {
	APIURL        string
	DataDir       string
	StoreDriver   string
	SQLitePath    string
	RedisAddr     string
	RedisDB       int
	HTTPTimeout   time.Duration
	WeeklyTarget  int
	LogMode       string
	FallbackLocal bool
}

// Service configures the development question service.
type Service struct {
	ListenAddr string
	DBPath     string
	SeedFile   string
	LogMode    string

	// OpenTDBAmount questions are imported from Open Trivia DB at startup
	// when positive.
	OpenTDBAmount int
}

func LoadClient() Client {
	_ = godotenv.Load()

	return Client{
		APIURL:        getString("FLASHQUIZ_API_URL", defaultAPIURL),
		DataDir:       getString("FLASHQUIZ_DATA_DIR", defaultDataDir),
		StoreDriver:   strings.ToLower(getString("FLASHQUIZ_STORE", StoreFile)),
		SQLitePath:    getString("FLASHQUIZ_SQLITE_PATH", ""),
		RedisAddr:     getString("FLASHQUIZ_REDIS_ADDR", "127.0.0.1:6379"),
		RedisDB:       getInt("FLASHQUIZ_REDIS_DB", 0),
		HTTPTimeout:   getDuration("FLASHQUIZ_HTTP_TIMEOUT", defaultHTTPTimeout),
		WeeklyTarget:  getInt("FLASHQUIZ_WEEKLY_TARGET", defaultWeeklyTarget),
		LogMode:       getString("FLASHQUIZ_LOG_MODE", "development"),
		FallbackLocal: getBool("FLASHQUIZ_FALLBACK", true),
	}
}

func LoadService() Service {
	_ = godotenv.Load()

	return Service{
		ListenAddr: getString("QUESTION_ADDR", defaultListenAddr),
		DBPath:     getString("QUESTION_DB_PATH", defaultQuestionDB),
		SeedFile:   getString("QUESTION_SEED_FILE", ""),
		LogMode:    getString("QUESTION_LOG_MODE", "development"),

		OpenTDBAmount: getInt("QUESTION_OPENTDB_AMOUNT", 0),
	}
}

func getString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
