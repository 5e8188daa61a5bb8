package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Scraping
	MaxWorkers        int // concurrent platform scrapes
	FetchMaxAttempts  int
	FetchTimeoutSec   int
	FetchJitterMinSec int
	FetchJitterMaxSec int
	FetchCooldownSec  int // extra wait after a 403/429
	ItemsPerPage      int

	// Trend sources
	TrendsGeo    string // geo code for the trends data source, e.g. "IN"
	TrendsRegion string // human-readable region used in event search queries

	// Browser-backed fetching for JS-heavy marketplaces
	UseBrowserFetcher bool
	ChromeBin         string

	ListenAddr string
	RawCSVPath string // when set, raw listings are dumped here per run
	LogDebug   bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "research"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "research123"),
		PostgresDB:       getEnv("POSTGRES_DB", "niche_research"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxWorkers:        getEnvInt("MAX_WORKERS", 4),
		FetchMaxAttempts:  getEnvInt("FETCH_MAX_ATTEMPTS", 3),
		FetchTimeoutSec:   getEnvInt("FETCH_TIMEOUT_SEC", 30),
		FetchJitterMinSec: getEnvInt("FETCH_JITTER_MIN_SEC", 3),
		FetchJitterMaxSec: getEnvInt("FETCH_JITTER_MAX_SEC", 6),
		FetchCooldownSec:  getEnvInt("FETCH_COOLDOWN_SEC", 60),
		ItemsPerPage:      getEnvInt("ITEMS_PER_PAGE", 15),

		TrendsGeo:    getEnv("TRENDS_GEO", "IN"),
		TrendsRegion: getEnv("TRENDS_REGION", "India"),

		UseBrowserFetcher: getEnvBool("USE_BROWSER_FETCHER", false),
		ChromeBin:         getEnv("CHROME_BIN", ""),

		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),
		RawCSVPath: getEnv("RAW_CSV_PATH", ""),
		LogDebug:   getEnvBool("LOG_DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
