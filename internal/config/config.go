package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Suppliers SupplierConfig
	Stores    StoreConfig
	Server    ServerConfig
	Paths     PathConfig
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
}

type ScraperConfig struct {
	MaxRetries                int
	RetryDelay                time.Duration
	RateLimitMin              time.Duration
	RateLimitMax              time.Duration
	ClearDB                   bool
	UpsertData                bool
	ReplaceEmptyDescWithTitle bool
	SimilarityThreshold       float64
}

type SupplierConfig struct {
	LMURL            string
	AllpartsURL      string
	CoastMusicURL    string
	KorgCanadaURL    string
	FenderLoginURL   string
	FenderProductURL string
	FenderUsername   string
	FenderPassword   string
	DaddarioLoginURL string
	DaddarioShopURL  string
	DaddarioUsername string
	DaddarioPassword string
}

type StoreConfig struct {
	TomLeeMusicURL  string
	AcclaimMusicURL string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type PathConfig struct {
	InputDir  string
	OutputDir string
	RawCSV    string
}

// Load builds the immutable configuration from the environment. A .env file in
// the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL:         os.Getenv("DATABASE_URL"),
			MaxConns:    int32(getIntOrDefault("DB_MAX_CONNS", 4)),
			MinConns:    int32(getIntOrDefault("DB_MIN_CONNS", 1)),
			MaxConnLife: getDurationOrDefault("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdle: getDurationOrDefault("DB_MAX_CONN_IDLE", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			LockTTL:  getDurationOrDefault("RUN_LOCK_TTL", 15*time.Minute),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
		},
		Scraper: ScraperConfig{
			MaxRetries:                getIntOrDefault("SCRAPER_MAX_RETRIES", 3),
			RetryDelay:                getDurationOrDefault("SCRAPER_RETRY_DELAY", 2*time.Second),
			RateLimitMin:              getDurationOrDefault("SCRAPER_RATE_LIMIT_MIN", 1*time.Second),
			RateLimitMax:              getDurationOrDefault("SCRAPER_RATE_LIMIT_MAX", 4*time.Second),
			ClearDB:                   getBoolOrDefault("CLEAR_DB", false),
			UpsertData:                getBoolOrDefault("UPSERT_DATA", false),
			ReplaceEmptyDescWithTitle: getBoolOrDefault("REPLACE_EMPTY_DESC_WITH_TITLE", true),
			SimilarityThreshold:       getFloatOrDefault("SIMILARITY_THRESHOLD", 0.3),
		},
		Suppliers: SupplierConfig{
			LMURL:            os.Getenv("LM_URL"),
			AllpartsURL:      os.Getenv("ALLPARTS_URL"),
			CoastMusicURL:    os.Getenv("COAST_MUSIC_URL"),
			KorgCanadaURL:    os.Getenv("KORG_CANADA_URL"),
			FenderLoginURL:   os.Getenv("FENDER_LOGIN_URL"),
			FenderProductURL: os.Getenv("FENDER_PRODUCT_URL"),
			FenderUsername:   os.Getenv("FENDER_USERNAME"),
			FenderPassword:   os.Getenv("FENDER_PASSWORD"),
			DaddarioLoginURL: os.Getenv("DADDARIO_LOGIN_URL"),
			DaddarioShopURL:  os.Getenv("DADDARIO_PRODUCT_URL"),
			DaddarioUsername: os.Getenv("DADDARIO_USERNAME"),
			DaddarioPassword: os.Getenv("DADDARIO_PASSWORD"),
		},
		Stores: StoreConfig{
			TomLeeMusicURL:  os.Getenv("TOM_LEE_MUSIC_URL"),
			AcclaimMusicURL: os.Getenv("ACCLAIM_MUSIC_URL"),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("API_PORT", "8080"),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Paths: PathConfig{
			InputDir:  getEnvOrDefault("INPUT_DIR", "./input"),
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "./output"),
			RawCSV:    getEnvOrDefault("RAW_PRODUCTS_CSV", "products.csv"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES must be at least 1")
	}

	if c.Scraper.RateLimitMin > c.Scraper.RateLimitMax {
		return fmt.Errorf("SCRAPER_RATE_LIMIT_MIN cannot be greater than SCRAPER_RATE_LIMIT_MAX")
	}

	if c.Scraper.SimilarityThreshold < 0 || c.Scraper.SimilarityThreshold >= 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in [0, 1)")
	}

	return nil
}

// OutputDirFor returns the per-supplier output directory, e.g. output/lm.
func (c *Config) OutputDirFor(name string) string {
	return c.Paths.OutputDir + "/" + name
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
