package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	OCR      OCRConfig
	Session  SessionConfig
	Card     CardConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// DatabaseConfig holds database-related configuration.
// When DSN is empty the service falls back to a local SQLite file.
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// RedisConfig holds the verification-session store configuration.
// When URL is empty an in-process store is used.
type RedisConfig struct {
	URL string
}

// StorageConfig holds upload directory configuration.
type StorageConfig struct {
	BaseDir  string
	TempDir  string
	DocsDir  string
	PhotoDir string
	CardsDir string
}

// OCRConfig holds extraction-related configuration
type OCRConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// SessionConfig holds verification-session behavior.
type SessionConfig struct {
	TTL time.Duration
}

// CardConfig holds membership-card rendering configuration.
type CardConfig struct {
	BaseURL string // QR codes link to <BaseURL>/verify-membership
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	baseDir := getEnv("BASE_UPLOAD_DIR", "./volunteers_files")
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_DB_PATH", "./members_local.sqlite"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Storage: StorageConfig{
			BaseDir:  baseDir,
			TempDir:  getEnv("TEMP_UPLOAD_DIR", filepath.Join(baseDir, "tmp")),
			DocsDir:  getEnv("PDF_UPLOAD_DIR", filepath.Join(baseDir, "voterid_proof")),
			PhotoDir: getEnv("PHOTO_UPLOAD_DIR", filepath.Join(baseDir, "photos")),
			CardsDir: getEnv("CARDS_DIR", filepath.Join(baseDir, "cards")),
		},
		OCR: OCRConfig{
			Pdftotext: getEnv("PDFTOTEXT_CMD", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_CMD", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_CMD", "tesseract"),
			Lang:      getEnv("TESSERACT_LANG", "eng"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 15*time.Minute),
		},
		Card: CardConfig{
			BaseURL: getEnv("CARD_BASE_URL", "https://tnbsp.org"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Database.DSN == "" && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or SQLITE_DB_PATH is required", ErrInvalidInput)
	}
	if c.Storage.BaseDir == "" {
		return NewAppError("CONFIG_ERROR", "BASE_UPLOAD_DIR is required", ErrInvalidInput)
	}
	return nil
}
