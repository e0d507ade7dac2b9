package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Language-model collaborators (extraction + narrative)
	LLM LLMConfig

	// Run history persistence
	History HistoryConfig

	// Scoring methodology overrides (YAML). Empty means built-in defaults.
	ScoringConfigPath string

	// Directory for JSON/CSV/Excel exports
	ExportDir string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// LLMConfig holds settings for the OpenAI-compatible providers used by the
// extraction and recommendation collaborators.
type LLMConfig struct {
	Provider       string // groq, openai, deepseek, together, openrouter, ollama
	APIKey         string
	BaseURL        string // overrides the provider default when set
	ExtractModel   string
	NarrativeModel string
	RequestTimeout time.Duration
	MaxRPS         float64 // client-side request rate cap
}

// HistoryConfig controls audit persistence of comparison runs.
type HistoryConfig struct {
	Enabled       bool
	RetentionDays int
}

// providerBaseURLs maps known OpenAI-compatible providers to their endpoints.
var providerBaseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"together":   "https://api.together.xyz/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"ollama":     "http://localhost:11434/v1",
}

// ResolvedBaseURL returns the explicit base URL when set, otherwise the
// provider's default endpoint.
func (l LLMConfig) ResolvedBaseURL() string {
	if l.BaseURL != "" {
		return l.BaseURL
	}
	if url, ok := providerBaseURLs[l.Provider]; ok {
		return url
	}
	return providerBaseURLs["openai"]
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8085"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "quote_engine"),
			User:            getEnv("DB_USER", "quote_engine"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Language model
		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", "groq"),
			APIKey:         getEnv("LLM_API_KEY", ""),
			BaseURL:        getEnv("LLM_BASE_URL", ""),
			ExtractModel:   getEnv("LLM_EXTRACT_MODEL", "llama-3.3-70b-versatile"),
			NarrativeModel: getEnv("LLM_NARRATIVE_MODEL", "llama-3.3-70b-versatile"),
			RequestTimeout: getEnvAsDuration("LLM_REQUEST_TIMEOUT", "60s"),
			MaxRPS:         getEnvAsFloat("LLM_MAX_RPS", 2.0),
		},

		// History
		History: HistoryConfig{
			Enabled:       getEnvAsBool("HISTORY_ENABLED", false),
			RetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 90),
		},

		ScoringConfigPath: getEnv("SCORING_CONFIG_PATH", ""),
		ExportDir:         getEnv("EXPORT_DIR", "results"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Persistence is optional, but once enabled it needs a reachable database.
	if c.History.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when HISTORY_ENABLED=true")
	}

	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must be positive")
	}

	if c.LLM.MaxRPS <= 0 {
		return fmt.Errorf("LLM_MAX_RPS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
