package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// KeyRule maps a model-name prefix to the name of the credential used
// for that model family. Rules are evaluated in order; the first match
// wins, and DefaultKeySecret applies when none match.
type KeyRule struct {
	Prefix string
	Secret string
}

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
	}

	// Redis configuration
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// Completion provider configuration
	Completion struct {
		Endpoint         string
		DefaultModel     string
		Temperature      float64
		MaxTokens        int
		Referer          string
		Title            string
		KeyRules         []KeyRule
		DefaultKeySecret string
		DefaultLanguage  string
		Timeout          time.Duration
	}

	// JWT configuration
	JWT struct {
		Secret string
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Cache settings
	Cache struct {
		KnowledgeTTL time.Duration
	}

	// OpenAPI schema path for request validation (empty disables it)
	OpenAPISchemaPath string
}

var (
	instance *Config
	once     sync.Once
)

// New creates the Config instance from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "chatbot")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)

		instance.Redis.Addr = getEnvString("REDIS_ADDR", "localhost:6379")
		instance.Redis.Password = getEnvString("REDIS_PASSWORD", "")
		instance.Redis.DB = getEnvInt("REDIS_DB", 0)

		instance.Completion.Endpoint = getEnvString("COMPLETION_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions")
		instance.Completion.DefaultModel = getEnvString("COMPLETION_DEFAULT_MODEL", "meta-llama/llama-4-maverick:free")
		instance.Completion.Temperature = getEnvFloat("COMPLETION_TEMPERATURE", 0.7)
		instance.Completion.MaxTokens = getEnvInt("COMPLETION_MAX_TOKENS", 500)
		instance.Completion.Referer = getEnvString("COMPLETION_REFERER", "")
		instance.Completion.Title = getEnvString("COMPLETION_TITLE", "")
		instance.Completion.KeyRules = parseKeyRules(getEnvString("COMPLETION_KEY_RULES", ""))
		instance.Completion.DefaultKeySecret = getEnvString("COMPLETION_DEFAULT_KEY_SECRET", "OPENROUTER_API_KEY")
		instance.Completion.DefaultLanguage = getEnvString("DEFAULT_LANGUAGE", "en")
		instance.Completion.Timeout = getEnvDuration("COMPLETION_TIMEOUT", 30*time.Second)

		instance.JWT.Secret = getEnvString("JWT_SECRET", "")

		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})

		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		instance.Cache.KnowledgeTTL = getEnvDuration("KNOWLEDGE_CACHE_TTL", 5*time.Minute)

		instance.OpenAPISchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "")
	})

	return instance
}

// Get returns the singleton Config instance.
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// parseKeyRules parses an ordered rule list of the form
// "prefix:SECRET_NAME,prefix:SECRET_NAME".
func parseKeyRules(raw string) []KeyRule {
	if raw == "" {
		return nil
	}
	var rules []KeyRule
	for _, part := range strings.Split(raw, ",") {
		prefix, secret, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || prefix == "" || secret == "" {
			continue
		}
		rules = append(rules, KeyRule{Prefix: prefix, Secret: secret})
	}
	return rules
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
