package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selection. The two variants are mutually exclusive: the
// relational backend carries the full collaboration model, the local backend
// is a single-machine key-value ledger with no sharing.
const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Storage
	StorageBackend string
	DataDir        string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Collaboration
	InviteWebhookURL string

	// Logging
	LogFile string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get values from environment variables with defaults
	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Storage
		StorageBackend: getEnv("STORAGE_BACKEND", BackendPostgres),
		DataDir:        getEnv("DATA_DIR", "./data"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tripledger"),
		DBPassword: getEnv("DB_PASSWORD", "tripledger"),
		DBName:     getEnv("DB_NAME", "tripledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Collaboration
		InviteWebhookURL: getEnv("INVITE_WEBHOOK_URL", ""),

		// Logging
		LogFile: getEnv("LOG_FILE", ""),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
