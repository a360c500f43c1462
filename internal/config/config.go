package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	UploadDir string
	Database  DatabaseConfig
	Fraud     FraudConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// FraudConfig holds the fraud detection policy constants. The geofence
// and threshold values are injected into the pipeline at construction
// so tests can supply alternates.
type FraudConfig struct {
	// Farm operating area (per-axis box check, degrees)
	FarmLatitude  float64
	FarmLongitude float64
	FarmRadius    float64

	// Duplicate-image similarity threshold in [0,1]
	SimilarityThreshold float64

	// Trailing history window for same actor/batch comparisons, hours
	HistoryWindowHours int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "5001"),
		JWTSecret: jwtSecret,
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "poultry"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Fraud: FraudConfig{
			FarmLatitude:        getEnvFloat("FARM_LATITUDE", 18.5204),
			FarmLongitude:       getEnvFloat("FARM_LONGITUDE", 73.8567),
			FarmRadius:          getEnvFloat("FARM_RADIUS", 0.1),
			SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.85),
			HistoryWindowHours:  getEnvInt("HISTORY_WINDOW_HOURS", 24),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
