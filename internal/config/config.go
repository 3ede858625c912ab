package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. It is built once at startup and
// passed by reference; nothing mutates it afterwards.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret  string
	JWTExpires time.Duration

	StorageType     string // "local", "s3" or "memory"
	StorageLocalDir string
	S3Bucket        string
	S3Prefix        string
	S3Region        string
	S3Endpoint      string

	GinMode  string
	LogLevel string
	Addr     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskforge"),
		DBPassword: getEnv("DB_PASSWORD", "taskforge"),
		DBName:     getEnv("DB_NAME", "taskforge"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		StorageType:     getEnv("STORAGE_TYPE", "local"),
		StorageLocalDir: getEnv("STORAGE_LOCAL_DIR", "./data/blobs"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Region:        getEnv("S3_REGION", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),

		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Addr:     getEnv("ADDR", ":8080"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	expiresHours, err := strconv.Atoi(getEnv("JWT_EXPIRES_HOURS", "24"))
	if err != nil || expiresHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES_HOURS must be a positive integer")
	}
	cfg.JWTExpires = time.Duration(expiresHours) * time.Hour

	if cfg.StorageType == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET must be set when STORAGE_TYPE=s3")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
