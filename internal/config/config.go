// Package config loads the upstream source and object-store configuration
// from environment variables, following the teacher's requireEnv /
// getEnvOrDefault bootstrap idiom.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/0xknxwledge/lvrctl/internal/lvrerr"
)

// AuroraConfig holds connection parameters for the indexed (MySQL-shaped)
// upstream source.
type AuroraConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	ConnectTimeout   int
	RetryIntervalSec int
}

// BrontesConfig holds connection parameters for the event (ClickHouse-shaped)
// upstream source.
type BrontesConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	ConnectTimeout   int
	RetryIntervalSec int
}

// ObjectStoreConfig selects and configures the backing object store.
type ObjectStoreConfig struct {
	DataDir  string // local-filesystem backend root
	S3Bucket string // when set, the S3 backend is used instead
	S3Region string
}

// LoadDotEnv loads a .env file if present. Missing files are not an error —
// production deployments set real environment variables directly.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", lvrerr.ConfigError("%s is not set", key)
	}
	return val, nil
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getIntOrDefault(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func requireInt(key string) (int, error) {
	val, err := requireEnv(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, lvrerr.ConfigError("invalid %s format: %v", key, err)
	}
	return n, nil
}

// LoadAurora reads AURORA_* environment variables into an AuroraConfig.
func LoadAurora() (AuroraConfig, error) {
	host, err := requireEnv("AURORA_HOST")
	if err != nil {
		return AuroraConfig{}, err
	}
	port, err := requireInt("AURORA_PORT")
	if err != nil {
		return AuroraConfig{}, err
	}
	user, err := requireEnv("AURORA_USER")
	if err != nil {
		return AuroraConfig{}, err
	}
	password, err := requireEnv("AURORA_PASSWORD")
	if err != nil {
		return AuroraConfig{}, err
	}
	database, err := requireEnv("AURORA_DATABASE")
	if err != nil {
		return AuroraConfig{}, err
	}
	return AuroraConfig{
		Host:             host,
		Port:             port,
		User:             user,
		Password:         password,
		Database:         database,
		ConnectTimeout:   getIntOrDefault("AURORA_TIMEOUT", 30),
		RetryIntervalSec: getIntOrDefault("AURORA_RETRY_INTERVAL", 5),
	}, nil
}

// LoadBrontes reads BRONTES_* environment variables into a BrontesConfig.
func LoadBrontes() (BrontesConfig, error) {
	host, err := requireEnv("BRONTES_HOST")
	if err != nil {
		return BrontesConfig{}, err
	}
	port, err := requireInt("BRONTES_PORT")
	if err != nil {
		return BrontesConfig{}, err
	}
	user, err := requireEnv("BRONTES_USER")
	if err != nil {
		return BrontesConfig{}, err
	}
	password, err := requireEnv("BRONTES_PASSWORD")
	if err != nil {
		return BrontesConfig{}, err
	}
	return BrontesConfig{
		Host:             host,
		Port:             port,
		User:             user,
		Password:         password,
		ConnectTimeout:   getIntOrDefault("BRONTES_TIMEOUT", 30),
		RetryIntervalSec: getIntOrDefault("BRONTES_RETRY_INTERVAL", 5),
	}, nil
}

// LoadObjectStore reads LVR_DATA_DIR / LVR_S3_BUCKET / AWS_REGION.
func LoadObjectStore() ObjectStoreConfig {
	return ObjectStoreConfig{
		DataDir:  getEnvOrDefault("LVR_DATA_DIR", "./data"),
		S3Bucket: os.Getenv("LVR_S3_BUCKET"),
		S3Region: getEnvOrDefault("AWS_REGION", "us-east-1"),
	}
}
