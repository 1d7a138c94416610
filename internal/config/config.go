package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the backend server.
type Config struct {
	DB    DBConfig
	Redis RedisConfig
	RAWG  RAWGConfig
	JWT   JWTConfig
	Port  string
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RAWGConfig holds RAWG catalog API configuration.
type RAWGConfig struct {
	APIKey  string
	BaseURL string
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret     string
	TTLMinutes int
}

// GatewayConfig holds configuration for the edge gateway.
type GatewayConfig struct {
	Redis                  RedisConfig
	Port                   string
	BackendURL             string
	DealsAPIURL            string
	RateLimitMax           int
	RateLimitWindowSeconds int
}

// Load reads backend configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtTTL, _ := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "10080"))

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "play_pulse"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		RAWG: RAWGConfig{
			APIKey:  getEnv("RAWG_API_KEY", ""),
			BaseURL: getEnv("RAWG_BASE_URL", "https://api.rawg.io/api"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
			TTLMinutes: jwtTTL,
		},
		Port: getEnv("SERVER_PORT", "3001"),
	}

	if cfg.RAWG.APIKey == "" {
		return nil, fmt.Errorf("RAWG_API_KEY is required")
	}

	return cfg, nil
}

// LoadGateway reads gateway configuration from environment variables.
func LoadGateway() (*GatewayConfig, error) {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "3"))
	rateLimitMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))

	return &GatewayConfig{
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Port:                   getEnv("SERVER_PORT", "3000"),
		BackendURL:             getEnv("BACKEND_URL", "http://localhost:3001"),
		DealsAPIURL:            getEnv("DEALS_API_URL", "https://plati.io/api/search.ashx"),
		RateLimitMax:           rateLimitMax,
		RateLimitWindowSeconds: rateLimitWindow,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
