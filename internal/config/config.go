package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the dashboard backend
type Config struct {
	Port        string
	Origin      string
	Environment string
	JWTSecret   string
	// HospitalName is printed on appointment slips.
	HospitalName string
	Timezone     *time.Location
	API          APIConfig
	Sweep        SweepConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
}

// APIConfig describes the remote hospital REST API
type APIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SweepConfig controls the auto-cancellation sweep
type SweepConfig struct {
	Enabled  bool
	Interval time.Duration
}

// DatabaseConfig holds database connection details for the audit store
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds the doctor cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	DoctorTTL time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hospital_dashboard"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	apiTimeout, err := getEnvAsInt("API_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	if apiTimeout <= 0 {
		return nil, fmt.Errorf("invalid API_TIMEOUT_SECONDS: must be positive")
	}

	sweepHours, err := getEnvAsInt("SWEEP_INTERVAL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if sweepHours <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_HOURS: must be positive")
	}

	sweepEnabled, err := strconv.ParseBool(getEnv("SWEEP_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_ENABLED: %w", err)
	}

	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	doctorTTL, err := getEnvAsInt("DOCTOR_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}

	auditEnabled, err := strconv.ParseBool(getEnv("AUDIT_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_ENABLED: %w", err)
	}
	dbConfig.Enabled = auditEnabled

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	return &Config{
		Port:         getEnv("PORT", "3001"),
		Origin:       getEnv("ORIGIN", "http://localhost:5173"),
		Environment:  getEnv("APP_ENV", "development"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		HospitalName: getEnv("HOSPITAL_NAME", "Hospital"),
		Timezone:     loc,
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
			APIKey:  getEnv("API_KEY", ""),
			Timeout: time.Duration(apiTimeout) * time.Second,
		},
		Sweep: SweepConfig{
			Enabled:  sweepEnabled,
			Interval: time.Duration(sweepHours) * time.Hour,
		},
		Database: dbConfig,
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			DoctorTTL: time.Duration(doctorTTL) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
