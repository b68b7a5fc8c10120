package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Python worker
	PythonExecutable string
	ScriptsDir       string
	AnalysisTimeout  time.Duration

	// Local storage
	UploadDir  string
	ReportsDir string

	// Supabase
	SupabaseURL           string
	SupabaseKey           string
	SupabaseStorageBucket string

	// Auth
	JWTSecret string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PythonExecutable: getEnv("PYTHON_EXECUTABLE", "python3"),
		ScriptsDir:       getEnv("SCRIPTS_DIR", "python_scripts"),
		AnalysisTimeout:  getEnvDuration("ANALYSIS_TIMEOUT", 0),

		UploadDir:  getEnv("UPLOAD_DIR", "storage/uploads"),
		ReportsDir: getEnv("REPORTS_DIR", "storage/analysis"),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseKey:           getEnv("SUPABASE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "evidencias"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
