// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the lifecycle service.  Each field
// corresponds to an environment variable.
type Config struct {
	Env         string // APP_ENV, "production" switches the logger to JSON
	Port        string // APP_PORT
	ServiceName string // SERVICE_NAME, used in logs and as the metrics prefix
	LogLevel    string // LOG_LEVEL

	// DB_* select the MySQL store.  With STORE=memory the process runs on
	// the in-memory store and the DB variables are not required.
	Store  string
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret string // JWT_SECRET, verifies bearer tokens

	RabbitURL       string // RABBITMQ_URL, empty disables events
	LifecycleLogDir string // LIFECYCLE_LOG_DIR, audit trail directory

	MaxAttempts   int // LIFECYCLE_MAX_ATTEMPTS
	CascadeSweeps int // LIFECYCLE_CASCADE_SWEEPS
}

// Store kinds.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Load reads .env (if present) and the environment.  Required variables
// are enforced by must(); a missing value stops the process.
func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		ServiceName:     envStr("SERVICE_NAME", "lifecycle"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		Store:           envStr("STORE", StoreMySQL),
		JWTSecret:       must("JWT_SECRET"),
		RabbitURL:       os.Getenv("RABBITMQ_URL"),
		LifecycleLogDir: envStr("LIFECYCLE_LOG_DIR", "logs"),
		MaxAttempts:     envInt("LIFECYCLE_MAX_ATTEMPTS", 3),
		CascadeSweeps:   envInt("LIFECYCLE_CASCADE_SWEEPS", 2),
	}
	switch cfg.Store {
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		log.Fatalf("invalid STORE %q (want %s or %s)", cfg.Store, StoreMySQL, StoreMemory)
	}
	if cfg.MaxAttempts < 1 {
		log.Fatalf("invalid LIFECYCLE_MAX_ATTEMPTS: %d", cfg.MaxAttempts)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
