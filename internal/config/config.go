package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs. It is built once in main and
// passed down explicitly; nothing else reads the environment.
type Config struct {
	HTTPAddr  string
	Currency  string
	Provider  string
	Database  Database
	Razorpay  Razorpay
	Reconcile Reconcile
}

type Database struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
}

type Razorpay struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// Reconcile tunes the background job that re-drives fulfillment for paid
// orders that never got their stock decremented.
type Reconcile struct {
	Interval  time.Duration
	OlderThan time.Duration
	BatchSize int
}

// Configured reports whether real provider credentials are present. Without
// them the mock gateway is used.
func (r Razorpay) Configured() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

func Load() *Config {
	// Missing .env is fine: the environment may already be populated.
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		Currency: getenv("PAYMENTS_CURRENCY", "INR"),
		Provider: getenv("PAYMENTS_PROVIDER", "mock"),
		Database: Database{
			Host:     getenv("BLUEPRINT_DB_HOST", "localhost"),
			Port:     getenv("BLUEPRINT_DB_PORT", "5432"),
			Username: getenv("BLUEPRINT_DB_USERNAME", "postgres"),
			Password: getenv("BLUEPRINT_DB_PASSWORD", "postgres"),
			Database: getenv("BLUEPRINT_DB_DATABASE", "ecom"),
			Schema:   getenv("BLUEPRINT_DB_SCHEMA", "public"),
		},
		Razorpay: Razorpay{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
			BaseURL:   getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		},
		Reconcile: Reconcile{
			Interval:  getduration("RECONCILE_INTERVAL", time.Minute),
			OlderThan: getduration("RECONCILE_OLDER_THAN", time.Minute),
			BatchSize: 50,
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
