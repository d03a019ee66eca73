// Package config provides configuration structures and loading for the
// collection backend.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the backend server.
type Config struct {
	// SQLite database path
	DBPath string
	// HTTP listen port
	Port string
	// Allowed CORS origins for the mobile/web clients
	CORSAllowedOrigins []string

	// eBay Browse API credentials and endpoint
	EbayAPIKey  string
	EbayBaseURL string

	// Maximum marketplace calls per day
	MaxDailyCalls int
	// Minimum spacing between marketplace calls
	MinCallInterval time.Duration
	// How long a cached quote stays valid
	CacheTTL time.Duration
	// Maximum price-history entries kept per item
	HistoryCap int
	// Total fetch attempts for transient marketplace faults
	MaxRetries int
	// Pause between items during a batch refresh
	BatchDelay time.Duration

	// Background refresh worker interval
	RefreshInterval time.Duration
	// Hour of day (0-23) to record the daily value snapshot
	SnapshotHour int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DBPath:             "./collectique.db",
		Port:               "8080",
		CORSAllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		EbayBaseURL:        "",
		MaxDailyCalls:      100,
		MinCallInterval:    60 * time.Second,
		CacheTTL:           24 * time.Hour,
		HistoryCap:         50,
		MaxRetries:         3,
		BatchDelay:         time.Second,
		RefreshInterval:    time.Hour,
		SnapshotHour:       23,
	}
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("EBAY_API_KEY"); v != "" {
		c.EbayAPIKey = v
	}
	if v := os.Getenv("EBAY_BASE_URL"); v != "" {
		c.EbayBaseURL = v
	}
	if v := os.Getenv("MAX_DAILY_CALLS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.MaxDailyCalls = i
		}
	}
	if v := os.Getenv("MIN_CALL_INTERVAL_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.MinCallInterval = time.Duration(i) * time.Millisecond
		}
	}
	if v := os.Getenv("CACHE_TTL_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.CacheTTL = time.Duration(i) * time.Millisecond
		}
	}
	if v := os.Getenv("HISTORY_CAP"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.HistoryCap = i
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.MaxRetries = i
		}
	}
	if v := os.Getenv("BATCH_DELAY_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			c.BatchDelay = time.Duration(i) * time.Millisecond
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL_MINUTES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.RefreshInterval = time.Duration(i) * time.Minute
		}
	}
	if v := os.Getenv("SNAPSHOT_HOUR"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 && i <= 23 {
			c.SnapshotHour = i
		}
	}
}
