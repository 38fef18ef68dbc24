package api

import "time"

// Config holds connection settings for the allowance API.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns settings for a local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8000",
		Timeout:    15 * time.Second,
		MaxRetries: 2,
	}
}
