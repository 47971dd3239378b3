package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API settings
	BaseURL string
	APIKey  string

	// List behaviour
	PollInterval    time.Duration
	SearchDebounce  time.Duration
	DefaultPageSize int

	// Workflow behaviour
	EstimateDebounce time.Duration
	SuccessAutoClose time.Duration

	// HTTP settings
	RequestTimeout time.Duration
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		BaseURL:          "http://localhost:8080",
		PollInterval:     30 * time.Second,
		SearchDebounce:   400 * time.Millisecond,
		DefaultPageSize:  25,
		EstimateDebounce: 500 * time.Millisecond,
		SuccessAutoClose: 1500 * time.Millisecond,
		RequestTimeout:   30 * time.Second,
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if baseURL := os.Getenv("OPS_CONSOLE_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}

	if apiKey := os.Getenv("OPS_CONSOLE_API_KEY"); apiKey != "" {
		c.APIKey = apiKey
	}

	if interval := os.Getenv("OPS_CONSOLE_POLL_INTERVAL"); interval != "" {
		if i, err := strconv.Atoi(interval); err == nil {
			c.PollInterval = time.Duration(i) * time.Second
		}
	}

	if debounce := os.Getenv("OPS_CONSOLE_SEARCH_DEBOUNCE"); debounce != "" {
		if d, err := strconv.Atoi(debounce); err == nil {
			c.SearchDebounce = time.Duration(d) * time.Millisecond
		}
	}

	if size := os.Getenv("OPS_CONSOLE_PAGE_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			c.DefaultPageSize = s
		}
	}

	if timeout := os.Getenv("OPS_CONSOLE_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.RequestTimeout = time.Duration(t) * time.Second
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://, got: %s", c.BaseURL)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %v", c.PollInterval)
	}

	if c.SearchDebounce <= 0 {
		return fmt.Errorf("search debounce must be positive, got: %v", c.SearchDebounce)
	}

	validSizes := map[int]bool{5: true, 10: true, 25: true, 50: true, 100: true}
	if !validSizes[c.DefaultPageSize] {
		return fmt.Errorf("page size must be one of 5, 10, 25, 50, 100, got: %d", c.DefaultPageSize)
	}

	return nil
}
