package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"humboard/database"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	ListenAddr string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Token economy configuration, all prices in HUM
	StartingBalance int64
	QuestionPrice   int64
	AnswerPrice     int64
	VotePrice       int64
	ViewPrice       int64

	// Ledger audit configuration
	AuditSchedule string // cron spec; empty disables the audit job

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// SetTestConfig sets the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:     "test",
		ListenAddr:      ":0",
		StartingBalance: 5,
		QuestionPrice:   3,
		AnswerPrice:     2,
		VotePrice:       2,
		ViewPrice:       1,
	}
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		ListenAddr: os.Getenv("LISTEN_ADDR"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Token economy defaults
		StartingBalance: 5,
		QuestionPrice:   3,
		AnswerPrice:     2,
		VotePrice:       2,
		ViewPrice:       1,

		// Nightly reconciliation by default
		AuditSchedule: "0 4 * * *",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if price := os.Getenv("QUESTION_PRICE"); price != "" {
		if parsed, err := strconv.ParseInt(price, 10, 64); err == nil {
			config.QuestionPrice = parsed
		}
	}
	if price := os.Getenv("ANSWER_PRICE"); price != "" {
		if parsed, err := strconv.ParseInt(price, 10, 64); err == nil {
			config.AnswerPrice = parsed
		}
	}
	if price := os.Getenv("VOTE_PRICE"); price != "" {
		if parsed, err := strconv.ParseInt(price, 10, 64); err == nil {
			config.VotePrice = parsed
		}
	}
	if price := os.Getenv("VIEW_PRICE"); price != "" {
		if parsed, err := strconv.ParseInt(price, 10, 64); err == nil {
			config.ViewPrice = parsed
		}
	}
	if schedule, ok := os.LookupEnv("AUDIT_SCHEDULE"); ok {
		config.AuditSchedule = schedule
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":3000"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
