// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// NLP configuration
	NLP NLPConfig `mapstructure:"nlp"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Conversation store configuration
	Conversation ConversationConfig `mapstructure:"conversation"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig holds graph database configuration
type DatabaseConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// NLPConfig holds completion model configuration
type NLPConfig struct {
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Temperature    float32       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
}

// EmbeddingConfig holds embedding model configuration
type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size"`
}

// RetrievalConfig holds retrieval defaults
type RetrievalConfig struct {
	Limit   int `mapstructure:"limit"`
	MaxHops int `mapstructure:"max_hops"`
}

// ConversationConfig holds conversation store configuration
type ConversationConfig struct {
	Capacity    int           `mapstructure:"capacity"`
	TTL         time.Duration `mapstructure:"ttl"`
	ArchivePath string        `mapstructure:"archive_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("database.uri", "bolt://localhost:7687")
	viper.SetDefault("database.username", "neo4j")
	viper.SetDefault("database.database", "neo4j")

	viper.SetDefault("nlp.model", "gpt-4o-mini")
	viper.SetDefault("nlp.temperature", 0.2)
	viper.SetDefault("nlp.max_tokens", 1024)
	viper.SetDefault("nlp.request_timeout", 10*time.Second)
	viper.SetDefault("nlp.max_attempts", 3)

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)
	viper.SetDefault("embedding.batch_size", 64)

	viper.SetDefault("retrieval.limit", 10)
	viper.SetDefault("retrieval.max_hops", 2)

	viper.SetDefault("conversation.capacity", 100)
	viper.SetDefault("conversation.ttl", 30*time.Minute)

	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.NLP.APIKey == "" {
			config.NLP.APIKey = apiKey
		}
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
}
