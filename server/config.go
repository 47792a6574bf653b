package server

import (
	"fmt"

	"github.com/kbukum/tashkeel/server/middleware"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodySize  string `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "1MB"

	// MaxTextLength bounds each input text in characters.
	MaxTextLength int `yaml:"max_text_length" mapstructure:"max_text_length"`
	// MaxBatchSize bounds the number of texts in one batch request.
	MaxBatchSize int `yaml:"max_batch_size" mapstructure:"max_batch_size"`
	// BatchConcurrency bounds the texts of one batch diacritized at once.
	BatchConcurrency int `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`

	CORS      middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 120
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if c.MaxTextLength == 0 {
		c.MaxTextLength = 10000
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 256
	}
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = 4
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if c.MaxTextLength < 0 {
		return fmt.Errorf("server.max_text_length must be non-negative (got: %d)", c.MaxTextLength)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("server.max_batch_size must be at least 1 (got: %d)", c.MaxBatchSize)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("server.batch_concurrency must be at least 1 (got: %d)", c.BatchConcurrency)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be positive")
	}
	return nil
}
