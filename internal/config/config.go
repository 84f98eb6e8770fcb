
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"khabar-verifier/internal/crawler"
)

type Config struct {
	Addr           string
	FetchTimeout   time.Duration
	DialTimeout    time.Duration
	HandlerTimeout time.Duration
	MaxBodyBytes   int64 // 0 disables the fetch cap
	MaxUploadBytes int64
	UserAgent      string
	LogLevel       string
	LogFormat      string
}

// Load reads an optional .env file from the working directory (real
// environment variables win) and returns the resulting config.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Addr:           getString("ADDR", ":8080"),
		FetchTimeout:   getDuration("FETCH_TIMEOUT", 15*time.Second),
		DialTimeout:    getDuration("DIAL_TIMEOUT", 5*time.Second),
		HandlerTimeout: getDuration("HANDLER_TIMEOUT", 60*time.Second),
		MaxBodyBytes:   getInt64("MAX_BODY_BYTES", 5*1024*1024),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 32<<20),
		UserAgent:      getString("USER_AGENT", crawler.DesktopUserAgent),
		LogLevel:       getString("LOG_LEVEL", "info"),
		LogFormat:      getString("LOG_FORMAT", "json"),
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("ADDR is required")
	}
	if c.FetchTimeout <= 0 || c.DialTimeout <= 0 || c.HandlerTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.MaxBodyBytes < 0 {
		return errors.Errorf("MAX_BODY_BYTES must be >= 0, got %d", c.MaxBodyBytes)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
