package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ZaguanLabs/linguaswap"
)

// Config holds the defaults read from the environment. Flags override them.
type Config struct {
	Locales         string        `env:"LINGUASWAP_LOCALES" envDefault:"locales"`
	Reference       string        `env:"LINGUASWAP_REFERENCE"`
	Budget          time.Duration `env:"LINGUASWAP_BUDGET" envDefault:"300ms"`
	CacheMaxEntries int           `env:"LINGUASWAP_CACHE_MAX_ENTRIES" envDefault:"1000"`
	CacheMaxBytes   int64         `env:"LINGUASWAP_CACHE_MAX_BYTES" envDefault:"5242880"`
	CacheTTL        time.Duration `env:"LINGUASWAP_CACHE_TTL" envDefault:"5m"`
	RedisURL        string        `env:"LINGUASWAP_REDIS_URL"`
	BatchSize       int           `env:"LINGUASWAP_BATCH_SIZE" envDefault:"50"`
	LogLevel        string        `env:"LINGUASWAP_LOG_LEVEL" envDefault:"info"`
	NoColor         bool          `env:"NO_COLOR"`

	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"LINGUASWAP_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string `env:"LINGUASWAP_OPENAI_BASE_URL"`
	RequestsPerMin int    `env:"LINGUASWAP_OPENAI_RPM" envDefault:"60"`
}

func loadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

func (c Config) logger(w io.Writer) (*slog.Logger, error) {
	level, err := linguaswap.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return linguaswap.NewLogger(w, level, c.NoColor), nil
}
