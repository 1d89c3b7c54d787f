package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/matome/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                  string        `env:"ENV" envDefault:"production"`
	HTTPAddr             string        `env:"HTTP_ADDR" envDefault:":8080"`
	OpenAIAPIKey         string        `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL        string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIHTTPProxy      string        `env:"OPENAI_HTTP_PROXY"`
	OpenAIModel          string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAIRequestTimeout time.Duration `env:"OPENAI_REQUEST_TIMEOUT" envDefault:"5m"`
	MaxTokens            int           `env:"MAX_TOKENS" envDefault:"300"`
	PromptVersion        string        `env:"PROMPT_VERSION,required"`
	TranscriptByteBudget int           `env:"TRANSCRIPT_BYTE_BUDGET" envDefault:"7000"`
	TitleByteBudget      int           `env:"TITLE_BYTE_BUDGET" envDefault:"300"`
	DefaultLanguage      string        `env:"DEFAULT_SUMMARY_LANGUAGE" envDefault:"中文"`
	CacheDriver          string        `env:"CACHE_DRIVER" envDefault:"postgres"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	SQLitePath           string        `env:"SQLITE_PATH" envDefault:"matome.db"`
	SummaryWebhookURL    string        `env:"SUMMARY_WEBHOOK_URL"`
}

// Load reads .env files when present, then the process environment.
// Variables already set in the environment win over .env values.
func Load(dotenvFiles ...string) (*internalconfig.Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                  raw.Env,
		HTTPAddr:             raw.HTTPAddr,
		OpenAIAPIKey:         raw.OpenAIAPIKey,
		OpenAIBaseURL:        raw.OpenAIBaseURL,
		OpenAIHTTPProxy:      raw.OpenAIHTTPProxy,
		OpenAIModel:          raw.OpenAIModel,
		OpenAIRequestTimeout: raw.OpenAIRequestTimeout,
		MaxTokens:            raw.MaxTokens,
		PromptVersion:        raw.PromptVersion,
		TranscriptByteBudget: raw.TranscriptByteBudget,
		TitleByteBudget:      raw.TitleByteBudget,
		DefaultLanguage:      raw.DefaultLanguage,
		CacheDriver:          raw.CacheDriver,
		DatabaseURL:          raw.DatabaseURL,
		SQLitePath:           raw.SQLitePath,
		SummaryWebhookURL:    raw.SummaryWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
