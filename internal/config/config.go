package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	CacheDriverPostgres = "postgres"
	CacheDriverSQLite   = "sqlite"
)

type Config struct {
	Env                  string
	HTTPAddr             string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIHTTPProxy      string
	OpenAIModel          string
	OpenAIRequestTimeout time.Duration
	MaxTokens            int
	PromptVersion        string
	TranscriptByteBudget int
	TitleByteBudget      int
	DefaultLanguage      string
	CacheDriver          string
	DatabaseURL          string
	SQLitePath           string
	SummaryWebhookURL    string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.TranscriptByteBudget <= 0 {
		return fmt.Errorf("TRANSCRIPT_BYTE_BUDGET must be positive, got %d", c.TranscriptByteBudget)
	}
	if c.TitleByteBudget <= 0 {
		return fmt.Errorf("TITLE_BYTE_BUDGET must be positive, got %d", c.TitleByteBudget)
	}
	if c.OpenAIRequestTimeout <= 0 {
		return fmt.Errorf("OPENAI_REQUEST_TIMEOUT must be positive, got %s", c.OpenAIRequestTimeout)
	}
	if _, err := url.ParseRequestURI(c.OpenAIBaseURL); err != nil {
		return fmt.Errorf("OPENAI_BASE_URL is invalid: %w", err)
	}
	if c.OpenAIHTTPProxy != "" {
		if _, err := url.ParseRequestURI(c.OpenAIHTTPProxy); err != nil {
			return fmt.Errorf("OPENAI_HTTP_PROXY is invalid: %w", err)
		}
	}
	switch c.CacheDriver {
	case CacheDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CACHE_DRIVER=%s", CacheDriverPostgres)
		}
	case CacheDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when CACHE_DRIVER=%s", CacheDriverSQLite)
		}
	default:
		return fmt.Errorf("CACHE_DRIVER must be %q or %q, got %q", CacheDriverPostgres, CacheDriverSQLite, c.CacheDriver)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "OPENAI_BASE_URL", value: c.OpenAIBaseURL},
		{name: "OPENAI_MODEL", value: c.OpenAIModel},
		{name: "PROMPT_VERSION", value: c.PromptVersion},
		{name: "DEFAULT_SUMMARY_LANGUAGE", value: c.DefaultLanguage},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
