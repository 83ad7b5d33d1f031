package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Backend kinds assignable to a failover slot
const (
	BackendOpenAI    = "openai"
	BackendGemini    = "gemini"
	BackendDeepSeek  = "deepseek"
	BackendAnthropic = "anthropic"
	BackendNone      = "none"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	DeepSeekAPIKey  string `envconfig:"DEEPSEEK_API_KEY"`
	DeepSeekModel   string `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	DeepSeekBaseURL string `envconfig:"DEEPSEEK_BASE_URL" default:"https://api.deepseek.com/v1"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`

	ProviderPrimary   string `envconfig:"PROVIDER_PRIMARY" default:"openai"`
	ProviderSecondary string `envconfig:"PROVIDER_SECONDARY" default:"gemini"`
	ProviderRegional  string `envconfig:"PROVIDER_REGIONAL" default:"deepseek"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	BatchSize      int           `envconfig:"BATCH_SIZE" default:"10"`
	OutputDir      string        `envconfig:"OUTPUT_DIR" default:"data"`

	UnidocLicenseKey string `envconfig:"UNIDOC_LICENSE_API_KEY"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	slots := []struct{ name, kind string }{
		{"PROVIDER_PRIMARY", c.ProviderPrimary},
		{"PROVIDER_SECONDARY", c.ProviderSecondary},
		{"PROVIDER_REGIONAL", c.ProviderRegional},
	}
	for _, slot := range slots {
		if !isBackend(normalize(slot.kind)) {
			return fmt.Errorf("%s=%q is not one of openai, gemini, deepseek, anthropic, none", slot.name, slot.kind)
		}
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be >= 1")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}

	primary, secondary, regional := c.Slots()
	if c.APIKey(primary) == "" && c.APIKey(secondary) == "" && c.APIKey(regional) == "" {
		return fmt.Errorf("no provider slot has an API key configured")
	}
	return nil
}

// LoadLicenseKey reads only the UniDoc license key, for commands that open
// documents without calling any provider.
func LoadLicenseKey() (string, error) {
	var license struct {
		Key string `envconfig:"UNIDOC_LICENSE_API_KEY"`
	}
	if err := envconfig.Process("", &license); err != nil {
		return "", err
	}
	return strings.TrimSpace(license.Key), nil
}

// Slots returns the normalized backend kind of each failover slot
func (c *Config) Slots() (primary, secondary, regional string) {
	return normalize(c.ProviderPrimary), normalize(c.ProviderSecondary), normalize(c.ProviderRegional)
}

// APIKey returns the credential for a backend kind, or "" when unset
func (c *Config) APIKey(kind string) string {
	switch normalize(kind) {
	case BackendOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey)
	case BackendGemini:
		return strings.TrimSpace(c.GeminiAPIKey)
	case BackendDeepSeek:
		return strings.TrimSpace(c.DeepSeekAPIKey)
	case BackendAnthropic:
		return strings.TrimSpace(c.AnthropicAPIKey)
	}
	return ""
}

func normalize(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func isBackend(kind string) bool {
	switch kind {
	case BackendOpenAI, BackendGemini, BackendDeepSeek, BackendAnthropic, BackendNone:
		return true
	}
	return false
}
