package openai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ownlingo/docxlingo/translator"
	"github.com/ownlingo/docxlingo/translator/ratelimit"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// DeepSeekBaseURL is the OpenAI-compatible endpoint of DeepSeek
const DeepSeekBaseURL = "https://api.deepseek.com/v1"

// Provider implements the translator.Provider interface for OpenAI and
// OpenAI-compatible chat completion backends
type Provider struct {
	client      *openai.Client
	name        string
	model       string
	temperature float32
	timeout     time.Duration
	rateLimiter *ratelimit.Limiter
	logger      zerolog.Logger
}

// Config holds OpenAI provider configuration
type Config struct {
	Name        string
	APIKey      string
	BaseURL     string // empty means the OpenAI default
	Model       string
	Temperature float32 // zero leaves the backend default
	TPM         int     // Tokens per minute
	RPM         int     // Requests per minute
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// DefaultConfig returns default OpenAI configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		Name:    "openai",
		APIKey:  apiKey,
		Model:   "gpt-4o-mini",
		TPM:     200000,
		RPM:     500,
		Timeout: 60 * time.Second,
		Logger:  zerolog.Nop(),
	}
}

// DeepSeekConfig returns configuration for DeepSeek through its OpenAI-compatible API
func DeepSeekConfig(apiKey string) *Config {
	return &Config{
		Name:        "deepseek",
		APIKey:      apiKey,
		BaseURL:     DeepSeekBaseURL,
		Model:       "deepseek-chat",
		Temperature: 0.7,
		TPM:         0, // DeepSeek does not publish fixed limits
		RPM:         0,
		Timeout:     60 * time.Second,
		Logger:      zerolog.Nop(),
	}
}

// NewProvider creates a new OpenAI provider
func NewProvider(config *Config) *Provider {
	if config == nil {
		panic("config cannot be nil")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	name := config.Name
	if name == "" {
		name = "openai"
	}

	return &Provider{
		client:      openai.NewClientWithConfig(clientConfig),
		name:        name,
		model:       config.Model,
		temperature: config.Temperature,
		timeout:     config.Timeout,
		rateLimiter: ratelimit.NewLimiter(config.TPM, config.RPM),
		logger:      config.Logger.With().Str("provider", name).Logger(),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.name
}

// Translate translates a single text with one chat completion request
func (p *Provider) Translate(ctx context.Context, req *translator.TranslationRequest) (*translator.TranslationResponse, error) {
	start := time.Now()
	p.logger.Info().Int("text_length", utf8.RuneCountInString(req.Text)).Msg("api call started")

	response, err := p.translate(ctx, req)
	if err != nil {
		p.logger.Error().Err(err).Msg("api call failed")
		return nil, &translator.ProviderCallError{Provider: p.name, Err: err}
	}

	response.Duration = time.Since(start)
	response.Provider = p.name

	p.logger.Info().
		Int("result_length", utf8.RuneCountInString(response.TranslatedText)).
		Dur("duration", response.Duration).
		Msg("api call completed")

	return response, nil
}

func (p *Provider) translate(ctx context.Context, req *translator.TranslationRequest) (*translator.TranslationResponse, error) {
	if err := p.rateLimiter.Wait(ctx, ratelimit.EstimateTokens(req.Text)); err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: translator.SystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: translator.UserPrompt(req.TargetLanguage, req.Text),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from %s", p.name)
	}

	translatedText := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translatedText == "" {
		return nil, fmt.Errorf("empty completion returned from %s", p.name)
	}

	return &translator.TranslationResponse{
		TranslatedText: translatedText,
		SourceText:     req.Text,
		TokensUsed: translator.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
