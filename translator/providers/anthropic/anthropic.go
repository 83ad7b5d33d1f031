package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ownlingo/docxlingo/translator"
	"github.com/ownlingo/docxlingo/translator/ratelimit"
	"github.com/rs/zerolog"
)

// Provider implements the translator.Provider interface for Anthropic
type Provider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	timeout     time.Duration
	rateLimiter *ratelimit.Limiter
	logger      zerolog.Logger
}

// Config holds Anthropic provider configuration
type Config struct {
	APIKey    string
	BaseURL   string // empty means the Anthropic default
	Model     string
	MaxTokens int64
	TPM       int // Tokens per minute
	RPM       int // Requests per minute
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// DefaultConfig returns default Anthropic configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 4096,
		TPM:       80000, // Claude Sonnet default TPM
		RPM:       50,    // Claude Sonnet default RPM
		Timeout:   60 * time.Second,
		Logger:    zerolog.Nop(),
	}
}

// NewProvider creates a new Anthropic provider
func NewProvider(config *Config) *Provider {
	if config == nil {
		panic("config cannot be nil")
	}

	// The SDK retries by default; failover owns that decision here.
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Provider{
		client:      anthropic.NewClient(opts...),
		model:       config.Model,
		maxTokens:   maxTokens,
		timeout:     config.Timeout,
		rateLimiter: ratelimit.NewLimiter(config.TPM, config.RPM),
		logger:      config.Logger.With().Str("provider", "anthropic").Logger(),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "anthropic"
}

// Translate translates a single text
func (p *Provider) Translate(ctx context.Context, req *translator.TranslationRequest) (*translator.TranslationResponse, error) {
	start := time.Now()
	p.logger.Info().Int("text_length", utf8.RuneCountInString(req.Text)).Msg("api call started")

	response, err := p.translate(ctx, req)
	if err != nil {
		p.logger.Error().Err(err).Msg("api call failed")
		return nil, &translator.ProviderCallError{Provider: p.Name(), Err: err}
	}

	response.Duration = time.Since(start)
	response.Provider = p.Name()

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

	// Combine system prompt with user request since SDK typing is complex
	fullPrompt := fmt.Sprintf("%s\n\n%s", translator.SystemPrompt(), translator.UserPrompt(req.TargetLanguage, req.Text))

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fullPrompt)),
		},
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	translatedText := strings.TrimSpace(sb.String())
	if translatedText == "" {
		return nil, fmt.Errorf("no content returned from Anthropic")
	}

	return &translator.TranslationResponse{
		TranslatedText: translatedText,
		SourceText:     req.Text,
		TokensUsed: translator.TokenUsage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}
