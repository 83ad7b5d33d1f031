package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/ownlingo/docxlingo/translator"
	"github.com/ownlingo/docxlingo/translator/ratelimit"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Provider implements the translator.Provider interface for Google Gemini
type Provider struct {
	client      *genai.Client
	model       *genai.GenerativeModel
	timeout     time.Duration
	rateLimiter *ratelimit.Limiter
	logger      zerolog.Logger
}

// Config holds Gemini provider configuration
type Config struct {
	APIKey  string
	Model   string
	TPM     int // Tokens per minute
	RPM     int // Requests per minute
	Timeout time.Duration
	Logger  zerolog.Logger
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:  apiKey,
		Model:   "gemini-2.0-flash",
		TPM:     1000000,
		RPM:     15,
		Timeout: 60 * time.Second,
		Logger:  zerolog.Nop(),
	}
}

// NewProvider creates a new Gemini provider
func NewProvider(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// The instruction never changes, so the model is configured once and
	// shared read-only by every call.
	model := client.GenerativeModel(config.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(translator.SystemPrompt())},
	}

	return &Provider{
		client:      client,
		model:       model,
		timeout:     config.Timeout,
		rateLimiter: ratelimit.NewLimiter(config.TPM, config.RPM),
		logger:      config.Logger.With().Str("provider", "gemini").Logger(),
	}, nil
}

// Close closes the Gemini client
func (p *Provider) Close() error {
	return p.client.Close()
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
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

	resp, err := p.model.GenerateContent(ctx, genai.Text(translator.UserPrompt(req.TargetLanguage, req.Text)))
	if err != nil {
		return nil, err
	}

	translatedText := strings.TrimSpace(responseText(resp))
	if translatedText == "" {
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return &translator.TranslationResponse{
		TranslatedText: translatedText,
		SourceText:     req.Text,
		TokensUsed: translator.TokenUsage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	}, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
