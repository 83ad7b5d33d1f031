package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ownlingo/docxlingo/translator"
	"github.com/rs/zerolog"
)

// ErrAllProvidersFailed is matched by every *AllProvidersFailedError
var ErrAllProvidersFailed = errors.New("all providers failed")

// Attempt records the outcome of one provider call that was not accepted
type Attempt struct {
	Provider string
	Err      error // nil when the provider answered with the sentinel
}

// AllProvidersFailedError is returned when every provider in the order
// returned an error or the sentinel.
type AllProvidersFailedError struct {
	TargetLanguage string
	Attempts       []Attempt
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, translator.Sentinel))
		}
	}
	return fmt.Sprintf("all providers failed for %s [%s]", e.TargetLanguage, strings.Join(parts, "; "))
}

func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Slots assigns providers to their positions in the failover order.
// Primary and Secondary are tried in that order for every language. Regional
// is tried first for Simplified Chinese and last for every language, so a
// Chinese translation may reach it twice.
type Slots struct {
	Primary   translator.Provider
	Secondary translator.Provider
	Regional  translator.Provider
}

// Policy implements the language-aware failover between provider slots
type Policy struct {
	slots  Slots
	logger zerolog.Logger
}

// Option configures a Policy
type Option func(*Policy)

// WithLogger sets the logger used for attempt diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// New creates a failover policy. Nil slots are skipped.
func New(slots Slots, opts ...Option) *Policy {
	if slots.Primary == nil && slots.Secondary == nil && slots.Regional == nil {
		panic("at least one provider is required")
	}

	p := &Policy{
		slots:  slots,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name of the policy (first generic provider name)
func (p *Policy) Name() string {
	order := p.Order("")
	return fmt.Sprintf("fallback-policy(%s)", order[0].Name())
}

// Order returns the providers to attempt for the target language
func (p *Policy) Order(targetLanguage string) []translator.Provider {
	order := make([]translator.Provider, 0, 4)
	if targetLanguage == translator.SimplifiedChinese {
		order = appendSlot(order, p.slots.Regional)
	}
	order = appendSlot(order, p.slots.Primary)
	order = appendSlot(order, p.slots.Secondary)
	order = appendSlot(order, p.slots.Regional)
	return order
}

func appendSlot(order []translator.Provider, provider translator.Provider) []translator.Provider {
	if provider == nil {
		return order
	}
	return append(order, provider)
}

// TranslateText returns the first acceptable translation of text. Blank text
// returns "" without calling any provider.
func (p *Policy) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		p.logger.Warn().Msg("empty text, skipping translation")
		return "", nil
	}

	p.logger.Info().Str("target_language", targetLanguage).Msg("translation started")

	req := &translator.TranslationRequest{
		Text:           text,
		TargetLanguage: targetLanguage,
	}

	order := p.Order(targetLanguage)
	attempts := make([]Attempt, 0, len(order))

	for i, provider := range order {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		log := p.logger.With().
			Str("provider", provider.Name()).
			Int("attempt", i+1).
			Int("of", len(order)).
			Logger()
		log.Info().Msg("trying provider")

		resp, err := provider.Translate(ctx, req)
		switch {
		case err != nil:
			attempts = append(attempts, Attempt{Provider: provider.Name(), Err: err})
		case resp == nil || strings.TrimSpace(resp.TranslatedText) == "":
			attempts = append(attempts, Attempt{Provider: provider.Name(), Err: errors.New("empty response")})
		case resp.IsSentinel():
			log.Warn().Msg("provider reported text as untranslatable")
			attempts = append(attempts, Attempt{Provider: provider.Name()})
		default:
			log.Info().Msg("translation succeeded")
			return resp.TranslatedText, nil
		}
	}

	// A cancelled attempt is not a provider failure.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.logger.Error().Str("target_language", targetLanguage).Msg("all translation providers failed")
	return "", &AllProvidersFailedError{TargetLanguage: targetLanguage, Attempts: attempts}
}
