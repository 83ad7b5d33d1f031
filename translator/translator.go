package translator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider defines the interface for a single translation backend
type Provider interface {
	// Translate issues exactly one request to the backend. Any backend fault
	// is returned as a *ProviderCallError.
	Translate(ctx context.Context, req *TranslationRequest) (*TranslationResponse, error)

	// Name returns the provider name
	Name() string
}

// Sentinel is the reply a provider is instructed to give when the text
// cannot be translated.
const Sentinel = "untranslatable"

// TranslationRequest represents a translation request
type TranslationRequest struct {
	Text           string
	TargetLanguage string
}

// TranslationResponse represents a translation response
type TranslationResponse struct {
	TranslatedText string
	SourceText     string
	TokensUsed     TokenUsage
	Provider       string
	Duration       time.Duration
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// IsSentinel reports whether a response is the "untranslatable" marker.
func (r *TranslationResponse) IsSentinel() bool {
	return r != nil && strings.TrimSpace(r.TranslatedText) == Sentinel
}

// ProviderCallError wraps any transport or backend fault of one provider call.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

// SystemPrompt returns the fixed translation instruction shared by all providers
func SystemPrompt() string {
	return `You are a professional translator. Follow these rules strictly:
1. Translate the given Korean text accurately and naturally.
2. Take terminology and context into account.
3. Preserve the meaning and nuance of the original as closely as possible.
4. Output only the translation. Do not add explanations or notes.
5. If the text cannot be translated, reply with only "` + Sentinel + `".
6. Keep the original layout: line breaks, indentation and table formatting.
7. Leave any "---CELL_SEPARATOR---" marker exactly as it appears.`
}

// UserPrompt builds the per-request instruction for the target language
func UserPrompt(targetLanguage, text string) string {
	return fmt.Sprintf("Translate the following Korean text into %s:\n\n%s", targetLanguage, text)
}
