package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ownlingo/docxlingo/config"
	"github.com/ownlingo/docxlingo/translator"
	"github.com/ownlingo/docxlingo/translator/fallback"
	"github.com/ownlingo/docxlingo/translator/providers/anthropic"
	"github.com/ownlingo/docxlingo/translator/providers/gemini"
	"github.com/ownlingo/docxlingo/translator/providers/openai"
)

// buildPolicy constructs one adapter per configured backend and assigns them
// to the failover slots. Slots whose backend has no API key stay empty. The
// returned func closes clients that hold connections.
func buildPolicy(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*fallback.Policy, func(), error) {
	built := make(map[string]translator.Provider)
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	provider := func(kind string) (translator.Provider, error) {
		if p, ok := built[kind]; ok {
			return p, nil
		}
		key := cfg.APIKey(kind)
		if key == "" {
			if kind != config.BackendNone {
				logger.Warn().Str("backend", kind).Msg("no API key configured, slot disabled")
			}
			return nil, nil
		}

		var p translator.Provider
		switch kind {
		case config.BackendOpenAI:
			c := openai.DefaultConfig(key)
			c.Model = cfg.OpenAIModel
			c.Timeout = cfg.RequestTimeout
			c.Logger = logger
			p = openai.NewProvider(c)
		case config.BackendDeepSeek:
			c := openai.DeepSeekConfig(key)
			c.Model = cfg.DeepSeekModel
			c.BaseURL = cfg.DeepSeekBaseURL
			c.Timeout = cfg.RequestTimeout
			c.Logger = logger
			p = openai.NewProvider(c)
		case config.BackendAnthropic:
			c := anthropic.DefaultConfig(key)
			c.Model = cfg.AnthropicModel
			c.Timeout = cfg.RequestTimeout
			c.Logger = logger
			p = anthropic.NewProvider(c)
		case config.BackendGemini:
			c := gemini.DefaultConfig(key)
			c.Model = cfg.GeminiModel
			c.Timeout = cfg.RequestTimeout
			c.Logger = logger
			g, err := gemini.NewProvider(ctx, c)
			if err != nil {
				return nil, err
			}
			closers = append(closers, g.Close)
			p = g
		default:
			return nil, fmt.Errorf("unknown backend %q", kind)
		}

		built[kind] = p
		return p, nil
	}

	primaryKind, secondaryKind, regionalKind := cfg.Slots()

	var slots fallback.Slots
	var err error
	if slots.Primary, err = provider(primaryKind); err != nil {
		closeAll()
		return nil, nil, err
	}
	if slots.Secondary, err = provider(secondaryKind); err != nil {
		closeAll()
		return nil, nil, err
	}
	if slots.Regional, err = provider(regionalKind); err != nil {
		closeAll()
		return nil, nil, err
	}

	if slots.Primary == nil && slots.Secondary == nil && slots.Regional == nil {
		closeAll()
		return nil, nil, errors.New("no translation provider is configured")
	}

	return fallback.New(slots, fallback.WithLogger(logger)), closeAll, nil
}
