package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per minute (RPM) and tokens per minute (TPM) for one provider.
// A zero or negative limit disables that dimension.
type Limiter struct {
	requests *rate.Limiter
	tokens   *rate.Limiter
}

// NewLimiter creates a new rate limiter with specified TPM and RPM limits
func NewLimiter(tpm, rpm int) *Limiter {
	return &Limiter{
		requests: perMinute(rpm),
		tokens:   perMinute(tpm),
	}
}

func perMinute(n int) *rate.Limiter {
	return rate.NewLimiter(limitFor(n), max(n, 0))
}

// Wait blocks until the request can proceed within rate limits
func (l *Limiter) Wait(ctx context.Context, tokensNeeded int) error {
	if err := l.requests.Wait(ctx); err != nil {
		return err
	}

	// WaitN rejects n above the burst, so a single oversized request only
	// drains the bucket.
	if burst := l.tokens.Burst(); burst > 0 && tokensNeeded > burst {
		tokensNeeded = burst
	}
	if tokensNeeded <= 0 {
		return nil
	}
	return l.tokens.WaitN(ctx, tokensNeeded)
}

// EstimateTokens approximates token usage as one token per four bytes, with a floor of 100.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 100 {
		n = 100
	}
	return n
}

// SetTPM updates the tokens per minute limit
func (l *Limiter) SetTPM(tpm int) {
	l.tokens.SetLimit(limitFor(tpm))
	l.tokens.SetBurst(max(tpm, 0))
}

// SetRPM updates the requests per minute limit
func (l *Limiter) SetRPM(rpm int) {
	l.requests.SetLimit(limitFor(rpm))
	l.requests.SetBurst(max(rpm, 0))
}

func limitFor(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(n) / time.Minute.Seconds())
}
