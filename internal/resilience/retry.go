package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Backoff selects how the delay grows between attempts.
type Backoff int

const (
	// BackoffExponential doubles (by Multiplier) the delay each attempt.
	BackoffExponential Backoff = iota
	// BackoffLinear grows the delay as Base * attemptNumber. This is the
	// rate-limit policy the news archive expects: 10s, 20s, 30s, ...
	BackoffLinear
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// Base is the delay before the first retry. Default: 1s.
	Base time.Duration

	// MaxDelay caps any single backoff sleep. Default: 60s.
	MaxDelay time.Duration

	// Backoff selects the growth strategy. Default: BackoffExponential.
	Backoff Backoff

	// Multiplier scales exponential backoff. Ignored for linear. Default: 2.
	Multiplier float64

	// ShouldRetry overrides the default transient-error check.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with the attempt number
	// (1-based) and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// RateLimitRetry is the policy for 429 responses from the news archive:
// linear backoff, five attempts, retrying only on rate-limit errors.
func RateLimitRetry(base time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		Base:        base,
		Backoff:     BackoffLinear,
		ShouldRetry: IsRateLimited,
	}
}

// DoVal executes fn with retries per cfg, preserving the successful value.
// Only errors deemed retryable (ShouldRetry, or IsTransient by default)
// are retried. Context cancellation stops retries immediately.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if !shouldRetry(lastErr) {
			return zero, lastErr
		}
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(delay(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// Do executes fn with retries per cfg.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Base <= 0 {
		cfg.Base = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 60 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return cfg
}

// delay computes the sleep before retry attempt+1 (attempt is 0-based).
func delay(attempt int, cfg RetryConfig) time.Duration {
	var d float64
	switch cfg.Backoff {
	case BackoffLinear:
		d = float64(cfg.Base) * float64(attempt+1)
	default:
		d = float64(cfg.Base) * math.Pow(cfg.Multiplier, float64(attempt))
	}
	if d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	return time.Duration(d)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
