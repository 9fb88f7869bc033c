package recovery

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/graphkit/graphkit/graph"
	"github.com/graphkit/graphkit/observe"
)

// Config configures the recovery processor.
type Config struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Jitter adds randomness to delays to prevent thundering herd.
	// Default: true (disable with NoJitter)
	NoJitter bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Processor decides and performs retries for Graph requests.
type Processor struct {
	config Config
	logger observe.Logger
}

// NewProcessor creates a recovery processor. logger may be nil.
func NewProcessor(config Config, logger observe.Logger) *Processor {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Processor{config: config, logger: logger.WithCategory(observe.CategoryRecovery)}
}

// Recoverable reports whether err is worth retrying: a backend error in
// the transient or throttling category. Auth errors need a new login, not
// a retry.
func Recoverable(err error) bool {
	var apiErr *graph.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Category() {
	case graph.CategoryTransient, graph.CategoryThrottling:
		return true
	default:
		return false
	}
}

// Execute runs op for req, retrying recoverable failures. Requests flagged
// FlagDisableErrorRecovery run exactly once.
func (p *Processor) Execute(ctx context.Context, req *graph.Request, op func(context.Context) error) error {
	if req.Flags().Has(graph.FlagDisableErrorRecovery) {
		return op(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !Recoverable(err) {
			return err
		}
		if attempt >= p.config.MaxAttempts {
			break
		}

		delay := p.delay(attempt)
		if p.config.OnRetry != nil {
			p.config.OnRetry(attempt, err, delay)
		}
		p.logger.Debug(ctx, "retrying recoverable request failure",
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
			observe.Field{Key: "error", Value: err.Error()},
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (p *Processor) delay(attempt int) time.Duration {
	multiplier := math.Pow(p.config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(p.config.InitialDelay) * multiplier)
	if delay > p.config.MaxDelay {
		delay = p.config.MaxDelay
	}
	if !p.config.NoJitter && delay > 0 {
		// Up to 25% jitter.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}
