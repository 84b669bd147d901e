package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

var wait = utils.WaitFor

// Executor re-invokes a failing operation with a delay of baseDelay × attempt
// between tries. It keeps no state between calls.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

// New creates an Executor. Non-positive values fall back to the defaults
// (3 attempts, 2s base delay).
func New(maxAttempts int, baseDelay time.Duration, log *zap.Logger) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}

	return &Executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.OrNop(log),
	}
}

func (e *Executor) MaxAttempts() int { return e.maxAttempts }

// Delay returns the pause before the retry that follows the given failed attempt.
func (e *Executor) Delay(attempt int) time.Duration {
	return e.baseDelay * time.Duration(attempt)
}

// Do runs op at most MaxAttempts times. The error of the last attempt is
// returned unchanged. Errors marked with Permanent stop the loop at once.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	if e == nil {
		e = New(0, 0, nil)
	}

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		if attempt >= e.maxAttempts {
			return zero, err
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}

		delay := e.Delay(attempt)
		e.logger.Warn("retrying after failed attempt",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if werr := wait(ctx, delay); werr != nil {
			return zero, fmt.Errorf("retry cancelled after attempt %d: %w", attempt, werr)
		}
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
