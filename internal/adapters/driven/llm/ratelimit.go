package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// ErrRateLimited is wrapped by adapters when the provider answers 429.
var ErrRateLimited = errors.New("rate limited by provider")

// RateLimitError carries the provider's requested backoff.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error() + ": " + e.Err.Error()
}

// Unwrap returns both the sentinel and the cause.
func (e *RateLimitError) Unwrap() []error {
	return []error{ErrRateLimited, e.Err}
}

// DefaultBackoff applies when a 429 names no Retry-After.
const DefaultBackoff = 30 * time.Second

// Ensure RateLimited implements the interface.
var _ driven.LLMService = (*RateLimited)(nil)

// RateLimited paces Generate calls with a token bucket. It never retries:
// a call waits for a token, runs once, and its error is returned as is.
// After a 429 every caller waits out the provider's backoff first.
type RateLimited struct {
	driven.LLMService

	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
	log     logger.Logger
}

// NewRateLimited wraps svc. A non-positive rps returns svc unchanged.
func NewRateLimited(svc driven.LLMService, rps float64, burst int) driven.LLMService {
	if svc == nil || rps <= 0 {
		return svc
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		LLMService: svc,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		now:        time.Now,
		log:        logger.For("llm"),
	}
}

// Generate waits for a token and then calls the wrapped service once.
func (r *RateLimited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	out, err := r.LLMService.Generate(ctx, prompt, opts)
	var rl *RateLimitError
	if errors.As(err, &rl) {
		r.backoff(rl.RetryAfter)
	} else if errors.Is(err, ErrRateLimited) {
		r.backoff(0)
	}
	return out, err
}

func (r *RateLimited) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := retryAt.Sub(r.now()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

func (r *RateLimited) backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.now().Add(d)
	r.log.Warn("provider rate limit hit, pausing completions for %s", d)
}
