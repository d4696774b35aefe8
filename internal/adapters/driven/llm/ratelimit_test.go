package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

type stubLLM struct {
	calls int
	err   error
}

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "ok", nil
}
func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

func TestNewRateLimited_Disabled(t *testing.T) {
	stub := &stubLLM{}

	assert.Same(t, stub, NewRateLimited(stub, 0, 1))
	assert.Nil(t, NewRateLimited(nil, 1, 1))
}

func TestRateLimited_PassesThrough(t *testing.T) {
	stub := &stubLLM{}
	svc := NewRateLimited(stub, 100, 2)

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "stub", svc.ModelName())
}

func TestRateLimited_NeverRetries(t *testing.T) {
	stub := &stubLLM{err: errors.New("boom")}
	svc := NewRateLimited(stub, 100, 2)

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, stub.calls)
}

func TestRateLimited_WaitHonoursContext(t *testing.T) {
	stub := &stubLLM{}
	svc := NewRateLimited(stub, 0.001, 1)
	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Generate(ctx, "p", driven.GenerateOptions{})

	assert.Error(t, err)
	assert.Equal(t, 1, stub.calls)
}

func TestRateLimited_BacksOffAfter429(t *testing.T) {
	stub := &stubLLM{err: &RateLimitError{RetryAfter: time.Hour, Err: errors.New("429")}}
	svc := NewRateLimited(stub, 100, 5).(*RateLimited)

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.ErrorIs(t, err, ErrRateLimited)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Generate(ctx, "p", driven.GenerateOptions{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, stub.calls)
}
