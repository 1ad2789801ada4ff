package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidgrant/aimerge/internal/config"
	"github.com/davidgrant/aimerge/internal/conflict"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	return &cfg
}

func testRegion() conflict.Region {
	return conflict.Region{
		Path:      "main.go",
		Ours:      `fmt.Println("hello")`,
		Theirs:    `fmt.Println("hi")`,
		StartLine: 4,
		EndLine:   8,
	}
}

func newTestResolver(client CompletionClient, cfg *config.Config) *Resolver {
	r := NewResolver(client, cfg, nil)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestResolveFirstCallSucceeds(t *testing.T) {
	mock := NewMockCompletionClient("```go\nfmt.Println(\"hello\")\n```")
	r := newTestResolver(mock, testConfig())

	attempt := r.Resolve(context.Background(), testRegion(), "")

	assert.Equal(t, StatusSucceeded, attempt.Status)
	assert.Equal(t, `fmt.Println("hello")`, attempt.Text)
	assert.False(t, attempt.LowConfidence)
	assert.Equal(t, 1, attempt.Calls)
}

func TestResolveRetriesTransientThenSucceeds(t *testing.T) {
	mock := NewMockCompletionClient("resolved")
	mock.Enqueue(
		MockResult{Err: newError("complete", ErrUnavailable, true)},
		MockResult{Err: newError("complete", ErrRateLimited, true)},
		MockResult{Text: "resolved"},
	)
	r := newTestResolver(mock, testConfig())

	attempt := r.Resolve(context.Background(), testRegion(), "")

	assert.Equal(t, StatusSucceeded, attempt.Status)
	assert.Equal(t, 3, attempt.Calls)
}

func TestResolveNeverExceedsRetryBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 3

	mock := &MockCompletionClient{}
	for i := 0; i < 10; i++ {
		mock.Enqueue(MockResult{Err: newError("complete", ErrUnavailable, true)})
	}
	r := newTestResolver(mock, cfg)

	attempt := r.Resolve(context.Background(), testRegion(), "")

	assert.Equal(t, StatusFailed, attempt.Status)
	assert.Equal(t, 3, attempt.Calls)
	assert.Equal(t, 3, mock.CallCount())
	assert.ErrorIs(t, attempt.Err, ErrUnavailable)
}

func TestResolvePermanentFailsAfterOneCall(t *testing.T) {
	mock := &MockCompletionClient{}
	mock.Enqueue(MockResult{Err: newError("complete", ErrUnauthorized, false)})
	r := newTestResolver(mock, testConfig())

	attempt := r.Resolve(context.Background(), testRegion(), "")

	assert.Equal(t, StatusFailed, attempt.Status)
	assert.Equal(t, 1, attempt.Calls)
	assert.True(t, IsAuthError(attempt.Err))
}

func TestResolveRawResponseIsLowConfidence(t *testing.T) {
	mock := NewMockCompletionClient("just the resolved line, no fences")
	r := newTestResolver(mock, testConfig())

	attempt := r.Resolve(context.Background(), testRegion(), "")

	assert.Equal(t, StatusSucceeded, attempt.Status)
	assert.True(t, attempt.LowConfidence)
	assert.Equal(t, "just the resolved line, no fences", attempt.Text)
}

func TestResolveCancelledContextStopsRetrying(t *testing.T) {
	mock := &MockCompletionClient{}
	mock.Enqueue(
		MockResult{Err: newError("complete", ErrUnavailable, true)},
	)
	r := NewResolver(mock, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempt := r.Resolve(ctx, testRegion(), "")
	assert.Equal(t, StatusFailed, attempt.Status)
	assert.Equal(t, 1, attempt.Calls)
}

func TestBuildRequestUsesConfigModel(t *testing.T) {
	mock := NewMockCompletionClient("ok")
	cfg := testConfig()
	cfg.Model = "gpt-4o"
	r := newTestResolver(mock, cfg)

	r.Resolve(context.Background(), testRegion(), "surrounding lines")

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, systemPrompt, req.System)
	assert.InDelta(t, defaultTemperature, req.Temperature, 0.001)
	assert.Contains(t, req.User, "main.go")
	assert.Contains(t, req.User, `fmt.Println("hello")`)
	assert.Contains(t, req.User, `fmt.Println("hi")`)
	assert.Contains(t, req.User, "surrounding lines")
}

func TestIsRetryableClassification(t *testing.T) {
	assert.True(t, IsRetryable(newError("complete", ErrUnavailable, true)))
	assert.True(t, IsRetryable(ErrRateLimited))
	assert.True(t, IsRetryable(ErrTimeout))
	assert.False(t, IsRetryable(newError("complete", ErrUnauthorized, false)))
	assert.False(t, IsRetryable(ErrInvalidRequest))
}
