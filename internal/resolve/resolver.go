package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/davidgrant/aimerge/internal/config"
	"github.com/davidgrant/aimerge/internal/conflict"
)

// Status is the terminal-or-pending state of a resolution attempt.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

// Attempt tracks the resolution of one conflict region across retries.
// Once Succeeded or Failed it is never mutated again.
type Attempt struct {
	Region        conflict.Region
	Calls         int
	Status        Status
	Text          string
	LowConfidence bool
	Err           error
}

// Resolver turns conflict regions into candidate resolutions by driving
// the completion service with bounded retries and backoff.
type Resolver struct {
	client   CompletionClient
	cfg      *config.Config
	template *Template

	// sleep is swapped in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewResolver builds a resolver. template may be nil to use the built-in
// prompt.
func NewResolver(client CompletionClient, cfg *config.Config, template *Template) *Resolver {
	return &Resolver{
		client:   client,
		cfg:      cfg,
		template: template,
		sleep:    sleepCtx,
	}
}

// Resolve requests a resolution for one region, retrying transient
// failures until the retry budget is spent. Permanent failures fail after
// exactly one call. The returned attempt is always terminal.
func (r *Resolver) Resolve(ctx context.Context, region conflict.Region, fileContext string) *Attempt {
	attempt := &Attempt{Region: region, Status: StatusPending}

	req, err := r.buildRequest(region, fileContext)
	if err != nil {
		attempt.Status = StatusFailed
		attempt.Err = err
		return attempt
	}

	maxCalls := r.cfg.MaxRetries
	if maxCalls < 1 {
		maxCalls = 1
	}
	backoff := r.cfg.InitialBackoff()

	for attempt.Calls < maxCalls {
		attempt.Calls++
		slog.Info("requesting resolution",
			"region", region.Label(), "attempt", attempt.Calls, "max", maxCalls)

		callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
		raw, err := r.client.Complete(callCtx, req)
		cancel()

		if err == nil {
			cand := ParseCandidate(raw)
			attempt.Status = StatusSucceeded
			attempt.Text = cand.Text
			attempt.LowConfidence = cand.LowConfidence
			if cand.LowConfidence {
				slog.Debug("no code block in response, using raw text", "region", region.Label())
			}
			return attempt
		}

		attempt.Err = err
		if !IsRetryable(err) {
			slog.Error("permanent resolution failure", "region", region.Label(), "error", err)
			attempt.Status = StatusFailed
			return attempt
		}

		slog.Warn("transient resolution failure",
			"region", region.Label(), "attempt", attempt.Calls, "error", err)

		if attempt.Calls < maxCalls {
			if err := r.sleep(ctx, backoff); err != nil {
				attempt.Status = StatusFailed
				attempt.Err = err
				return attempt
			}
			backoff *= 2
		}
	}

	attempt.Status = StatusFailed
	return attempt
}

// buildRequest constructs the completion request for a region, applying
// the repo-local template overrides when present.
func (r *Resolver) buildRequest(region conflict.Region, fileContext string) (Request, error) {
	data := buildPromptData(region, fileContext)

	req := Request{
		Model:       r.cfg.Model,
		System:      systemPrompt,
		Temperature: defaultTemperature,
	}

	if r.template != nil {
		user, err := r.template.Render(data)
		if err != nil {
			return Request{}, err
		}
		req.User = user
		if r.template.Model != "" {
			req.Model = r.template.Model
		}
		if r.template.Temperature != nil {
			req.Temperature = *r.template.Temperature
		}
		return req, nil
	}

	req.User = defaultUserPrompt(data)
	return req, nil
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
