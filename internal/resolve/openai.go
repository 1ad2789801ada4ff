package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/davidgrant/aimerge/internal/config"
)

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewOpenAIClient builds a client from resolved settings.
func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete performs one chat-completions call and returns the raw message
// content. Failures are returned as *Error with a transient/permanent
// classification derived from the HTTP outcome.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	const op = "complete"

	if c.apiKey == "" {
		return "", newError(op, ErrNoAPIKey, false)
	}

	body, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", newError(op, fmt.Errorf("encoding request: %w", err), false)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", newError(op, fmt.Errorf("creating request: %w", err), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Debug("calling completion service", "url", url, "model", req.Model)
	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", newError(op, ErrTimeout, true)
		}
		// Connection-level failures are transient.
		return "", newError(op, fmt.Errorf("%w: %v", ErrUnavailable, err), true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", classifyStatus(op, resp.StatusCode, string(detail))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", newError(op, fmt.Errorf("decoding response: %w", err), true)
	}
	if len(chat.Choices) == 0 {
		return "", newError(op, ErrEmptyResponse, true)
	}

	slog.Debug("completion received", "elapsed", time.Since(start))
	return chat.Choices[0].Message.Content, nil
}

// classifyStatus maps an HTTP status to a classified service error.
// Auth and request-shape problems are permanent; throttling, timeouts and
// server errors are transient.
func classifyStatus(op string, status int, detail string) *Error {
	detail = strings.TrimSpace(detail)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(op, fmt.Errorf("%w (status %d): %s", ErrUnauthorized, status, detail), false)
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
		return newError(op, fmt.Errorf("%w (status %d): %s", ErrInvalidRequest, status, detail), false)
	case status == http.StatusTooManyRequests:
		return newError(op, fmt.Errorf("%w (status %d): %s", ErrRateLimited, status, detail), true)
	case status == http.StatusRequestTimeout:
		return newError(op, fmt.Errorf("%w (status %d): %s", ErrTimeout, status, detail), true)
	case status >= 500:
		return newError(op, fmt.Errorf("%w (status %d): %s", ErrUnavailable, status, detail), true)
	default:
		return newError(op, fmt.Errorf("unexpected status %d: %s", status, detail), false)
	}
}
