// Package resolve drives an external completion service to produce
// candidate resolutions for conflict regions: prompt construction, bounded
// retries with backoff, transient/permanent failure classification, and
// defensive parsing of service output.
package resolve

import "context"

// Request is a single completion call: prompt in, text out.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64
}

// CompletionClient is the capability boundary to the completion service.
// Implementations return *Error values so the resolver can classify
// failures without knowing the transport.
type CompletionClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}
