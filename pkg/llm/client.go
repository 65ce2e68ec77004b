package llm

import (
	"context"
)

// Client is implemented by every completion provider the assistant can talk to
type Client interface {
	// ChatCompletion sends a single non-streaming completion request
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
