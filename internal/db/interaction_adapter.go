package db

import (
	"context"

	"github.com/jansevak/jansevak-be/internal/assistant"
)

// InteractionAdapter adapts DB to implement assistant.Recorder
type InteractionAdapter struct {
	db *DB
}

var _ assistant.Recorder = (*InteractionAdapter)(nil)

// NewInteractionAdapter creates a new adapter
func NewInteractionAdapter(db *DB) *InteractionAdapter {
	return &InteractionAdapter{db: db}
}

// RecordInteraction implements assistant.Recorder
func (a *InteractionAdapter) RecordInteraction(ctx context.Context, in assistant.Interaction) error {
	return a.db.SaveInteraction(ctx, Interaction{
		ID:        in.ID,
		Channel:   string(in.Channel),
		Prompt:    in.Prompt,
		Response:  in.Response,
		Outcome:   string(in.Outcome),
		LatencyMS: in.Latency.Milliseconds(),
		CreatedAt: in.CreatedAt,
	})
}
