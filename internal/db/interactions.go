package db

import (
	"context"
	"fmt"
)

// SaveInteraction stores one assistant exchange
func (db *DB) SaveInteraction(ctx context.Context, in Interaction) error {
	query := `
		INSERT INTO assistant_interactions (id, channel, prompt, response, outcome, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := db.ExecContext(ctx, query,
		in.ID, in.Channel, in.Prompt, in.Response, in.Outcome, in.LatencyMS, in.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}

	return nil
}

// RecentInteractions returns the newest interactions, optionally for one channel
func (db *DB) RecentInteractions(ctx context.Context, channel string, limit int) ([]Interaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, channel, prompt, response, outcome, latency_ms, created_at
		FROM assistant_interactions
		WHERE ($1 = '' OR channel = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]Interaction, 0, limit)
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.ID, &in.Channel, &in.Prompt, &in.Response, &in.Outcome, &in.LatencyMS, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}

	return interactions, nil
}

// OutcomeCounts returns the number of stored interactions per outcome
func (db *DB) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT outcome, COUNT(*)
		FROM assistant_interactions
		GROUP BY outcome
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	return counts, rows.Err()
}
