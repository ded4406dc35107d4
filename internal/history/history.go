// Package history persists dispatched events to Postgres for long-term
// reporting. The event queue itself never persists anything; this is a
// downstream recorder and entirely optional (no database URL, no history).
package history

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"home-monitor/internal/events"
)

// Recorder writes events into the event_history table.
type Recorder struct {
	pool *pgxpool.Pool
}

// Open connects the pool and ensures the history table exists.
func Open(ctx context.Context, url string) (*Recorder, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS event_history (
			id         BIGSERIAL PRIMARY KEY,
			kind       TEXT        NOT NULL,
			source     TEXT        NOT NULL,
			occurred   TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating event_history table: %w", err)
	}
	return &Recorder{pool: pool}, nil
}

// Record inserts one event. Best effort: failures are logged, the dispatch
// loop does not care.
func (r *Recorder) Record(ctx context.Context, e events.Event) {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO event_history (kind, source, occurred) VALUES ($1, $2, $3)",
		string(e.Kind), e.Source, e.At)
	if err != nil {
		log.Printf("HISTORY: recording %s from %s failed: %v", e.Kind, e.Source, err)
	}
}

// Close releases the pool.
func (r *Recorder) Close() {
	r.pool.Close()
}
