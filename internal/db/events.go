package db

import (
	"context"
	"fmt"

	"github.com/aitools-hub/link-engine/internal/tracker"
	"github.com/aitools-hub/link-engine/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertEvents appends a batch of events to the log. Each event gets a fresh
// UUID; duplicates are impossible by construction.
func (db *DB) InsertEvents(ctx context.Context, events []tracker.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(
			`INSERT INTO link_events
			 (id, kind, source_url, target_url, anchor_text, context,
			  conversion_rate, bounce_rate, time_on_page_seconds, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(), string(ev.Kind), ev.SourceURL, ev.TargetURL,
			ev.AnchorText, string(ev.Context),
			ev.ConversionRate, ev.BounceRate, ev.TimeOnPageSeconds, ev.OccurredAt,
		)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert link event: %w", err)
		}
	}
	return nil
}

// ReplayEvents streams the event log in occurrence order into apply,
// returning the number of events replayed. Used to rebuild a store after a
// restart or for the snapshot CLI.
func (db *DB) ReplayEvents(ctx context.Context, apply func(tracker.Event)) (int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT kind, source_url, target_url, anchor_text, context,
		        conversion_rate, bounce_rate, time_on_page_seconds, occurred_at
		 FROM link_events
		 ORDER BY occurred_at, id`)
	if err != nil {
		return 0, fmt.Errorf("failed to query link events: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var ev tracker.Event
		var kind, linkCtx string
		if err := rows.Scan(&kind, &ev.SourceURL, &ev.TargetURL, &ev.AnchorText, &linkCtx,
			&ev.ConversionRate, &ev.BounceRate, &ev.TimeOnPageSeconds, &ev.OccurredAt); err != nil {
			return count, fmt.Errorf("failed to scan link event: %w", err)
		}
		ev.Kind = tracker.EventKind(kind)
		ev.Context = types.LinkContext(linkCtx)
		apply(ev)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("failed reading link events: %w", err)
	}
	return count, nil
}
