package watcher

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one journaled lifecycle event. The journal is append-only
// history for audit and debugging; nothing in the engine reads it back —
// the ledger stays the only source of truth for decisions.
type Entry struct {
	EventID    string
	EventType  string
	EntityID   string
	TxHash     string
	Payload    []byte
	OccurredAt time.Time
}

type JournalRepo struct{ DB *pgxpool.Pool }

func (r *JournalRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_events (
			event_id    TEXT PRIMARY KEY,
			event_type  TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			tx_hash     TEXT NOT NULL,
			payload     JSONB NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// Append is idempotent on event_id, so redelivered events are harmless.
func (r *JournalRepo) Append(ctx context.Context, e Entry) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO ledger_events(event_id, event_type, entity_id, tx_hash, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.EventType, e.EntityID, e.TxHash, e.Payload, e.OccurredAt)
	return err
}

// RecentForEntity lists the journaled history of one product/order, newest
// first.
func (r *JournalRepo) RecentForEntity(ctx context.Context, entityID string, limit int) ([]Entry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT event_id, event_type, entity_id, tx_hash, payload, occurred_at
		FROM ledger_events
		WHERE entity_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EventID, &e.EventType, &e.EntityID, &e.TxHash, &e.Payload, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
