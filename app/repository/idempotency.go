package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrAlreadyProcessed is returned by Mark when an idempotency record for the
// (space, event) pair already exists.
var ErrAlreadyProcessed = errors.New("event already processed")

// IdempotencyRepository is the durable ledger of processed webhook events.
// Rows are append-only; (space_id, event_id) carries a unique key.
type IdempotencyRepository struct {
	db DBTX
}

func NewIdempotencyRepository(db DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Exists(ctx context.Context, spaceID, eventID uint64) (bool, error) {
	query := `SELECT 1 FROM webhook_idempotency WHERE space_id = ? AND event_id = ?`

	var one int
	err := r.db.QueryRowContext(ctx, query, spaceID, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *IdempotencyRepository) Mark(ctx context.Context, spaceID, eventID uint64, processedAt time.Time) error {
	query := `INSERT INTO webhook_idempotency (space_id, event_id, processed_at) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, spaceID, eventID, processedAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrAlreadyProcessed
		}
		return err
	}

	return nil
}
