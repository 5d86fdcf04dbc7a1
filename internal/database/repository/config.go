package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ConfigRepo is the key-value store for runtime state such as the sync watermark.
type ConfigRepo struct {
	db *sql.DB
}

func NewConfigRepo(db *sql.DB) *ConfigRepo {
	return &ConfigRepo{db: db}
}

// Set upserts key.
func (r *ConfigRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO config(key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
	 value=excluded.value,
	 updated_at=CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

// AdvanceTime stores t under key only when it is later than the stored RFC3339
// timestamp. A missing or unparseable value counts as older. The read and the
// write share one transaction, so concurrent callers cannot move the value back.
// It returns the value held after the call and whether t was written.
func (r *ConfigRepo) AdvanceTime(ctx context.Context, key string, t time.Time) (time.Time, bool, error) {
	t = t.UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&v)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, false, err
	}
	if v.Valid {
		if cur, perr := time.Parse(time.RFC3339Nano, v.String); perr == nil && !t.After(cur) {
			return cur.UTC(), false, nil
		}
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO config(key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
	 value=excluded.value,
	 updated_at=CURRENT_TIMESTAMP;
	`, key, t.Format(time.RFC3339Nano)); err != nil {
		return time.Time{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, false, fmt.Errorf("commit: %w", err)
	}
	return t, true, nil
}

// Get returns the value of key and whether it was set.
func (r *ConfigRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v.String, v.Valid, nil
}
