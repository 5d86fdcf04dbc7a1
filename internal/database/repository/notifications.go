package repository

import (
	"context"
	"database/sql"
	"time"
)

// NotificationRepo handles notifications. Rows are never deleted.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationColumns = `id, type, title, message, severity, is_read, created_at, updated_at`

// Add stores n with the given creation time and returns its id.
func (r *NotificationRepo) Add(ctx context.Context, n Notification, at time.Time) (int64, error) {
	at = at.UTC()
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO notifications(type, title, message, severity, is_read, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)
	`, n.Type, n.Title, n.Message, n.Severity, boolToInt(n.IsRead), at, at)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListUnread returns unread notifications newest first. limit <= 0 means no limit.
func (r *NotificationRepo) ListUnread(ctx context.Context, limit int) ([]Notification, error) {
	return r.list(ctx, true, limit)
}

// List returns every notification newest first. limit <= 0 means no limit.
func (r *NotificationRepo) List(ctx context.Context, limit int) ([]Notification, error) {
	return r.list(ctx, false, limit)
}

func (r *NotificationRepo) list(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications`
	var args []interface{}
	if unreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SetRead marks a notification read or unread.
func (r *NotificationRepo) SetRead(ctx context.Context, id int64, read bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = ?, updated_at = ? WHERE id = ?`, boolToInt(read), at.UTC(), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ExistsUnread reports whether an unread notification with the same content exists.
func (r *NotificationRepo) ExistsUnread(ctx context.Context, n Notification) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM notifications WHERE is_read = 0 AND type = ? AND title = ? AND message = ? LIMIT 1`,
		n.Type, n.Title, n.Message).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *NotificationRepo) Get(ctx context.Context, id int64) (*Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func scanNotification(row scanner) (Notification, error) {
	var n Notification
	var read int
	if err := row.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Severity, &read, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return Notification{}, err
	}
	n.IsRead = read == 1
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return n, nil
}
