package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/domain"
)

// AlertFilters narrows alert listings. Zero values disable a filter.
type AlertFilters struct {
	Type      domain.AlertType
	Frequency domain.Frequency
}

// AlertRepo handles alerts.
type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo { return &AlertRepo{db: db} }

const alertColumns = `id, type, frequency, category, threshold, created_at, updated_at`

func (r *AlertRepo) Insert(ctx context.Context, a Alert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO alerts(type, frequency, category, threshold, created_at, updated_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, a.Type, a.Frequency, a.Category, a.Threshold)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update changes the category and threshold of an alert.
func (r *AlertRepo) Update(ctx context.Context, id int64, category domain.Category, threshold decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE alerts SET category = ?, threshold = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, category, threshold, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *AlertRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *AlertRepo) Get(ctx context.Context, id int64) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// List returns alerts ordered by type then id.
func (r *AlertRepo) List(ctx context.Context, f AlertFilters) ([]Alert, error) {
	var where []string
	var args []interface{}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Frequency != "" {
		where = append(where, "frequency = ?")
		args = append(args, f.Frequency)
	}
	query := "SELECT " + alertColumns + " FROM alerts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY type, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindByKey returns the alert for (type, frequency, category), or nil.
func (r *AlertRepo) FindByKey(ctx context.Context, t domain.AlertType, f domain.Frequency, c domain.Category) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE type = ? AND frequency = ? AND category = ? LIMIT 1`, t, f, c)
	a, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func scanAlert(row scanner) (Alert, error) {
	var a Alert
	if err := row.Scan(&a.ID, &a.Type, &a.Frequency, &a.Category, &a.Threshold, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Alert{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
