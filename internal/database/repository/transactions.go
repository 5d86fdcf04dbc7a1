package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/berlinbruno/money-trail/internal/domain"
)

// Approval filters on the pending_approval flag.
type Approval string

const (
	ApprovalAny      Approval = ""
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
)

// TransactionFilters defines list filters. Zero values disable a filter.
type TransactionFilters struct {
	Type     domain.TransactionType
	Category string // case-insensitive
	Search   string // title substring, case-insensitive
	Start    time.Time
	End      time.Time // inclusive; ignored together with Start when Start is after End
	Approval Approval
	SortBy   string // "date" (default) or "amount"
	Asc      bool
	Limit    int
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, account, type, title, amount, date, mode, category, source, pending_approval, sms_hash, created_at, updated_at`

// Insert stores t and returns its id.
func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 account, type, title, amount, date, mode, category, source, pending_approval, sms_hash,
	 created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.Account, t.Type, t.Title, t.Amount, t.Date.UTC(), t.Mode, t.Category, t.Source,
		boolToInt(t.PendingApproval), t.SMSHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites the editable fields of t.
func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET
	 account = ?, type = ?, title = ?, amount = ?, date = ?, mode = ?, category = ?,
	 updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`,
		t.Account, t.Type, t.Title, t.Amount, t.Date.UTC(), t.Mode, t.Category, t.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// SetPendingApproval flips the approval flag of one transaction.
func (r *TransactionRepo) SetPendingApproval(ctx context.Context, id int64, pending bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET pending_approval = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, boolToInt(pending), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// SetAllPendingApproval sets the approval flag on every transaction and reports how many changed.
func (r *TransactionRepo) SetAllPendingApproval(ctx context.Context, pending bool) (int64, error) {
	flag := boolToInt(pending)
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET pending_approval = ?, updated_at = CURRENT_TIMESTAMP WHERE pending_approval != ?`, flag, flag)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ExistsBySMSHash reports whether a message fingerprint was already ingested.
func (r *TransactionRepo) ExistsBySMSHash(ctx context.Context, hash string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE sms_hash = ? LIMIT 1`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []interface{}

	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		where = append(where, "LOWER(category) = ?")
		args = append(args, strings.ToLower(f.Category))
	}
	if f.Search != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}
	if !f.Start.IsZero() && !f.End.IsZero() && !f.Start.After(f.End) {
		where = append(where, "date >= ? AND date <= ?")
		args = append(args, f.Start.UTC(), f.End.UTC())
	}
	switch f.Approval {
	case ApprovalPending:
		where = append(where, "pending_approval = 1")
	case ApprovalApproved:
		where = append(where, "pending_approval = 0")
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	dir := "DESC"
	if f.Asc {
		dir = "ASC"
	}
	if f.SortBy == "amount" {
		query += " ORDER BY amount " + dir + ", id " + dir
	} else {
		query += " ORDER BY date " + dir + ", id " + dir
	}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListPending returns transactions awaiting approval, oldest first.
func (r *TransactionRepo) ListPending(ctx context.Context) ([]Transaction, error) {
	return r.List(ctx, TransactionFilters{Approval: ApprovalPending, Asc: true})
}

// CountPending returns the size of the approval queue.
func (r *TransactionRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE pending_approval = 1`).Scan(&n)
	return n, err
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var pending int
	var hash sql.NullString
	if err := row.Scan(&t.ID, &t.Account, &t.Type, &t.Title, &t.Amount, &t.Date, &t.Mode,
		&t.Category, &t.Source, &pending, &hash, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	t.PendingApproval = pending == 1
	if hash.Valid {
		t.SMSHash = &hash.String
	}
	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
