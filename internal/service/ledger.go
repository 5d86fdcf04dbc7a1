package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

// TransactionInput carries the user-editable fields of a transaction.
type TransactionInput struct {
	Account  string                 `json:"account"`
	Type     domain.TransactionType `json:"type"`
	Title    string                 `json:"title"`
	Amount   decimal.Decimal        `json:"amount"`
	Date     time.Time              `json:"date"`
	Mode     domain.Mode            `json:"mode"`
	Category domain.Category        `json:"category"`
}

// Preset is a named date range for transaction lists.
type Preset string

const (
	PresetAll        Preset = "all"
	PresetToday      Preset = "Today"
	PresetThisWeek   Preset = "This Week"
	PresetLast30Days Preset = "Last 30 Days"
)

// PresetRange resolves p against now in loc. The week starts on Sunday. Unknown
// presets and PresetAll yield zero times, which disable the date filter.
func PresetRange(p Preset, now time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end = today.Add(24*time.Hour - time.Millisecond)
	switch p {
	case PresetToday:
		return today, end
	case PresetThisWeek:
		return today.AddDate(0, 0, -int(today.Weekday())), end
	case PresetLast30Days:
		return today.AddDate(0, 0, -30), end
	}
	return time.Time{}, time.Time{}
}

// LedgerService implements manual entry and the approval workflow.
type LedgerService struct {
	Transactions   *repository.TransactionRepo
	DefaultAccount string
	Now            func() time.Time
	Location       *time.Location
	Log            zerolog.Logger
}

func (s *LedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// normalize validates in and fills defaults for account, mode and date.
func (s *LedgerService) normalize(in TransactionInput) (TransactionInput, error) {
	t, err := domain.ParseTransactionType(string(in.Type))
	if err != nil {
		return in, err
	}
	in.Type = t
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, domain.ErrEmptyTitle
	}
	if !in.Amount.IsPositive() {
		return in, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, in.Amount)
	}
	mode, err := domain.ParseMode(string(in.Mode))
	if err != nil {
		return in, err
	}
	in.Mode = mode
	if in.Category == "" {
		in.Category = domain.Other
	}
	cat, err := domain.ParseCategory(in.Type, string(in.Category))
	if err != nil {
		return in, err
	}
	in.Category = cat
	in.Account = strings.TrimSpace(in.Account)
	if in.Account == "" {
		in.Account = s.DefaultAccount
	}
	if in.Account == "" {
		in.Account = DefaultAccount
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	return in, nil
}

// AddManual stores an approved manual transaction.
func (s *LedgerService) AddManual(ctx context.Context, in TransactionInput) (*repository.Transaction, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	t := repository.Transaction{
		Account:  in.Account,
		Type:     in.Type,
		Title:    in.Title,
		Amount:   in.Amount,
		Date:     in.Date.UTC(),
		Mode:     in.Mode,
		Category: in.Category,
		Source:   domain.SourceManual,
	}
	id, err := s.Transactions.Insert(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	s.Log.Info().Int64("id", id).Str("title", t.Title).Msg("manual transaction added")
	return s.Transactions.Get(ctx, id)
}

// Edit replaces the editable fields of transaction id.
func (s *LedgerService) Edit(ctx context.Context, id int64, in TransactionInput) (*repository.Transaction, error) {
	cur, err := s.Transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, repository.ErrNotFound
	}
	if in.Date.IsZero() {
		in.Date = cur.Date
	}
	if strings.TrimSpace(in.Account) == "" {
		in.Account = cur.Account
	}
	in, err = s.normalize(in)
	if err != nil {
		return nil, err
	}
	cur.Account = in.Account
	cur.Type = in.Type
	cur.Title = in.Title
	cur.Amount = in.Amount
	cur.Date = in.Date.UTC()
	cur.Mode = in.Mode
	cur.Category = in.Category
	if err := s.Transactions.Update(ctx, *cur); err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return s.Transactions.Get(ctx, id)
}

// SetApproved approves or un-approves a single transaction.
func (s *LedgerService) SetApproved(ctx context.Context, id int64, approved bool) error {
	if err := s.Transactions.SetPendingApproval(ctx, id, !approved); err != nil {
		return err
	}
	s.Log.Info().Int64("id", id).Bool("approved", approved).Msg("transaction approval changed")
	return nil
}

// ApproveAll clears the approval queue and reports how many rows changed.
func (s *LedgerService) ApproveAll(ctx context.Context) (int64, error) {
	n, err := s.Transactions.SetAllPendingApproval(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("approve all: %w", err)
	}
	s.Log.Info().Int64("count", n).Msg("pending transactions approved")
	return n, nil
}

func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	return s.Transactions.Delete(ctx, id)
}

func (s *LedgerService) Get(ctx context.Context, id int64) (*repository.Transaction, error) {
	t, err := s.Transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

// List applies f, narrowed by preset when one is given.
func (s *LedgerService) List(ctx context.Context, f repository.TransactionFilters, preset Preset) ([]repository.Transaction, error) {
	if preset != "" && preset != PresetAll {
		f.Start, f.End = PresetRange(preset, s.now(), s.Location)
	}
	if f.SortBy != "amount" {
		f.SortBy = "date"
	}
	return s.Transactions.List(ctx, f)
}

// Pending returns the approval queue, oldest first.
func (s *LedgerService) Pending(ctx context.Context) ([]repository.Transaction, error) {
	return s.Transactions.ListPending(ctx)
}
