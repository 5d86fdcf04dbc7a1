// Package insights derives dashboard aggregates from approved transactions: monthly
// KPIs, category deviations, period trends, summaries, breakdowns and alert progress.
//
// Calendar windows are computed in Go from Engine.Now in Engine.Location and passed to
// SQLite as UTC bounds, so bucketing follows the user's timezone rather than the
// database's.
package insights

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/domain"
)

// Engine runs aggregation queries. Now and Location default to the wall clock and UTC.
type Engine struct {
	DB       *sql.DB
	Now      func() time.Time
	Location *time.Location
}

// New returns an engine over db using loc for calendar boundaries.
func New(db *sql.DB, loc *time.Location) *Engine {
	return &Engine{DB: db, Location: loc}
}

// Range is a half-open time window [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside r.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (e *Engine) loc() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e *Engine) now() time.Time {
	n := time.Now()
	if e.Now != nil {
		n = e.Now()
	}
	return n.In(e.loc())
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayIndex maps Monday..Sunday to 0..6.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func weekStart(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, -mondayIndex(t))
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func yearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// weekOfYear matches strftime's %W: weeks start on Monday and days before the first
// Monday of the year are in week 0.
func weekOfYear(t time.Time) int {
	return (t.YearDay() - 1 + 7 - mondayIndex(t)) / 7
}

// PeriodWindows returns the current and the preceding window of p.
func (e *Engine) PeriodWindows(p domain.Period) (cur, prev Range, err error) {
	now := e.now()
	switch p {
	case domain.PeriodDaily:
		s := dayStart(now)
		cur = Range{s, s.AddDate(0, 0, 1)}
		prev = Range{s.AddDate(0, 0, -1), s}
	case domain.PeriodWeekly:
		s := weekStart(now)
		cur = Range{s, s.AddDate(0, 0, 7)}
		prev = Range{s.AddDate(0, 0, -7), s}
	case domain.PeriodMonthly:
		s := monthStart(now)
		cur = Range{s, s.AddDate(0, 1, 0)}
		prev = Range{s.AddDate(0, -1, 0), s}
	case domain.PeriodYearly:
		s := yearStart(now)
		cur = Range{s, s.AddDate(1, 0, 0)}
		prev = Range{s.AddDate(-1, 0, 0), s}
	default:
		return Range{}, Range{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedPeriod, p)
	}
	return cur, prev, nil
}

// FrequencyWindow returns the current alert window: the Monday week or the calendar month.
func (e *Engine) FrequencyWindow(f domain.Frequency) (Range, error) {
	switch f {
	case domain.FrequencyWeekly:
		cur, _, err := e.PeriodWindows(domain.PeriodWeekly)
		return cur, err
	case domain.FrequencyMonthly:
		cur, _, err := e.PeriodWindows(domain.PeriodMonthly)
		return cur, err
	}
	return Range{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFrequency, f)
}

// totals sums approved credits and debits inside r.
func (e *Engine) totals(ctx context.Context, r Range) (income, expense decimal.Decimal, err error) {
	rows, err := e.DB.QueryContext(ctx, `
	SELECT type, COALESCE(SUM(amount), 0)
	FROM transactions
	WHERE pending_approval = 0 AND date >= ? AND date < ?
	GROUP BY type`, r.Start.UTC(), r.End.UTC())
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	defer rows.Close()
	income, expense = decimal.Zero, decimal.Zero
	for rows.Next() {
		var t domain.TransactionType
		var sum decimal.Decimal
		if err := rows.Scan(&t, &sum); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		switch t {
		case domain.Credit:
			income = sum.Round(2)
		case domain.Debit:
			expense = sum.Round(2)
		}
	}
	return income, expense, rows.Err()
}

// TypeTotal sums approved transactions of type t inside the current window of f.
func (e *Engine) TypeTotal(ctx context.Context, t domain.TransactionType, f domain.Frequency) (decimal.Decimal, error) {
	r, err := e.FrequencyWindow(f)
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	err = e.DB.QueryRowContext(ctx, `
	SELECT COALESCE(SUM(amount), 0)
	FROM transactions
	WHERE pending_approval = 0 AND type = ? AND date >= ? AND date < ?`,
		t, r.Start.UTC(), r.End.UTC()).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum.Round(2), nil
}
