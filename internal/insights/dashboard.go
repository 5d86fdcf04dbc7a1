package insights

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

const (
	DefaultRecentLimit    = 5
	DefaultDeviationLimit = 6
)

// KPI is the current calendar month at a glance.
type KPI struct {
	Income  decimal.Decimal `json:"totalIncome"`
	Expense decimal.Decimal `json:"totalExpense"`
	Savings decimal.Decimal `json:"totalSavings"`
}

// MonthlyKPI totals approved income and expense for the current month. Savings may be negative.
func (e *Engine) MonthlyKPI(ctx context.Context) (KPI, error) {
	cur, _, err := e.PeriodWindows(domain.PeriodMonthly)
	if err != nil {
		return KPI{}, err
	}
	income, expense, err := e.totals(ctx, cur)
	if err != nil {
		return KPI{}, err
	}
	return KPI{Income: income, Expense: expense, Savings: income.Sub(expense)}, nil
}

// RecentTransactions returns the newest approved transactions. limit <= 0 uses DefaultRecentLimit.
func (e *Engine) RecentTransactions(ctx context.Context, limit int) ([]repository.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return repository.NewTransactionRepo(e.DB).List(ctx, repository.TransactionFilters{
		Approval: repository.ApprovalApproved,
		Limit:    limit,
	})
}

// Deviation compares one category's spend this month with last month.
type Deviation struct {
	Rank      int              `json:"id"`
	Category  domain.Category  `json:"label"`
	Current   decimal.Decimal  `json:"value"`
	Previous  decimal.Decimal  `json:"previous"`
	Diff      decimal.Decimal  `json:"diff"`
	Direction domain.Direction `json:"direction"`
	Color     string           `json:"color"`
}

func (e *Engine) debitByCategory(ctx context.Context, r Range) (map[domain.Category]decimal.Decimal, error) {
	rows, err := e.DB.QueryContext(ctx, `
	SELECT category, SUM(amount)
	FROM transactions
	WHERE type = 'debit' AND pending_approval = 0 AND date >= ? AND date < ?
	GROUP BY category`, r.Start.UTC(), r.End.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[domain.Category]decimal.Decimal)
	for rows.Next() {
		var c domain.Category
		var sum decimal.Decimal
		if err := rows.Scan(&c, &sum); err != nil {
			return nil, err
		}
		out[c] = sum.Round(2)
	}
	return out, rows.Err()
}

// TopDeviations ranks debit categories by the absolute change of spend between this
// month and last month. Categories spent on only last month are included with a
// current value of zero. limit <= 0 uses DefaultDeviationLimit.
func (e *Engine) TopDeviations(ctx context.Context, limit int) ([]Deviation, error) {
	if limit <= 0 {
		limit = DefaultDeviationLimit
	}
	cur, prev, err := e.PeriodWindows(domain.PeriodMonthly)
	if err != nil {
		return nil, err
	}
	current, err := e.debitByCategory(ctx, cur)
	if err != nil {
		return nil, err
	}
	last, err := e.debitByCategory(ctx, prev)
	if err != nil {
		return nil, err
	}

	var out []Deviation
	seen := make(map[domain.Category]bool)
	add := func(c domain.Category) {
		if seen[c] {
			return
		}
		seen[c] = true
		curV, ok := current[c]
		if !ok {
			curV = decimal.Zero
		}
		lastV, ok := last[c]
		if !ok {
			lastV = decimal.Zero
		}
		diff := curV.Sub(lastV)
		out = append(out, Deviation{
			Category:  c,
			Current:   curV,
			Previous:  lastV,
			Diff:      diff,
			Direction: directionOf(diff),
			Color:     c.Color(),
		})
	}
	for c := range current {
		add(c)
	}
	for c := range last {
		add(c)
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Diff.Abs(), out[j].Diff.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func directionOf(d decimal.Decimal) domain.Direction {
	switch d.Sign() {
	case 1:
		return domain.Up
	case -1:
		return domain.Down
	}
	return domain.Flat
}
