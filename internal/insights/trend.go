package insights

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/domain"
)

// TrendPoint is one bucket of a period trend, paired with the same bucket of the
// preceding period. Savings are floored at zero.
type TrendPoint struct {
	Label           string          `json:"label"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Savings         decimal.Decimal `json:"savings"`
	PreviousIncome  decimal.Decimal `json:"previousIncome"`
	PreviousExpense decimal.Decimal `json:"previousExpense"`
	PreviousSavings decimal.Decimal `json:"previousSavings"`
}

var (
	weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	weekLabels    = []string{"Week 1", "Week 2", "Week 3", "Week 4"}
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// Labels returns the bucket labels of p.
func Labels(p domain.Period) ([]string, error) {
	switch p {
	case domain.PeriodDaily:
		out := make([]string, 24)
		for h := range out {
			out[h] = fmt.Sprintf("%02d:00", h)
		}
		return out, nil
	case domain.PeriodWeekly:
		return weekdayLabels, nil
	case domain.PeriodMonthly:
		return weekLabels, nil
	case domain.PeriodYearly:
		return monthLabels, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedPeriod, p)
}

// bucketIndex places t (in the engine location) inside a window starting at start.
// Monthly buckets are Monday weeks counted from the week holding the 1st; a fifth or
// sixth week yields an index past the labels and is dropped by the caller.
func bucketIndex(p domain.Period, t, start time.Time) int {
	switch p {
	case domain.PeriodDaily:
		return t.Hour()
	case domain.PeriodWeekly:
		return mondayIndex(t)
	case domain.PeriodMonthly:
		return weekOfYear(t) - weekOfYear(start)
	case domain.PeriodYearly:
		return int(t.Month()) - 1
	}
	return -1
}

// Trend buckets approved income and expense of the current and preceding period.
func (e *Engine) Trend(ctx context.Context, p domain.Period) ([]TrendPoint, error) {
	labels, err := Labels(p)
	if err != nil {
		return nil, err
	}
	cur, prev, err := e.PeriodWindows(p)
	if err != nil {
		return nil, err
	}

	out := make([]TrendPoint, len(labels))
	for i, l := range labels {
		out[i] = TrendPoint{
			Label: l, Income: decimal.Zero, Expense: decimal.Zero, Savings: decimal.Zero,
			PreviousIncome: decimal.Zero, PreviousExpense: decimal.Zero, PreviousSavings: decimal.Zero,
		}
	}

	rows, err := e.DB.QueryContext(ctx, `
	SELECT date, type, amount
	FROM transactions
	WHERE pending_approval = 0 AND date >= ? AND date < ?`, prev.Start.UTC(), cur.End.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loc := e.loc()
	for rows.Next() {
		var date time.Time
		var t domain.TransactionType
		var amount decimal.Decimal
		if err := rows.Scan(&date, &t, &amount); err != nil {
			return nil, err
		}
		date = date.In(loc)

		var window Range
		current := false
		switch {
		case cur.Contains(date):
			window, current = cur, true
		case prev.Contains(date):
			window = prev
		default:
			continue
		}
		idx := bucketIndex(p, date, window.Start)
		if idx < 0 || idx >= len(out) {
			continue
		}
		pt := &out[idx]
		switch {
		case current && t == domain.Credit:
			pt.Income = pt.Income.Add(amount)
		case current && t == domain.Debit:
			pt.Expense = pt.Expense.Add(amount)
		case t == domain.Credit:
			pt.PreviousIncome = pt.PreviousIncome.Add(amount)
		case t == domain.Debit:
			pt.PreviousExpense = pt.PreviousExpense.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		pt := &out[i]
		pt.Income, pt.Expense = pt.Income.Round(2), pt.Expense.Round(2)
		pt.PreviousIncome, pt.PreviousExpense = pt.PreviousIncome.Round(2), pt.PreviousExpense.Round(2)
		pt.Savings = floorZero(pt.Income.Sub(pt.Expense))
		pt.PreviousSavings = floorZero(pt.PreviousIncome.Sub(pt.PreviousExpense))
	}
	return out, nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Summary describes spend inside the current window of a period.
type Summary struct {
	HighestExpenseAmount   decimal.Decimal `json:"highestExpenseAmount"`
	HighestExpenseCategory string          `json:"highestExpenseCategory"`
	AverageExpense         decimal.Decimal `json:"averageExpense"`
	TotalIncome            decimal.Decimal `json:"totalIncome"`
	TotalExpense           decimal.Decimal `json:"totalExpense"`
}

// Summary reports the largest debit and its category ("N/A" without debits), the
// average debit and the income and expense totals of the current window of p.
func (e *Engine) Summary(ctx context.Context, p domain.Period) (Summary, error) {
	cur, _, err := e.PeriodWindows(p)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{
		HighestExpenseAmount:   decimal.Zero,
		HighestExpenseCategory: "N/A",
		AverageExpense:         decimal.Zero,
	}

	var cat string
	var highest decimal.Decimal
	err = e.DB.QueryRowContext(ctx, `
	SELECT category, amount
	FROM transactions
	WHERE type = 'debit' AND pending_approval = 0 AND date >= ? AND date < ?
	ORDER BY amount DESC, id ASC
	LIMIT 1`, cur.Start.UTC(), cur.End.UTC()).Scan(&cat, &highest)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return Summary{}, err
	default:
		out.HighestExpenseAmount = highest
		out.HighestExpenseCategory = cat
	}

	var avg decimal.Decimal
	if err := e.DB.QueryRowContext(ctx, `
	SELECT COALESCE(AVG(amount), 0)
	FROM transactions
	WHERE type = 'debit' AND pending_approval = 0 AND date >= ? AND date < ?`,
		cur.Start.UTC(), cur.End.UTC()).Scan(&avg); err != nil {
		return Summary{}, err
	}
	out.AverageExpense = avg.Round(2)

	out.TotalIncome, out.TotalExpense, err = e.totals(ctx, cur)
	if err != nil {
		return Summary{}, err
	}
	return out, nil
}

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Value    decimal.Decimal `json:"value"`
	Color    string          `json:"color"`
}

// Breakdown splits category totals by direction, largest first.
type Breakdown struct {
	Income  []CategoryTotal `json:"incomeCategories"`
	Expense []CategoryTotal `json:"expenseCategories"`
}

// CategoryBreakdown sums approved transactions per category and type inside the
// current window of p.
func (e *Engine) CategoryBreakdown(ctx context.Context, p domain.Period) (Breakdown, error) {
	cur, _, err := e.PeriodWindows(p)
	if err != nil {
		return Breakdown{}, err
	}
	rows, err := e.DB.QueryContext(ctx, `
	SELECT category, type, SUM(amount) AS total
	FROM transactions
	WHERE pending_approval = 0 AND date >= ? AND date < ?
	GROUP BY category, type
	ORDER BY total DESC, category ASC`, cur.Start.UTC(), cur.End.UTC())
	if err != nil {
		return Breakdown{}, err
	}
	defer rows.Close()

	out := Breakdown{Income: []CategoryTotal{}, Expense: []CategoryTotal{}}
	for rows.Next() {
		var c domain.Category
		var t domain.TransactionType
		var total decimal.Decimal
		if err := rows.Scan(&c, &t, &total); err != nil {
			return Breakdown{}, err
		}
		entry := CategoryTotal{Category: c, Value: total.Round(2), Color: c.Color()}
		switch t {
		case domain.Credit:
			out.Income = append(out.Income, entry)
		case domain.Debit:
			out.Expense = append(out.Expense, entry)
		}
	}
	return out, rows.Err()
}

// Totals are sums and maxima over a trend series.
type Totals struct {
	TotalIncome          decimal.Decimal `json:"totalIncome"`
	TotalExpense         decimal.Decimal `json:"totalExpense"`
	TotalSavings         decimal.Decimal `json:"totalSavings"`
	TotalPreviousIncome  decimal.Decimal `json:"totalPreviousIncome"`
	TotalPreviousExpense decimal.Decimal `json:"totalPreviousExpense"`
	TotalPreviousSavings decimal.Decimal `json:"totalPreviousSavings"`
	MaxIncome            decimal.Decimal `json:"maxIncome"`
	MaxExpense           decimal.Decimal `json:"maxExpense"`
	MaxSavings           decimal.Decimal `json:"maxSavings"`
	MaxPreviousIncome    decimal.Decimal `json:"maxPreviousIncome"`
	MaxPreviousExpense   decimal.Decimal `json:"maxPreviousExpense"`
	MaxPreviousSavings   decimal.Decimal `json:"maxPreviousSavings"`
}

// SeriesTotals folds a trend series. An empty series yields zeros.
func SeriesTotals(points []TrendPoint) Totals {
	t := Totals{
		TotalIncome: decimal.Zero, TotalExpense: decimal.Zero, TotalSavings: decimal.Zero,
		TotalPreviousIncome: decimal.Zero, TotalPreviousExpense: decimal.Zero, TotalPreviousSavings: decimal.Zero,
		MaxIncome: decimal.Zero, MaxExpense: decimal.Zero, MaxSavings: decimal.Zero,
		MaxPreviousIncome: decimal.Zero, MaxPreviousExpense: decimal.Zero, MaxPreviousSavings: decimal.Zero,
	}
	for _, p := range points {
		t.TotalIncome = t.TotalIncome.Add(p.Income)
		t.TotalExpense = t.TotalExpense.Add(p.Expense)
		t.TotalSavings = t.TotalSavings.Add(p.Savings)
		t.TotalPreviousIncome = t.TotalPreviousIncome.Add(p.PreviousIncome)
		t.TotalPreviousExpense = t.TotalPreviousExpense.Add(p.PreviousExpense)
		t.TotalPreviousSavings = t.TotalPreviousSavings.Add(p.PreviousSavings)
		t.MaxIncome = decimal.Max(t.MaxIncome, p.Income)
		t.MaxExpense = decimal.Max(t.MaxExpense, p.Expense)
		t.MaxSavings = decimal.Max(t.MaxSavings, p.Savings)
		t.MaxPreviousIncome = decimal.Max(t.MaxPreviousIncome, p.PreviousIncome)
		t.MaxPreviousExpense = decimal.Max(t.MaxPreviousExpense, p.PreviousExpense)
		t.MaxPreviousSavings = decimal.Max(t.MaxPreviousSavings, p.PreviousSavings)
	}
	return t
}
