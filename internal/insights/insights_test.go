package insights

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/money-trail/internal/database/dbtest"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func at(month time.Month, day, hour, min int) time.Time {
	return time.Date(2025, month, day, hour, min, 0, 0, ist)
}

type row struct {
	typ      domain.TransactionType
	category domain.Category
	amount   int64
	date     time.Time
	pending  bool
}

// Wednesday 20 Aug 2025, noon IST. The Monday week runs 18..24 Aug.
func newEngine(t *testing.T, rows []row) *Engine {
	t.Helper()
	db := dbtest.Open(t)
	repo := repository.NewTransactionRepo(db)
	for _, r := range rows {
		_, err := repo.Insert(context.Background(), repository.Transaction{
			Account: "default", Type: r.typ, Title: string(r.category), Amount: decimal.NewFromInt(r.amount),
			Date: r.date, Mode: domain.ModeOther, Category: r.category, Source: domain.SourceManual,
			PendingApproval: r.pending,
		})
		require.NoError(t, err)
	}
	return &Engine{
		DB:       db,
		Location: ist,
		Now:      func() time.Time { return at(time.August, 20, 12, 0) },
	}
}

func ledger() []row {
	return []row{
		{domain.Credit, "salary", 50000, at(time.August, 1, 10, 0), false},
		{domain.Debit, "grocery", 500, at(time.August, 10, 18, 0), false},
		{domain.Credit, "refund", 700, at(time.August, 17, 11, 0), false},
		{domain.Debit, "food", 1000, at(time.August, 18, 9, 0), false},
		{domain.Credit, "refund", 2000, at(time.August, 19, 14, 30), false},
		{domain.Debit, "shopping", 999, at(time.August, 19, 15, 0), true},
		{domain.Debit, "food", 800, at(time.July, 5, 12, 0), false},
		{domain.Debit, "grocery", 900, at(time.July, 20, 12, 0), false},
		{domain.Debit, "travel", 300, at(time.July, 28, 12, 0), false},
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func TestMonthlyKPI(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	kpi, err := e.MonthlyKPI(context.Background())
	require.NoError(t, err)
	requireDecimal(t, "52700", kpi.Income)
	requireDecimal(t, "1500", kpi.Expense)
	requireDecimal(t, "51200", kpi.Savings)
}

func TestMonthlyKPINegativeSavings(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []row{{domain.Debit, "rent", 15000, at(time.August, 2, 9, 0), false}})
	kpi, err := e.MonthlyKPI(context.Background())
	require.NoError(t, err)
	requireDecimal(t, "-15000", kpi.Savings)
}

func TestRecentTransactions(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	recent, err := e.RecentTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	require.Equal(t, domain.Category("refund"), recent[0].Category)
	require.Equal(t, "2000", recent[0].Amount.String())
	for _, r := range recent {
		require.False(t, r.PendingApproval)
	}

	two, err := e.RecentTransactions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
}

func TestTopDeviations(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []row{
		{domain.Debit, "food", 1000, at(time.August, 3, 9, 0), false},
		{domain.Debit, "grocery", 500, at(time.August, 4, 9, 0), false},
		{domain.Debit, "food", 800, at(time.July, 3, 9, 0), false},
		{domain.Debit, "grocery", 900, at(time.July, 4, 9, 0), false},
		{domain.Debit, "travel", 300, at(time.July, 5, 9, 0), false},
	})
	devs, err := e.TopDeviations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, devs, 3)

	require.Equal(t, domain.Category("grocery"), devs[0].Category)
	requireDecimal(t, "-400", devs[0].Diff)
	require.Equal(t, domain.Down, devs[0].Direction)
	require.Equal(t, 1, devs[0].Rank)

	require.Equal(t, domain.Category("travel"), devs[1].Category)
	requireDecimal(t, "0", devs[1].Current)
	requireDecimal(t, "300", devs[1].Previous)
	require.Equal(t, domain.Down, devs[1].Direction)

	require.Equal(t, domain.Category("food"), devs[2].Category)
	requireDecimal(t, "1000", devs[2].Current)
	require.Equal(t, domain.Up, devs[2].Direction)
	require.Equal(t, domain.Category("food").Color(), devs[2].Color)

	top, err := e.TopDeviations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestTopDeviationsFlat(t *testing.T) {
	t.Parallel()

	e := newEngine(t, []row{
		{domain.Debit, "bills", 100, at(time.August, 3, 9, 0), false},
		{domain.Debit, "bills", 100, at(time.July, 3, 9, 0), false},
	})
	devs, err := e.TopDeviations(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, devs, 1)
	require.Equal(t, domain.Flat, devs[0].Direction)
}

func TestTrendWeekly(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	points, err := e.Trend(context.Background(), domain.PeriodWeekly)
	require.NoError(t, err)
	require.Len(t, points, 7)
	require.Equal(t, "Mon", points[0].Label)
	require.Equal(t, "Sun", points[6].Label)

	requireDecimal(t, "1000", points[0].Expense)
	requireDecimal(t, "0", points[0].Savings) // floored
	requireDecimal(t, "2000", points[1].Income)
	requireDecimal(t, "2000", points[1].Savings)
	requireDecimal(t, "700", points[6].PreviousIncome)
	requireDecimal(t, "700", points[6].PreviousSavings)
	requireDecimal(t, "0", points[6].Income)
}

func TestTrendMonthly(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	points, err := e.Trend(context.Background(), domain.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, points, 4)
	require.Equal(t, "Week 1", points[0].Label)

	requireDecimal(t, "50000", points[0].Income)
	requireDecimal(t, "500", points[1].Expense)
	requireDecimal(t, "700", points[2].Income)
	requireDecimal(t, "2000", points[3].Income)
	requireDecimal(t, "1000", points[3].Expense)

	requireDecimal(t, "800", points[0].PreviousExpense)
	requireDecimal(t, "900", points[2].PreviousExpense)
	// 28 Jul falls in the fifth Monday week of July and is dropped.
	total := SeriesTotals(points)
	requireDecimal(t, "1700", total.TotalPreviousExpense)
}

func TestTrendYearly(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	points, err := e.Trend(context.Background(), domain.PeriodYearly)
	require.NoError(t, err)
	require.Len(t, points, 12)
	requireDecimal(t, "2000", points[6].Expense)
	requireDecimal(t, "52700", points[7].Income)
	requireDecimal(t, "51200", points[7].Savings)
	requireDecimal(t, "0", points[7].PreviousIncome)
}

func TestTrendDaily(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	points, err := e.Trend(context.Background(), domain.PeriodDaily)
	require.NoError(t, err)
	require.Len(t, points, 24)
	require.Equal(t, "14:00", points[14].Label)
	requireDecimal(t, "2000", points[14].PreviousIncome)
	requireDecimal(t, "0", points[14].Income)
}

func TestUnsupportedPeriod(t *testing.T) {
	t.Parallel()

	e := newEngine(t, nil)
	_, err := e.Trend(context.Background(), domain.Period("Hourly"))
	require.ErrorIs(t, err, domain.ErrUnsupportedPeriod)
	_, err = e.Summary(context.Background(), domain.Period("Hourly"))
	require.ErrorIs(t, err, domain.ErrUnsupportedPeriod)
	_, err = e.CategoryBreakdown(context.Background(), domain.Period(""))
	require.ErrorIs(t, err, domain.ErrUnsupportedPeriod)
	_, err = e.FrequencyWindow(domain.Frequency("daily"))
	require.ErrorIs(t, err, domain.ErrUnsupportedFrequency)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	ctx := context.Background()

	monthly, err := e.Summary(ctx, domain.PeriodMonthly)
	require.NoError(t, err)
	requireDecimal(t, "1000", monthly.HighestExpenseAmount)
	require.Equal(t, "food", monthly.HighestExpenseCategory)
	requireDecimal(t, "750", monthly.AverageExpense)
	requireDecimal(t, "52700", monthly.TotalIncome)
	requireDecimal(t, "1500", monthly.TotalExpense)

	yearly, err := e.Summary(ctx, domain.PeriodYearly)
	require.NoError(t, err)
	requireDecimal(t, "700", yearly.AverageExpense)

	daily, err := e.Summary(ctx, domain.PeriodDaily)
	require.NoError(t, err)
	require.Equal(t, "N/A", daily.HighestExpenseCategory)
	requireDecimal(t, "0", daily.HighestExpenseAmount)
	requireDecimal(t, "0", daily.AverageExpense)
}

func TestCategoryBreakdown(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	b, err := e.CategoryBreakdown(context.Background(), domain.PeriodMonthly)
	require.NoError(t, err)

	require.Len(t, b.Income, 2)
	require.Equal(t, domain.Category("salary"), b.Income[0].Category)
	requireDecimal(t, "2700", b.Income[1].Value)
	require.Len(t, b.Expense, 2)
	require.Equal(t, domain.Category("food"), b.Expense[0].Category)
	require.Equal(t, domain.Category("food").Color(), b.Expense[0].Color)

	empty, err := newEngine(t, nil).CategoryBreakdown(context.Background(), domain.PeriodWeekly)
	require.NoError(t, err)
	require.Empty(t, empty.Income)
	require.Empty(t, empty.Expense)
}

func TestAlertProgress(t *testing.T) {
	t.Parallel()

	e := newEngine(t, ledger())
	ctx := context.Background()
	alerts := repository.NewAlertRepo(e.DB)
	for _, a := range []repository.Alert{
		{Type: domain.AlertSpending, Frequency: domain.FrequencyMonthly, Category: "rent", Threshold: decimal.NewFromInt(15000)},
		{Type: domain.AlertSpending, Frequency: domain.FrequencyWeekly, Category: "grocery", Threshold: decimal.NewFromInt(2000)},
		{Type: domain.AlertIncome, Frequency: domain.FrequencyMonthly, Category: "salary", Threshold: decimal.NewFromInt(50000)},
	} {
		_, err := alerts.Insert(ctx, a)
		require.NoError(t, err)
	}

	progress, err := e.AlertProgress(ctx)
	require.NoError(t, err)
	require.Len(t, progress, 3)

	require.Equal(t, domain.AlertIncome, progress[0].Alert.Type)
	requireDecimal(t, "105.4", progress[0].Progress)
	requireDecimal(t, "52700", progress[0].Alert.CurrentValue)

	require.Equal(t, domain.Category("grocery"), progress[1].Alert.Category)
	requireDecimal(t, "50", progress[1].Progress)
	require.Equal(t, domain.Category("rent"), progress[2].Alert.Category)
	requireDecimal(t, "10", progress[2].Progress)

	require.Equal(t, "0.8239", UsageRatio(progress).Round(4).String())
}

func TestProgress(t *testing.T) {
	t.Parallel()

	requireDecimal(t, "100", Progress(decimal.NewFromInt(50000), decimal.NewFromInt(50000)))
	requireDecimal(t, "33.3", Progress(decimal.NewFromInt(1), decimal.NewFromInt(3)))
	requireDecimal(t, "0", Progress(decimal.NewFromInt(10), decimal.Zero))
}

func TestUsageRatio(t *testing.T) {
	t.Parallel()

	require.True(t, UsageRatio(nil).IsZero())
	over := []AlertProgress{{Alert: repository.Alert{Threshold: decimal.NewFromInt(100)}, Progress: decimal.NewFromInt(250)}}
	requireDecimal(t, "1", UsageRatio(over))
}

func TestSeriesTotals(t *testing.T) {
	t.Parallel()

	points := []TrendPoint{
		{Income: decimal.NewFromInt(10), Expense: decimal.NewFromInt(4), Savings: decimal.NewFromInt(6), PreviousIncome: decimal.NewFromInt(3)},
		{Income: decimal.NewFromInt(5), Expense: decimal.NewFromInt(9), Savings: decimal.Zero, PreviousIncome: decimal.NewFromInt(8)},
	}
	got := SeriesTotals(points)
	requireDecimal(t, "15", got.TotalIncome)
	requireDecimal(t, "13", got.TotalExpense)
	requireDecimal(t, "10", got.MaxIncome)
	requireDecimal(t, "9", got.MaxExpense)
	requireDecimal(t, "8", got.MaxPreviousIncome)

	empty := SeriesTotals(nil)
	requireDecimal(t, "0", empty.MaxSavings)
}

func TestWeekOfYear(t *testing.T) {
	t.Parallel()

	// 1 Jan 2025 is a Wednesday, so it sits in week 0 until Monday 6 Jan.
	require.Equal(t, 0, weekOfYear(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 0, weekOfYear(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 1, weekOfYear(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
}
