package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/money-trail/internal/database/dbtest"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/insights"
)

func TestReport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := dbtest.Open(t)
	repo := repository.NewTransactionRepo(db)
	rows := []repository.Transaction{
		{Type: domain.Credit, Title: "Salary", Amount: decimal.NewFromInt(50000), Date: time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC), Category: "salary"},
		{Type: domain.Debit, Title: "Dominos", Amount: decimal.NewFromInt(450), Date: time.Date(2025, time.August, 18, 20, 0, 0, 0, time.UTC), Category: "food"},
		{Type: domain.Debit, Title: "Rent", Amount: decimal.NewFromInt(15000), Date: time.Date(2025, time.August, 5, 9, 0, 0, 0, time.UTC), Category: "rent"},
	}
	for _, r := range rows {
		r.Account = "HDFC"
		r.Mode = domain.ModeUPI
		r.Source = domain.SourceManual
		_, err := repo.Insert(ctx, r)
		require.NoError(t, err)
	}

	e := insights.New(db, time.UTC)
	e.Now = func() time.Time { return time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC) }

	out, err := Report(ctx, e, domain.PeriodMonthly, "₹")
	require.NoError(t, err)
	require.Contains(t, out, "This Month")
	require.Contains(t, out, "₹50,000")
	require.Contains(t, out, "Monthly Trend")
	require.Contains(t, out, "Highest expense: ₹15,000 (Rent)")
	require.Contains(t, out, "Food")
	require.Less(t, strings.Index(out, "Rent "), strings.Index(out, "Food "))

	_, err = Report(ctx, e, domain.Period("Hourly"), "₹")
	require.ErrorIs(t, err, domain.ErrUnsupportedPeriod)
}

func TestBar(t *testing.T) {
	t.Parallel()

	require.Equal(t, strings.Repeat(" ", barWidth), bar(decimal.Zero, decimal.NewFromInt(10)))
	require.Equal(t, strings.Repeat(" ", barWidth), bar(decimal.NewFromInt(5), decimal.Zero))
	require.Equal(t, strings.Repeat("█", barWidth), bar(decimal.NewFromInt(10), decimal.NewFromInt(10)))
	require.Equal(t, strings.Repeat("█", 12)+strings.Repeat(" ", 12), bar(decimal.NewFromInt(5), decimal.NewFromInt(10)))
	require.Equal(t, "█"+strings.Repeat(" ", barWidth-1), bar(decimal.NewFromInt(1), decimal.NewFromInt(1000)))
}
