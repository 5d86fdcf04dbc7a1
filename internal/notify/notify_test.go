package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/insights"
)

func progress(t domain.AlertType, cat domain.Category, threshold int64, p string) insights.AlertProgress {
	return insights.AlertProgress{
		Alert:    repository.Alert{Type: t, Frequency: domain.FrequencyMonthly, Category: cat, Threshold: decimal.NewFromInt(threshold)},
		Progress: decimal.RequireFromString(p),
	}
}

func TestBuildSuppressesBelowFifty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Build([]insights.AlertProgress{progress(domain.AlertSpending, "food", 1000, "49.9")}, ""))
	require.Len(t, Build([]insights.AlertProgress{progress(domain.AlertSpending, "food", 1000, "50.0")}, ""), 1)
}

func TestBuildIncome(t *testing.T) {
	t.Parallel()

	got := Build([]insights.AlertProgress{
		progress(domain.AlertIncome, "salary", 50000, "100.0"),
		progress(domain.AlertIncome, "investments", 10000, "90"),
		progress(domain.AlertIncome, "refund", 2000, "60"),
	}, "₹")
	require.Len(t, got, 3)

	require.Equal(t, "Income Alert", got[0].Title)
	require.Equal(t, domain.NotificationAlert, got[0].Type)
	require.Equal(t, domain.SeverityHigh, got[0].Severity)
	require.False(t, got[0].IsRead)
	require.Equal(t, `Goal Achieved: You've reached ₹50,000 in income for "salary" (100%).`, got[0].Message)

	require.Equal(t, domain.SeverityMedium, got[1].Severity)
	require.Equal(t, `Great! You're at 90% of your income goal ₹10,000 for "investments".`, got[1].Message)

	require.Equal(t, domain.SeverityLow, got[2].Severity)
	require.Equal(t, `You're at 60% of your ₹2,000 income goal for "refund".`, got[2].Message)
}

func TestBuildSpending(t *testing.T) {
	t.Parallel()

	got := Build([]insights.AlertProgress{
		progress(domain.AlertSpending, "rent", 15000, "180.5"),
		progress(domain.AlertSpending, "grocery", 2000, "85"),
		progress(domain.AlertSpending, "fuel", 1500, "72.5"),
	}, "")
	require.Len(t, got, 3)

	require.Equal(t, "Spending Alert", got[0].Title)
	require.Equal(t, domain.SeverityCritical, got[0].Severity)
	require.Equal(t, `Overspent: You've exceeded your ₹15,000 limit for "rent" (100%).`, got[0].Message)

	require.Equal(t, domain.SeverityHigh, got[1].Severity)
	require.Equal(t, `Warning: You're at 85% of your ₹2,000 spending limit for "grocery".`, got[1].Message)

	require.Equal(t, domain.SeverityMedium, got[2].Severity)
	require.Equal(t, `You've used 72.5% of your ₹1,500 spending limit for "fuel".`, got[2].Message)
}
