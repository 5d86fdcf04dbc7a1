package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/format"
	"github.com/berlinbruno/money-trail/internal/insights"
)

const barWidth = 24

var (
	incomeBar  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseBar = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Report renders the month KPI and the trend, summary and category breakdown of p
// as plain terminal text.
func Report(ctx context.Context, e *insights.Engine, p domain.Period, currency string) (string, error) {
	kpi, err := e.MonthlyKPI(ctx)
	if err != nil {
		return "", fmt.Errorf("monthly kpi: %w", err)
	}
	trend, err := e.Trend(ctx, p)
	if err != nil {
		return "", fmt.Errorf("trend: %w", err)
	}
	summary, err := e.Summary(ctx, p)
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	breakdown, err := e.CategoryBreakdown(ctx, p)
	if err != nil {
		return "", fmt.Errorf("category breakdown: %w", err)
	}

	money := func(d decimal.Decimal) string { return format.Amount(d, currency) }

	head := boxStyle.Render(fmt.Sprintf("%s\nIncome %s   Expense %s   Savings %s",
		titleStyle.Render("This Month"), money(kpi.Income), money(kpi.Expense), money(kpi.Savings)))

	var b strings.Builder
	b.WriteString(head + "\n\n")
	b.WriteString(titleStyle.Render(string(p)+" Trend") + "\n")
	totals := insights.SeriesTotals(trend)
	scale := decimal.Max(totals.MaxIncome, totals.MaxExpense)
	for _, pt := range trend {
		fmt.Fprintf(&b, "%-8s %s %8s\n", pt.Label, incomeBar.Render(bar(pt.Income, scale)), format.Compact(pt.Income.InexactFloat64()))
		fmt.Fprintf(&b, "%-8s %s %8s\n", "", expenseBar.Render(bar(pt.Expense, scale)), format.Compact(pt.Expense.InexactFloat64()))
	}
	fmt.Fprintf(&b, "Total income %s (previous %s), expense %s (previous %s)\n\n",
		money(totals.TotalIncome), money(totals.TotalPreviousIncome),
		money(totals.TotalExpense), money(totals.TotalPreviousExpense))

	b.WriteString(titleStyle.Render("Summary") + "\n")
	fmt.Fprintf(&b, "Highest expense: %s (%s)\nAverage expense: %s\n\n",
		money(summary.HighestExpenseAmount), format.Capitalize(summary.HighestExpenseCategory),
		money(summary.AverageExpense))

	b.WriteString(titleStyle.Render("Where It Went") + "\n")
	if len(breakdown.Expense) == 0 {
		b.WriteString("No expenses yet.\n")
	}
	for _, c := range breakdown.Expense {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color))
		fmt.Fprintf(&b, "%s %-14s %s\n", style.Render("■"), format.Capitalize(string(c.Category)), money(c.Value))
	}
	return b.String(), nil
}

// bar draws v as a proportion of scale.
func bar(v, scale decimal.Decimal) string {
	if !scale.IsPositive() || !v.IsPositive() {
		return strings.Repeat(" ", barWidth)
	}
	n := int(v.Div(scale).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
	n = max(min(n, barWidth), 1)
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}
