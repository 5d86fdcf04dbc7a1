// Package notify turns alert progress into user-facing notifications.
package notify

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/format"
	"github.com/berlinbruno/money-trail/internal/insights"
)

var (
	minProgress  = decimal.NewFromInt(50)
	warnProgress = decimal.NewFromInt(85)
	fullProgress = decimal.NewFromInt(100)
)

// Build emits one notification per alert whose progress is at least 50. Progress is
// capped at 100 in the text; severity steps up at 85 and 100.
func Build(progress []insights.AlertProgress, currencySymbol string) []repository.Notification {
	if currencySymbol == "" {
		currencySymbol = format.DefaultCurrencySymbol
	}
	var out []repository.Notification
	for _, p := range progress {
		if p.Progress.LessThan(minProgress) {
			continue
		}
		capped := decimal.Min(p.Progress, fullProgress)
		pct := capped.String()
		threshold := currencySymbol + format.Grouped(p.Alert.Threshold)
		cat := p.Alert.Category

		n := repository.Notification{Type: domain.NotificationAlert}
		if p.Alert.Type == domain.AlertIncome {
			n.Title = "Income Alert"
			switch {
			case capped.GreaterThanOrEqual(fullProgress):
				n.Message = fmt.Sprintf("Goal Achieved: You've reached %s in income for %q (%s%%).", threshold, cat, pct)
				n.Severity = domain.SeverityHigh
			case capped.GreaterThanOrEqual(warnProgress):
				n.Message = fmt.Sprintf("Great! You're at %s%% of your income goal %s for %q.", pct, threshold, cat)
				n.Severity = domain.SeverityMedium
			default:
				n.Message = fmt.Sprintf("You're at %s%% of your %s income goal for %q.", pct, threshold, cat)
				n.Severity = domain.SeverityLow
			}
		} else {
			n.Title = "Spending Alert"
			switch {
			case capped.GreaterThanOrEqual(fullProgress):
				n.Message = fmt.Sprintf("Overspent: You've exceeded your %s limit for %q (%s%%).", threshold, cat, pct)
				n.Severity = domain.SeverityCritical
			case capped.GreaterThanOrEqual(warnProgress):
				n.Message = fmt.Sprintf("Warning: You're at %s%% of your %s spending limit for %q.", pct, threshold, cat)
				n.Severity = domain.SeverityHigh
			default:
				n.Message = fmt.Sprintf("You've used %s%% of your %s spending limit for %q.", pct, threshold, cat)
				n.Severity = domain.SeverityMedium
			}
		}
		out = append(out, n)
	}
	return out
}
