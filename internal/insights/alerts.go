package insights

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// AlertProgress is an alert with the share of its threshold reached in the current
// window, as a percentage rounded to one decimal. It may exceed 100.
type AlertProgress struct {
	Alert    repository.Alert `json:"alert"`
	Progress decimal.Decimal  `json:"progress"`
}

// Progress computes round(sum/threshold*100, 1); a non-positive threshold yields 0.
func Progress(sum, threshold decimal.Decimal) decimal.Decimal {
	if !threshold.IsPositive() {
		return decimal.Zero
	}
	return sum.Div(threshold).Mul(hundred).Round(1)
}

type windowKey struct {
	t domain.TransactionType
	f domain.Frequency
}

// AlertProgress evaluates every alert against approved transactions of the matching
// direction (income: credits, spending: debits) inside the alert's window. Totals are
// per direction and window, not per category. Results are ordered by type, then
// progress descending.
func (e *Engine) AlertProgress(ctx context.Context) ([]AlertProgress, error) {
	alerts, err := repository.NewAlertRepo(e.DB).List(ctx, repository.AlertFilters{})
	if err != nil {
		return nil, err
	}

	sums := make(map[windowKey]decimal.Decimal)
	out := make([]AlertProgress, 0, len(alerts))
	for _, a := range alerts {
		key := windowKey{a.Type.TransactionType(), a.Frequency}
		sum, ok := sums[key]
		if !ok {
			sum, err = e.TypeTotal(ctx, key.t, key.f)
			if err != nil {
				return nil, err
			}
			sums[key] = sum
		}
		a.CurrentValue = sum
		out = append(out, AlertProgress{Alert: a, Progress: Progress(sum, a.Threshold)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Alert.Type != out[j].Alert.Type {
			return out[i].Alert.Type < out[j].Alert.Type
		}
		return out[i].Progress.GreaterThan(out[j].Progress)
	})
	return out, nil
}

// UsageRatio is the threshold-weighted average progress as a fraction, capped at 1.
func UsageRatio(progress []AlertProgress) decimal.Decimal {
	total, used := decimal.Zero, decimal.Zero
	for _, p := range progress {
		total = total.Add(p.Alert.Threshold)
		used = used.Add(p.Progress.Div(hundred).Mul(p.Alert.Threshold))
	}
	if !total.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(used.Div(total), decimal.NewFromInt(1))
}
