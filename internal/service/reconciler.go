package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/berlinbruno/money-trail/internal/database/repository"
)

// DuplicateWindow bounds how far apart two transactions may be to count as duplicates.
const DuplicateWindow = 3 * 24 * time.Hour

// MinTitleSimilarity is the title similarity at which two same-amount transactions on
// different accounts or days are still hinted.
const MinTitleSimilarity = 0.6

// DuplicateHint pairs a pending transaction with an approved one it likely repeats.
type DuplicateHint struct {
	Pending    repository.Transaction `json:"pending"`
	Existing   repository.Transaction `json:"existing"`
	Similarity float64                `json:"similarity"`
}

// Reconciler flags pending SMS transactions that duplicate an approved entry, for
// example a manual record of the same payment.
type Reconciler struct {
	Transactions *repository.TransactionRepo
}

// Hints returns at most one hint per pending transaction, the most similar match.
func (r *Reconciler) Hints(ctx context.Context) ([]DuplicateHint, error) {
	pending, err := r.Transactions.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	approved, err := r.Transactions.List(ctx, repository.TransactionFilters{Approval: repository.ApprovalApproved})
	if err != nil {
		return nil, err
	}

	var hints []DuplicateHint
	for _, p := range pending {
		best := DuplicateHint{Similarity: -1}
		for _, a := range approved {
			if !matchCandidate(p, a) {
				continue
			}
			if sim := similarity(p.Title, a.Title); sim > best.Similarity {
				best = DuplicateHint{Pending: p, Existing: a, Similarity: sim}
			}
		}
		if best.Similarity >= 0 {
			hints = append(hints, best)
		}
	}
	sort.SliceStable(hints, func(i, j int) bool { return hints[i].Similarity > hints[j].Similarity })
	return hints, nil
}

// HintsByPendingID indexes Hints by pending transaction id.
func (r *Reconciler) HintsByPendingID(ctx context.Context) (map[int64]DuplicateHint, error) {
	hints, err := r.Hints(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]DuplicateHint, len(hints))
	for _, h := range hints {
		out[h.Pending.ID] = h
	}
	return out, nil
}

func matchCandidate(a, b repository.Transaction) bool {
	if a.Type != b.Type || !a.Amount.Equal(b.Amount) {
		return false
	}
	if absDuration(a.Date.Sub(b.Date)) > DuplicateWindow {
		return false
	}
	return similarity(a.Title, b.Title) >= MinTitleSimilarity || sameAccountDay(a, b)
}

func sameAccountDay(a, b repository.Transaction) bool {
	return a.Account == b.Account && a.Date.Format(time.DateOnly) == b.Date.Format(time.DateOnly)
}

// similarity is 1 minus the normalized edit distance of the upper-cased titles.
func similarity(a, b string) float64 {
	a, b = strings.ToUpper(strings.TrimSpace(a)), strings.ToUpper(strings.TrimSpace(b))
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
