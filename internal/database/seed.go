package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
)

// SeedDemo fills an empty database with a small sample ledger dated around now.
// It does nothing when any transaction already exists and reports whether it seeded.
func SeedDemo(ctx context.Context, db *sql.DB, now time.Time) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 9, 0, 0, 0, time.UTC)
	day := func(d int) time.Time {
		t := monthStart.AddDate(0, 0, d-1)
		if t.After(now) {
			return now
		}
		return t
	}

	txs := []repository.Transaction{
		{Account: "HDFC", Type: domain.Debit, Title: "Grocery Shopping", Amount: decimal.NewFromInt(1200), Date: day(15), Mode: domain.ModeUPI, Category: "grocery", Source: domain.SourceManual},
		{Account: "HDFC", Type: domain.Credit, Title: "Salary", Amount: decimal.NewFromInt(50000), Date: day(1), Mode: domain.ModeOther, Category: "salary", Source: domain.SourceManual},
		{Account: "ICICI", Type: domain.Debit, Title: "Fuel", Amount: decimal.NewFromInt(3000), Date: day(10), Mode: domain.ModeCard, Category: "fuel", Source: domain.SourceManual},
		{Account: "ICICI", Type: domain.Debit, Title: "Rent", Amount: decimal.NewFromInt(15000), Date: day(1), Mode: domain.ModeNEFT, Category: "rent", Source: domain.SourceManual},
		{Account: "HDFC", Type: domain.Credit, Title: "Investment Refund", Amount: decimal.NewFromInt(2000), Date: day(5), Mode: domain.ModeOther, Category: "refund", Source: domain.SourceAPI},
	}
	alerts := []repository.Alert{
		{Type: domain.AlertIncome, Frequency: domain.FrequencyMonthly, Category: "salary", Threshold: decimal.NewFromInt(50000)},
		{Type: domain.AlertIncome, Frequency: domain.FrequencyMonthly, Category: "investments", Threshold: decimal.NewFromInt(10000)},
		{Type: domain.AlertSpending, Frequency: domain.FrequencyWeekly, Category: "grocery", Threshold: decimal.NewFromInt(2000)},
		{Type: domain.AlertSpending, Frequency: domain.FrequencyMonthly, Category: "rent", Threshold: decimal.NewFromInt(15000)},
		{Type: domain.AlertSpending, Frequency: domain.FrequencyWeekly, Category: "fuel", Threshold: decimal.NewFromInt(1500)},
	}

	txRepo := repository.NewTransactionRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	noteRepo := repository.NewNotificationRepo(db)
	for _, t := range txs {
		if _, err := txRepo.Insert(ctx, t); err != nil {
			return false, fmt.Errorf("seed transaction %q: %w", t.Title, err)
		}
	}
	for _, a := range alerts {
		if _, err := alertRepo.Insert(ctx, a); err != nil {
			return false, fmt.Errorf("seed alert %s/%s: %w", a.Type, a.Category, err)
		}
	}
	welcome := repository.Notification{
		Type:     domain.NotificationSystem,
		Title:    "Welcome",
		Message:  "Welcome to MoneyTrail!",
		Severity: domain.SeverityInfo,
	}
	if _, err := noteRepo.Add(ctx, welcome, now); err != nil {
		return false, fmt.Errorf("seed notification: %w", err)
	}
	return true, nil
}
