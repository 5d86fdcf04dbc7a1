package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/domain"
)

// ErrNotFound is returned by mutations that matched no row.
var ErrNotFound = errors.New("record not found")

// Transaction represents a transaction row.
type Transaction struct {
	ID              int64                  `json:"id"`
	Account         string                 `json:"account"`
	Type            domain.TransactionType `json:"type"`
	Title           string                 `json:"title"`
	Amount          decimal.Decimal        `json:"amount"`
	Date            time.Time              `json:"date"`
	Mode            domain.Mode            `json:"mode"`
	Category        domain.Category        `json:"category"`
	Source          domain.Source          `json:"source"`
	PendingApproval bool                   `json:"pendingApproval"`
	SMSHash         *string                `json:"smsHash,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// Alert represents an alert row. CurrentValue is computed by the caller and never stored.
type Alert struct {
	ID           int64            `json:"id"`
	Type         domain.AlertType `json:"type"`
	Frequency    domain.Frequency `json:"frequency"`
	Category     domain.Category  `json:"category"`
	Threshold    decimal.Decimal  `json:"threshold"`
	CurrentValue decimal.Decimal  `json:"currentValue"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Notification represents a notification row.
type Notification struct {
	ID        int64                   `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Severity  domain.Severity         `json:"severity"`
	IsRead    bool                    `json:"isRead"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
