// Package domain holds the closed enumerations shared by every layer of the tracker:
// transaction direction, the category taxonomy, modes, sources, alert kinds,
// notification severities and aggregation periods.
package domain

import (
	"fmt"
	"strings"
)

// TransactionType is the direction of a transaction. Amounts are always positive.
type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

// ParseTransactionType normalizes s and rejects anything but debit or credit.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case Debit, Credit:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// Mode is the payment rail of a transaction.
type Mode string

const (
	ModeUPI   Mode = "upi"
	ModeNEFT  Mode = "neft"
	ModeIMPS  Mode = "imps"
	ModeCard  Mode = "card"
	ModeCash  Mode = "cash"
	ModeOther Mode = "other"
)

// Modes lists every accepted Mode.
var Modes = []Mode{ModeUPI, ModeNEFT, ModeIMPS, ModeCard, ModeCash, ModeOther}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeOther, nil
	}
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Source records how a transaction entered the ledger.
type Source string

const (
	SourceManual Source = "manual"
	SourceSMS    Source = "sms"
	SourceAPI    Source = "api"
)

// AlertType selects which side of the ledger an alert watches.
type AlertType string

const (
	AlertIncome   AlertType = "income"
	AlertSpending AlertType = "spending"
)

func ParseAlertType(s string) (AlertType, error) {
	switch t := AlertType(strings.ToLower(strings.TrimSpace(s))); t {
	case AlertIncome, AlertSpending:
		return t, nil
	default:
		return "", fmt.Errorf("%w: alert type %q", ErrInvalidType, s)
	}
}

// TransactionType returns the ledger direction matched by the alert type.
func (a AlertType) TransactionType() TransactionType {
	if a == AlertIncome {
		return Credit
	}
	return Debit
}

// Frequency is the window an alert accumulates over.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyWeekly, FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFrequency, s)
	}
}

// Severity ranks a notification.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTransaction NotificationType = "transaction"
	NotificationAlert       NotificationType = "alert"
	NotificationSystem      NotificationType = "system"
)

// Period is an aggregation granularity.
type Period string

const (
	PeriodDaily   Period = "Daily"
	PeriodWeekly  Period = "Weekly"
	PeriodMonthly Period = "Monthly"
	PeriodYearly  Period = "Yearly"
)

// Periods lists the supported aggregation periods in display order.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

// ParsePeriod accepts the period name in any case.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, s)
}

// Direction tags a deviation by the sign of its change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)
