package sms

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Extracted is one transaction found in a message that may bundle several.
// Account and Payee are best-effort hints and nil when absent.
type Extracted struct {
	Amount  decimal.Decimal
	Type    Direction
	Balance *decimal.Decimal
	Account *string
	Payee   *string
	Raw     string
}

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	txRe          = regexp.MustCompile(`(?i)(?:rs\.?|inr)\s?(\d+(?:\.\d{1,2})?).*?(debited|credited)`)
	tailBalanceRe = regexp.MustCompile(`(?i)(?:acbal|avl bal|clrbal)[:\s]*([\d,]+(?:\.\d{1,2})?)`)
	accountHintRe = regexp.MustCompile(`(?i)(?:a/c|acct|account)[^\d]*(\d{4,})`)
	payeeFromRe   = regexp.MustCompile(`(?i)from\s([A-Z\s.]+?)(?:[-,]|\.|$)`)
	payeeCreditRe = regexp.MustCompile(`(?i)credited to\s([A-Z\s.]+?)(?:[-,]|\.|$)`)
)

// ParseMultiple scans body for every "<amount> ... debited|credited" occurrence.
// For each one it looks for a balance after the occurrence and for an account
// number and payee in the text up to the end of the occurrence.
func ParseMultiple(body string) []Extracted {
	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(body, " "))

	var out []Extracted
	for _, loc := range txRe.FindAllStringSubmatchIndex(normalized, -1) {
		amount, err := decimal.NewFromString(normalized[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		typ := DirectionCredit
		if strings.EqualFold(normalized[loc[4]:loc[5]], "debited") {
			typ = DirectionDebit
		}
		head := normalized[:loc[1]]
		tail := normalized[loc[1]:]

		ex := Extracted{Amount: amount, Type: typ, Raw: normalized[loc[0]:loc[1]]}
		if m := tailBalanceRe.FindStringSubmatch(tail); m != nil {
			if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
				ex.Balance = &d
			}
		}
		if m := accountHintRe.FindStringSubmatch(head); m != nil {
			acct := m[1]
			ex.Account = &acct
		}
		m := payeeFromRe.FindStringSubmatch(head)
		if m == nil {
			m = payeeCreditRe.FindStringSubmatch(head)
		}
		if m != nil {
			if payee := strings.TrimSpace(m[1]); payee != "" {
				ex.Payee = &payee
			}
		}
		out = append(out, ex)
	}
	return out
}
