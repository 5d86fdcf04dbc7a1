// Package sms turns bank and wallet notification texts into structured amounts.
//
// Parsing is heuristic: patterns are tuned to Indian bank/UPI message formats and
// unmatched input degrades to zero or nil values instead of failing. Callers decide
// whether a Parsed result is usable.
package sms

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Direction is the parsed money flow of a message.
type Direction string

const (
	DirectionDebit   Direction = "debit"
	DirectionCredit  Direction = "credit"
	DirectionUnknown Direction = "unknown"
)

// Parsed is the result of parsing a single message body.
type Parsed struct {
	Amount  decimal.Decimal
	Type    Direction
	Balance *decimal.Decimal
	Raw     string
}

// Usable reports whether the result carries a positive amount and a known direction.
func (p Parsed) Usable() bool {
	return p.Amount.IsPositive() && p.Type != DirectionUnknown
}

// MessageParser extracts a transaction from a message body. Implementations must not
// panic on arbitrary input.
type MessageParser interface {
	Parse(body string) Parsed
}

// MessageParserFunc adapts a function to MessageParser.
type MessageParserFunc func(body string) Parsed

func (f MessageParserFunc) Parse(body string) Parsed { return f(body) }

var (
	amountRe   = regexp.MustCompile(`(?i)(?:inr|rs\.?)\s?(\d+(?:\.\d{1,2})?)`)
	debitedRe  = regexp.MustCompile(`(?i)debited`)
	creditedRe = regexp.MustCompile(`(?i)credited`)
	balanceRe  = regexp.MustCompile(`(?i)bal[:\s]?\s?(\d+(?:\.\d{1,2})?)`)
)

// RegexParser is the default MessageParser.
type RegexParser struct{}

// Parse takes the first currency amount in body, classifies the direction by the
// words "debited" (checked first) and "credited" and picks up an optional balance.
func (RegexParser) Parse(body string) Parsed {
	out := Parsed{Amount: decimal.Zero, Type: DirectionUnknown, Raw: body}

	if m := amountRe.FindStringSubmatch(body); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			out.Amount = d
		}
	}

	switch {
	case debitedRe.MatchString(body):
		out.Type = DirectionDebit
	case creditedRe.MatchString(body):
		out.Type = DirectionCredit
	}

	if m := balanceRe.FindStringSubmatch(body); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			out.Balance = &d
		}
	}
	return out
}

// Parse runs the default parser.
func Parse(body string) Parsed {
	return RegexParser{}.Parse(body)
}
