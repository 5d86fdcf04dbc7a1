package sms

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// Message is a raw inbox message.
type Message struct {
	ID              string `json:"_id,omitempty" yaml:"_id,omitempty"`
	Sender          string `json:"address" yaml:"address"`
	Body            string `json:"body" yaml:"body"`
	TimestampMillis int64  `json:"date" yaml:"date"`
}

// Time returns the message timestamp in UTC.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.TimestampMillis).UTC()
}

// Fingerprint identifies m for deduplication.
func (m Message) Fingerprint() string {
	return Fingerprint(m.Sender, m.Body, m.TimestampMillis)
}

// Fingerprint is the hex MD5 of "sender|body|timestamp". Identical tuples always
// produce the same value.
func Fingerprint(sender, body string, timestampMillis int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%d", sender, body, timestampMillis)))
	return hex.EncodeToString(sum[:])
}

// FinancePattern matches message bodies that look like bank, card or wallet activity.
const FinancePattern = `(?i)(.*)(` +
	`debited|credited|upi|transaction|txn|payment|transferred|withdrawn|paid|received|` +
	`refund|reversal|collect|acbal|clrbal|balance|loan|emi|reward|cashback|` +
	`hdfc|icici|sbi|axis|kotak|yes bank|indusind|pnbs|canara bank|bank of baroda|union bank|` +
	`google pay|phonepe|paytm|bhim|mobikwik|amazon pay|freecharge|` +
	`credit card|debit card|card ending|cc ending|` +
	`rs|inr` +
	`)(.*)`

// FinanceRe is the compiled FinancePattern.
var FinanceRe = regexp.MustCompile(FinancePattern)
