package domain

import (
	"fmt"
	"strings"
)

// DebitCategory is a category valid for money going out.
type DebitCategory string

// CreditCategory is a category valid for money coming in.
type CreditCategory string

const (
	Food       DebitCategory = "food"
	Grocery    DebitCategory = "grocery"
	Bills      DebitCategory = "bills"
	Shopping   DebitCategory = "shopping"
	Travel     DebitCategory = "travel"
	Fuel       DebitCategory = "fuel"
	Rent       DebitCategory = "rent"
	DebitOther DebitCategory = "other"
)

const (
	Salary      CreditCategory = "salary"
	Investments CreditCategory = "investments"
	Refund      CreditCategory = "refund"
	CreditOther CreditCategory = "other"
)

// Category is the union of DebitCategory and CreditCategory as stored in the ledger.
// Use ValidateCategory to check it against a transaction direction.
type Category string

// Other is shared by both sides of the taxonomy.
const Other Category = "other"

var (
	DebitCategories  = []DebitCategory{Food, Grocery, Bills, Shopping, Travel, Fuel, Rent, DebitOther}
	CreditCategories = []CreditCategory{Salary, Investments, Refund, CreditOther}
)

// CategoriesFor returns the categories allowed for t in display order.
func CategoriesFor(t TransactionType) []Category {
	switch t {
	case Credit:
		out := make([]Category, 0, len(CreditCategories))
		for _, c := range CreditCategories {
			out = append(out, Category(c))
		}
		return out
	case Debit:
		out := make([]Category, 0, len(DebitCategories))
		for _, c := range DebitCategories {
			out = append(out, Category(c))
		}
		return out
	}
	return nil
}

// AllCategories returns every category of the taxonomy once.
func AllCategories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, c := range append(CategoriesFor(Debit), CategoriesFor(Credit)...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// IsKnown reports whether c belongs to either side of the taxonomy.
func (c Category) IsKnown() bool {
	for _, k := range AllCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// AllowedFor reports whether c may be stored on a transaction of type t.
func (c Category) AllowedFor(t TransactionType) bool {
	for _, k := range CategoriesFor(t) {
		if c == k {
			return true
		}
	}
	return false
}

// ValidateCategory gates a category by transaction direction.
func ValidateCategory(t TransactionType, c Category) error {
	if t != Debit && t != Credit {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	if !c.AllowedFor(t) {
		return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, c, t)
	}
	return nil
}

// ParseCategory normalizes s and checks it against the taxonomy side for t.
func ParseCategory(t TransactionType, s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if err := ValidateCategory(t, c); err != nil {
		return "", err
	}
	return c, nil
}

// DefaultColor is used for categories missing from CategoryColors.
const DefaultColor = "#000000"

// CategoryColors maps each category to its chart color.
var CategoryColors = map[Category]string{
	"food":        "#FF6B6B",
	"grocery":     "#FFA94D",
	"bills":       "#FFD43B",
	"shopping":    "#6BCB77",
	"travel":      "#4D96FF",
	"fuel":        "#845EC2",
	"rent":        "#FF9671",
	"salary":      "#20C997",
	"investments": "#15AABF",
	"refund":      "#F783AC",
	"other":       "#868E96",
}

// Color resolves the display color of c.
func (c Category) Color() string {
	if col, ok := CategoryColors[c]; ok {
		return col
	}
	return DefaultColor
}
