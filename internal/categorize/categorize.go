// Package categorize assigns a category to free text using an ordered keyword table.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/berlinbruno/money-trail/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// Rule maps a list of keywords to a category.
type Rule struct {
	Category domain.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// Categorizer holds the rules in evaluation order.
type Categorizer struct {
	rules []Rule
}

// New builds a Categorizer from a YAML sequence of rules. The sequence order is the
// evaluation order.
func New(data []byte) (*Categorizer, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse categorizer rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("parse categorizer rules: no rules")
	}
	for i, r := range rules {
		if !r.Category.IsKnown() {
			return nil, fmt.Errorf("rule %d: %w: %q", i, domain.ErrInvalidCategory, r.Category)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, r.Category)
		}
		for j, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("rule %d (%s): empty keyword", i, r.Category)
			}
			rules[i].Keywords[j] = kw
		}
	}
	return &Categorizer{rules: rules}, nil
}

// Default returns the built-in table.
func Default() *Categorizer {
	c, err := New(embeddedRules)
	if err != nil {
		panic(fmt.Sprintf("embedded categorizer rules: %v", err))
	}
	return c
}

// LoadFromFile reads a rules table from path.
func LoadFromFile(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categorizer rules: %w", err)
	}
	c, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("load categorizer rules from %q: %w", path, err)
	}
	return c, nil
}

// Load returns the table at path, or the built-in one when path is empty.
func Load(path string) (*Categorizer, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// Categorize returns the category of the first rule with a keyword contained in text,
// ignoring case. No match yields domain.Other.
func (c *Categorizer) Categorize(text string) domain.Category {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return domain.Other
}

// ForType is Categorize restricted to the categories allowed for t: rules for the
// other direction are passed over, so "Amazon refund" on a credit is a refund and
// not shopping. No allowed hit yields domain.Other.
func (c *Categorizer) ForType(text string, t domain.TransactionType) domain.Category {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if !r.Category.AllowedFor(t) {
			continue
		}
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return domain.Other
}

// Rules returns a copy of the table in evaluation order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
