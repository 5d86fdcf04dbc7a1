package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	c := Default()
	cases := []struct {
		text string
		want domain.Category
	}{
		{"Paid at Dominos Pizza", "food"},
		{"BIGBASKET order", "grocery"},
		{"Electricity bill payment", "bills"},
		{"Amazon purchase", "shopping"},
		{"Uber trip", "travel"},
		{"Shell petrol pump", "fuel"},
		{"Monthly RENT", "rent"},
		{"Salary for August", "salary"},
		{"SIP instalment", "investments"},
		{"Refund processed", "refund"},
		{"random merchant", "other"},
		{"Rs.1200 debited from your account for UPI txn", "other"},
		{"", "other"},
		// "gas" sits in bills, which is evaluated before fuel.
		{"Gas station", "bills"},
		// "store" (grocery) is evaluated before "shopping".
		{"online store shopping", "grocery"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.Categorize(tc.text), tc.text)
	}
}

func TestForType(t *testing.T) {
	t.Parallel()

	c := Default()
	require.Equal(t, domain.Other, c.ForType("salary credited", domain.Debit))
	require.Equal(t, domain.Category("salary"), c.ForType("salary credited", domain.Credit))
	require.Equal(t, domain.Other, c.ForType("pizza", domain.Credit))
	require.Equal(t, domain.Category("food"), c.ForType("pizza", domain.Debit))

	// a debit-only hit earlier in the table does not hide a later credit hit
	require.Equal(t, domain.Category("shopping"), c.Categorize("Amazon refund"))
	require.Equal(t, domain.Category("refund"), c.ForType("Amazon refund", domain.Credit))
	require.Equal(t, domain.Category("shopping"), c.ForType("Amazon refund", domain.Debit))
	require.Equal(t, domain.Category("refund"), c.ForType("refund via PhonePe", domain.Credit))
	require.Equal(t, domain.Category("bills"), c.ForType("refund via PhonePe", domain.Debit))
}

func TestRulesOrder(t *testing.T) {
	t.Parallel()

	rules := Default().Rules()
	require.Len(t, rules, 10)
	require.Equal(t, domain.Category("food"), rules[0].Category)
	require.Equal(t, domain.Category("refund"), rules[9].Category)

	rules[0].Keywords[0] = "mutated"
	require.Equal(t, "restaurant", Default().Rules()[0].Keywords[0])
}

func TestNewRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := New([]byte("- category: gadgets\n  keywords: [phone]\n"))
	require.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = New([]byte("- category: food\n  keywords: []\n"))
	require.Error(t, err)

	_, err = New([]byte("- category: food\n  keywords: ['  ']\n"))
	require.Error(t, err)

	_, err = New([]byte("[]"))
	require.Error(t, err)

	_, err = New([]byte("not: [valid"))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- category: travel\n  keywords: [Metro]\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, domain.Category("travel"), c.Categorize("METRO card recharge"))
	require.Equal(t, domain.Other, c.Categorize("pizza"))

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	require.Len(t, def.Rules(), 10)
}
