package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/money-trail/internal/config"
	"github.com/berlinbruno/money-trail/internal/database/repository"
)

const inboxJSON = `[
  {"_id": "1", "address": "VM-HDFCBK", "body": "Rs.450 debited from a/c XX1234 for Dominos order. Avl Bal 12000", "date": 1755508500000},
  {"_id": "2", "address": "VK-OTPSVC", "body": "Your OTP is 482913. Do not share it with anyone.", "date": 1755601200000}
]`

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	inbox := filepath.Join(dir, "inbox.json")
	require.NoError(t, os.WriteFile(inbox, []byte(inboxJSON), 0o600))

	cfg := config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "data", "moneytrail.db")},
		UI:       config.UIConfig{CurrencySymbol: "₹", Timezone: "UTC"},
		Sync:     config.SyncConfig{InboxPath: inbox, MaxCount: 200, Schedule: "0 */2 * * *", DefaultAccount: "default"},
	}
	var out bytes.Buffer
	a, err := newApp(cfg, zerolog.Nop(), &out)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a, &out
}

func TestCommands(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, out := newTestApp(t)

	require.NoError(t, a.run(ctx, "sync", nil))
	require.Contains(t, out.String(), "fetched 1, inserted 1, skipped 0, errors 0")
	require.Contains(t, out.String(), "watermark advanced to")

	out.Reset()
	require.NoError(t, a.run(ctx, "sync", nil))
	require.Contains(t, out.String(), "inserted 0")

	pending, err := a.ledger.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "VM-HDFCBK", pending[0].Title)

	out.Reset()
	require.NoError(t, a.run(ctx, "seed", nil))
	require.Contains(t, out.String(), "nothing seeded")

	xlsx := filepath.Join(t.TempDir(), "ledger.xlsx")
	out.Reset()
	require.NoError(t, a.run(ctx, "export", []string{"-o", xlsx}))
	require.Contains(t, out.String(), "exported 1 transactions")
	_, err = os.Stat(xlsx)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, a.run(ctx, "report", []string{"-period", "weekly"}))
	require.Contains(t, out.String(), "Weekly Trend")
	require.Error(t, a.run(ctx, "report", []string{"-period", "hourly"}))

	out.Reset()
	require.NoError(t, a.run(ctx, "notify", nil))
	require.Contains(t, out.String(), "0 notifications generated")

	require.Error(t, a.run(ctx, "reset", nil))
	require.NoError(t, a.run(ctx, "reset", []string{"-yes"}))
	pending, err = a.ledger.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	require.ErrorIs(t, a.run(ctx, "frobnicate", nil), errUnknownCommand)
}

func TestSeedCommand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, out := newTestApp(t)

	require.NoError(t, a.run(ctx, "seed", nil))
	require.Contains(t, out.String(), "demo data loaded")

	txs, err := a.transactions.List(ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.NotEmpty(t, txs)
}
