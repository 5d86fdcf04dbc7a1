package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/money-trail/internal/service"
	"github.com/berlinbruno/money-trail/internal/sms"
)

const exportJSON = `[
  {"_id": "1", "address": "VM-HDFCBK", "body": "Rs.450 debited from a/c XX1234 for Dominos", "date": 1755500000000},
  {"_id": "2", "address": "MOM", "body": "Call me when free", "date": 1755600000000},
  {"_id": "3", "address": "AD-ICICIB", "body": "INR 25000 credited to a/c XX9876", "date": 1755700000000},
  {"_id": "4", "address": "VK-PAYTM", "body": "Paid Rs.120 via UPI", "date": 1755400000000}
]`

func writeInbox(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceJSON(t *testing.T) {
	t.Parallel()

	src := &FileSource{Path: writeInbox(t, "inbox.json", exportJSON)}
	msgs, err := src.ListInboxMessages(context.Background(), service.Filter{BodyPattern: sms.FinancePattern})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "3", msgs[0].ID)
	require.Equal(t, "1", msgs[1].ID)
	require.Equal(t, "4", msgs[2].ID)
	require.Equal(t, "AD-ICICIB", msgs[0].Sender)
	require.Equal(t, int64(1755700000000), msgs[0].TimestampMillis)
}

func TestSelectWindowAndLimit(t *testing.T) {
	t.Parallel()

	msgs, err := Decode([]byte(exportJSON))
	require.NoError(t, err)

	got, err := Select(msgs, service.Filter{
		After: time.UnixMilli(1755400000000),
		Until: time.UnixMilli(1755600000000),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
	require.Equal(t, "1", got[1].ID)

	got, err = Select(msgs, service.Filter{MaxCount: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].ID)

	_, err = Select(msgs, service.Filter{BodyPattern: "("})
	require.Error(t, err)
}

func TestFileSourceYAMLAndMissing(t *testing.T) {
	t.Parallel()

	src := &FileSource{Path: writeInbox(t, "inbox.yaml", `
- address: VM-SBIINB
  body: Rs 999 debited for Amazon order
  date: 1755500000000
`)}
	msgs, err := src.ListInboxMessages(context.Background(), service.Filter{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "VM-SBIINB", msgs[0].Sender)

	missing := &FileSource{Path: filepath.Join(t.TempDir(), "none.json")}
	msgs, err = missing.ListInboxMessages(context.Background(), service.Filter{})
	require.NoError(t, err)
	require.Empty(t, msgs)

	bad := &FileSource{Path: writeInbox(t, "bad.json", `{"not": "a list"}`)}
	_, err = bad.ListInboxMessages(context.Background(), service.Filter{})
	require.Error(t, err)
}
