package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/dbtest"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/insights"
	"github.com/berlinbruno/money-trail/internal/logger"
	"github.com/berlinbruno/money-trail/internal/service"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// Wednesday 20 August 2025, noon IST.
var fixedNow = time.Date(2025, time.August, 20, 12, 0, 0, 0, ist)

type stubSyncer struct {
	err error
}

func (s stubSyncer) RunSync(context.Context) (service.SyncResult, error) {
	if s.err != nil {
		return service.SyncResult{RunID: "r1"}, s.err
	}
	return service.SyncResult{RunID: "r1", Fetched: 3, Skipped: 1, Inserted: make([]repository.Transaction, 2)}, nil
}

func newServer(t *testing.T, syncer stubSyncer) http.Handler {
	t.Helper()
	db := dbtest.Open(t)
	now := func() time.Time { return fixedNow }
	engine := insights.New(db, ist)
	engine.Now = now
	txRepo := repository.NewTransactionRepo(db)
	return NewRouter(Deps{
		Engine:        engine,
		Transactions:  txRepo,
		Ledger:        &service.LedgerService{Transactions: txRepo, Now: now, Location: ist, Log: zerolog.Nop()},
		Reconciler:    &service.Reconciler{Transactions: txRepo},
		Alerts:        &service.AlertService{Alerts: repository.NewAlertRepo(db), Engine: engine},
		Notifications: &service.NotificationService{Notifications: repository.NewNotificationRepo(db), Engine: engine, Now: now},
		Sync:          syncer,
		Now:           now,
	}, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	code, body := do(t, newServer(t, stubSyncer{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "2025-08-20T12:00:00+05:30", body["time"])
}

func TestTransactionLifecycle(t *testing.T) {
	t.Parallel()

	h := newServer(t, stubSyncer{})

	code, body := do(t, h, http.MethodPost, "/api/transactions",
		`{"type":"debit","title":"Dominos","amount":"450","mode":"upi","category":"food"}`)
	require.Equal(t, http.StatusCreated, code)
	id := int(body["id"].(float64))
	require.Equal(t, "food", body["category"])
	require.Equal(t, false, body["pendingApproval"])

	code, body = do(t, h, http.MethodPost, "/api/transactions",
		`{"type":"credit","title":"Salary","amount":50000,"category":"food"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body["error"], "invalid category")

	code, _ = do(t, h, http.MethodPost, "/api/transactions", `{"type":"debit","title":"x","amount":"0"}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/api/transactions", `not json`)
	require.Equal(t, http.StatusBadRequest, code)

	path := "/api/transactions/" + itoa(id)
	code, body = do(t, h, http.MethodPut, path, `{"type":"debit","title":"Dominos Pizza","amount":"500","category":"food"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "500", body["amount"])

	code, _ = do(t, h, http.MethodPost, path+"/approve", `{"approved":false}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodGet, "/api/transactions?pending=true", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["count"])

	code, body = do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["pendingCount"])

	code, body = do(t, h, http.MethodPost, "/api/transactions/approve-all", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["approved"])

	code, body = do(t, h, http.MethodGet, "/api/transactions?type=debit&preset=Today&sort=amount&order=asc", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["count"])

	code, _ = do(t, h, http.MethodGet, "/api/transactions?type=transfer", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodGet, "/api/transactions?start=yesterday", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, h, http.MethodGet, "/api/transactions/duplicates", "")
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["duplicates"])

	code, _ = do(t, h, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, code)
	code, body = do(t, h, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "record not found", body["error"])
}

func TestDashboardAndInsights(t *testing.T) {
	t.Parallel()

	h := newServer(t, stubSyncer{})
	for _, body := range []string{
		`{"type":"credit","title":"Salary","amount":"50000","category":"salary","date":"2025-08-01T10:00:00+05:30"}`,
		`{"type":"debit","title":"Dominos","amount":"1000","category":"food","date":"2025-08-18T20:00:00+05:30"}`,
		`{"type":"debit","title":"Swiggy","amount":"800","category":"food","date":"2025-07-05T20:00:00+05:30"}`,
	} {
		code, _ := do(t, h, http.MethodPost, "/api/transactions", body)
		require.Equal(t, http.StatusCreated, code)
	}

	code, body := do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	kpi := body["kpi"].(map[string]interface{})
	require.Equal(t, "50000", kpi["totalIncome"])
	require.Equal(t, "1000", kpi["totalExpense"])
	require.Equal(t, "49000", kpi["totalSavings"])
	require.Len(t, body["recent"], 3)
	devs := body["deviations"].([]interface{})
	require.Len(t, devs, 1)
	require.Equal(t, "food", devs[0].(map[string]interface{})["label"])

	code, body = do(t, h, http.MethodGet, "/api/insights?period=weekly", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Weekly", body["period"])
	require.Len(t, body["trend"], 7)
	summary := body["summary"].(map[string]interface{})
	require.Equal(t, "food", summary["highestExpenseCategory"])

	code, body = do(t, h, http.MethodGet, "/api/insights", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Monthly", body["period"])
	require.Len(t, body["trend"], 4)

	code, _ = do(t, h, http.MethodGet, "/api/insights?period=hourly", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAlertsAndNotifications(t *testing.T) {
	t.Parallel()

	h := newServer(t, stubSyncer{})

	code, body := do(t, h, http.MethodPost, "/api/alerts", `{"type":"spending","frequency":"monthly","category":"food","threshold":"1000"}`)
	require.Equal(t, http.StatusCreated, code)
	alertID := int(body["id"].(float64))

	code, _ = do(t, h, http.MethodPost, "/api/alerts", `{"type":"spending","frequency":"monthly","category":"food","threshold":"10"}`)
	require.Equal(t, http.StatusConflict, code)

	code, _ = do(t, h, http.MethodPost, "/api/transactions", `{"type":"debit","title":"Dominos","amount":"900","category":"food"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body = do(t, h, http.MethodGet, "/api/alerts?type=spending", "")
	require.Equal(t, http.StatusOK, code)
	list := body["alerts"].([]interface{})
	require.Len(t, list, 1)
	require.Equal(t, "900", list[0].(map[string]interface{})["currentValue"])

	code, _ = do(t, h, http.MethodGet, "/api/alerts?frequency=daily", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, h, http.MethodGet, "/api/alerts/progress", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0.9", body["usageRatio"])

	code, body = do(t, h, http.MethodPost, "/api/notifications/generate", "")
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, float64(1), body["count"])
	notes := body["notifications"].([]interface{})
	noteID := int(notes[0].(map[string]interface{})["id"].(float64))
	require.Equal(t, "high", notes[0].(map[string]interface{})["severity"])

	code, _ = do(t, h, http.MethodPost, "/api/notifications/"+itoa(noteID)+"/read", "")
	require.Equal(t, http.StatusOK, code)
	code, body = do(t, h, http.MethodGet, "/api/notifications?unread=true", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(0), body["count"])
	code, _ = do(t, h, http.MethodPost, "/api/notifications/"+itoa(noteID)+"/unread", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodPost, "/api/notifications/9999/read", "")
	require.Equal(t, http.StatusNotFound, code)

	code, body = do(t, h, http.MethodPut, "/api/alerts/"+itoa(alertID), `{"category":"grocery","threshold":"2000"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "grocery", body["category"])

	code, _ = do(t, h, http.MethodDelete, "/api/alerts/"+itoa(alertID), "")
	require.Equal(t, http.StatusNoContent, code)
}

func TestSyncEndpoint(t *testing.T) {
	t.Parallel()

	code, body := do(t, newServer(t, stubSyncer{}), http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "r1", body["runId"])
	require.Equal(t, float64(2), body["inserted"])
	require.Equal(t, float64(1), body["skipped"])

	code, _ = do(t, newServer(t, stubSyncer{err: errors.New("no inbox")}), http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusBadGateway, code)

	code, _ = do(t, newServer(t, stubSyncer{}), http.MethodGet, "/api/sync", "")
	require.Equal(t, http.StatusMethodNotAllowed, code)

	code, _ = do(t, newServer(t, stubSyncer{}), http.MethodGet, "/api/nowhere", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestSyncEndpointReportsRunID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewRouter(Deps{Sync: stubSyncer{}, Now: func() time.Time { return fixedNow }}, logger.NewWithWriter(&buf))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "r1", rec.Header().Get(middleware.HeaderSyncRunID))
	require.Contains(t, buf.String(), `"route":"/api/sync"`)
	require.Contains(t, buf.String(), `"run_id":"r1"`)
	require.Contains(t, buf.String(), `"inserted":"2"`)

	buf.Reset()
	h = NewRouter(Deps{Sync: stubSyncer{err: errors.New("no inbox")}}, logger.NewWithWriter(&buf))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "r1", rec.Header().Get(middleware.HeaderSyncRunID))
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), `"run_id":"r1"`)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
