// Package api wires the HTTP surface: routes, middleware and the server lifecycle.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/api/handlers"
	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/insights"
	"github.com/berlinbruno/money-trail/internal/service"
)

// Deps are the services behind the API. Sync may be nil.
type Deps struct {
	Engine        *insights.Engine
	Transactions  *repository.TransactionRepo
	Ledger        *service.LedgerService
	Reconciler    *service.Reconciler
	Alerts        *service.AlertService
	Notifications *service.NotificationService
	Sync          handlers.Syncer
	Now           func() time.Time
}

// NewRouter registers every route on a gorilla/mux router wrapped in the standard
// middleware chain.
func NewRouter(d Deps, log zerolog.Logger) http.Handler {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	ins := handlers.NewInsightsHandler(d.Engine, d.Transactions, log)
	txs := handlers.NewTransactionsHandler(d.Ledger, d.Reconciler, log)
	alerts := handlers.NewAlertsHandler(d.Alerts, log)
	notes := handlers.NewNotificationsHandler(d.Notifications, log)
	sync := handlers.NewSyncHandler(d.Sync, log)

	r := mux.NewRouter()
	r.Use(middleware.Route)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", ins.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/insights", ins.Insights).Methods(http.MethodGet)
	api.HandleFunc("/alerts/progress", ins.AlertProgress).Methods(http.MethodGet)

	api.HandleFunc("/transactions", txs.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", txs.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/approve-all", txs.ApproveAll).Methods(http.MethodPost)
	api.HandleFunc("/transactions/duplicates", txs.Duplicates).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", txs.UpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id:[0-9]+}", txs.DeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/{id:[0-9]+}/approve", txs.ApproveTransaction).Methods(http.MethodPost)

	api.HandleFunc("/alerts", alerts.ListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", alerts.CreateAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id:[0-9]+}", alerts.UpdateAlert).Methods(http.MethodPut)
	api.HandleFunc("/alerts/{id:[0-9]+}", alerts.DeleteAlert).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notes.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/generate", notes.Generate).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", notes.MarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}/unread", notes.MarkUnread).Methods(http.MethodPost)

	api.HandleFunc("/sync", sync.Sync).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.AccessLog(log)(
				middleware.CORS(r),
			),
		),
	)
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
