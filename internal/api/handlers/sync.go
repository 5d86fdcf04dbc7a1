package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/service"
)

// Syncer runs one inbox sync.
type Syncer interface {
	RunSync(ctx context.Context) (service.SyncResult, error)
}

// SyncHandler triggers on-demand syncs.
type SyncHandler struct {
	sync Syncer
	log  zerolog.Logger
}

// NewSyncHandler creates a new sync handler. A nil syncer disables the endpoint.
func NewSyncHandler(sync Syncer, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, log: log}
}

type syncResponse struct {
	RunID     string    `json:"runId"`
	Fetched   int       `json:"fetched"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Errors    []string  `json:"errors"`
	Watermark time.Time `json:"watermark"`
}

// Sync handles POST /api/sync.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Sync is not configured")
		return
	}
	res, err := h.sync.RunSync(r.Context())
	if res.RunID != "" {
		w.Header().Set(middleware.HeaderSyncRunID, res.RunID)
		middleware.Annotate(r.Context(), "run_id", res.RunID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("run_id", res.RunID).Msg("Sync failed")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to read inbox")
		return
	}
	resp := syncResponse{
		RunID:     res.RunID,
		Fetched:   res.Fetched,
		Inserted:  len(res.Inserted),
		Skipped:   res.Skipped,
		Errors:    []string{},
		Watermark: res.Watermark,
	}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	middleware.Annotate(r.Context(), "inserted", strconv.Itoa(resp.Inserted))
	middleware.WriteJSON(w, http.StatusOK, resp)
}
