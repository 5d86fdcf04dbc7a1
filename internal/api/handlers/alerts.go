package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/service"
)

// AlertsHandler handles alert definition endpoints.
type AlertsHandler struct {
	alerts *service.AlertService
	log    zerolog.Logger
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(alerts *service.AlertService, log zerolog.Logger) *AlertsHandler {
	return &AlertsHandler{alerts: alerts, log: log}
}

// ListAlerts handles GET /api/alerts?type=&frequency=.
func (h *AlertsHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	var f repository.AlertFilters
	if v := r.URL.Query().Get("type"); v != "" {
		t, err := domain.ParseAlertType(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Type = t
	}
	if v := r.URL.Query().Get("frequency"); v != "" {
		freq, err := domain.ParseFrequency(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Frequency = freq
	}
	alerts, err := h.alerts.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []repository.Alert{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// CreateAlert handles POST /api/alerts.
func (h *AlertsHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var in service.AlertInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := h.alerts.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create alert")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, a)
}

// UpdateAlert handles PUT /api/alerts/{id} with {"category", "threshold"}.
func (h *AlertsHandler) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid alert id")
		return
	}
	var req struct {
		Category  domain.Category `json:"category"`
		Threshold decimal.Decimal `json:"threshold"`
	}
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := h.alerts.Update(r.Context(), id, req.Category, req.Threshold)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update alert")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, a)
}

// DeleteAlert handles DELETE /api/alerts/{id}.
func (h *AlertsHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid alert id")
		return
	}
	if err := h.alerts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete alert")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
