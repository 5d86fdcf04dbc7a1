package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/insights"
	"github.com/berlinbruno/money-trail/internal/logger"
)

// InsightsHandler serves the read-only aggregation endpoints.
type InsightsHandler struct {
	engine       *insights.Engine
	transactions *repository.TransactionRepo
	log          zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(engine *insights.Engine, transactions *repository.TransactionRepo, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{engine: engine, transactions: transactions, log: log}
}

type dashboardResponse struct {
	KPI          insights.KPI             `json:"kpi"`
	Recent       []repository.Transaction `json:"recent"`
	Deviations   []insights.Deviation     `json:"deviations"`
	PendingCount int                      `json:"pendingCount"`
}

// Dashboard handles GET /api/dashboard. Each section degrades to its zero value when
// its query fails.
func (h *InsightsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	resp := dashboardResponse{
		KPI:        insights.KPI{Income: decimal.Zero, Expense: decimal.Zero, Savings: decimal.Zero},
		Recent:     []repository.Transaction{},
		Deviations: []insights.Deviation{},
	}

	if kpi, err := h.engine.MonthlyKPI(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to load monthly KPI")
	} else {
		resp.KPI = kpi
	}
	if recent, err := h.engine.RecentTransactions(ctx, insights.DefaultRecentLimit); err != nil {
		log.Error().Err(err).Msg("Failed to load recent transactions")
	} else if recent != nil {
		resp.Recent = recent
	}
	if devs, err := h.engine.TopDeviations(ctx, insights.DefaultDeviationLimit); err != nil {
		log.Error().Err(err).Msg("Failed to load deviations")
	} else if devs != nil {
		resp.Deviations = devs
	}
	if n, err := h.transactions.CountPending(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to count pending transactions")
	} else {
		resp.PendingCount = n
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

type insightsResponse struct {
	Period    domain.Period         `json:"period"`
	Trend     []insights.TrendPoint `json:"trend"`
	Totals    insights.Totals       `json:"totals"`
	Summary   insights.Summary      `json:"summary"`
	Breakdown insights.Breakdown    `json:"breakdown"`
}

// Insights handles GET /api/insights?period=Monthly.
func (h *InsightsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(domain.PeriodMonthly)
	}
	period, err := domain.ParsePeriod(raw)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := insightsResponse{Period: period, Trend: []insights.TrendPoint{}}
	if trend, err := h.engine.Trend(ctx, period); err != nil {
		log.Error().Err(err).Msg("Failed to load trend")
	} else {
		resp.Trend = trend
	}
	resp.Totals = insights.SeriesTotals(resp.Trend)
	if sum, err := h.engine.Summary(ctx, period); err != nil {
		log.Error().Err(err).Msg("Failed to load summary")
		resp.Summary = insights.Summary{HighestExpenseCategory: "N/A"}
	} else {
		resp.Summary = sum
	}
	if b, err := h.engine.CategoryBreakdown(ctx, period); err != nil {
		log.Error().Err(err).Msg("Failed to load category breakdown")
	} else {
		resp.Breakdown = b
	}
	if resp.Breakdown.Income == nil {
		resp.Breakdown.Income = []insights.CategoryTotal{}
	}
	if resp.Breakdown.Expense == nil {
		resp.Breakdown.Expense = []insights.CategoryTotal{}
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// AlertProgress handles GET /api/alerts/progress.
func (h *InsightsHandler) AlertProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.engine.AlertProgress(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute alert progress")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute alert progress")
		return
	}
	if progress == nil {
		progress = []insights.AlertProgress{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":     progress,
		"usageRatio": insights.UsageRatio(progress),
	})
}
