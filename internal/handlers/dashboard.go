package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pacadvocate/legtracker-go/internal/db"
)

type DashboardHandler struct {
	db     *db.Database
	logger *slog.Logger
}

func NewDashboardHandler(database *db.Database, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{db: database, logger: logger}
}

// GetStats handles GET /api/stats.
func (dh *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := dh.db.GetStats(r.Context())
	if err != nil {
		dh.logger.Error("fetch stats failed", "err", err)
		jsonError(w, "failed to fetch stats", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetCategoryDistribution handles GET /api/analytics/category-distribution.
func (dh *DashboardHandler) GetCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := dh.db.GetCategoryDistribution(r.Context())
	if err != nil {
		jsonError(w, "failed to fetch category distribution", http.StatusInternalServerError)
		return
	}
	if dist == nil {
		dist = []*db.CategoryCount{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dist)
}

// GetPriorityCounts handles GET /api/analytics/priorities.
func (dh *DashboardHandler) GetPriorityCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := dh.db.GetPriorityCounts(r.Context())
	if err != nil {
		jsonError(w, "failed to fetch priority counts", http.StatusInternalServerError)
		return
	}
	if counts == nil {
		counts = []*db.PriorityCount{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

// GetFinancialSummary handles GET /api/analytics/financial.
func (dh *DashboardHandler) GetFinancialSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := dh.db.GetFinancialSummary(r.Context())
	if err != nil {
		jsonError(w, "failed to fetch financial summary", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// GetRuns handles GET /api/runs.
func (dh *DashboardHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	runs, err := dh.db.GetRecentAnalysisRuns(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to fetch runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*db.AnalysisRun{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
