package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pacadvocate/legtracker-go/internal/classify"
	"github.com/pacadvocate/legtracker-go/internal/db"
	"github.com/pacadvocate/legtracker-go/internal/finance"
	"github.com/pacadvocate/legtracker-go/internal/plan"
)

type BillHandler struct {
	db         *db.Database
	classifier *classify.Classifier
	planner    *plan.Generator
	logger     *slog.Logger
}

func NewBillHandler(database *db.Database, classifier *classify.Classifier, planner *plan.Generator, logger *slog.Logger) *BillHandler {
	return &BillHandler{db: database, classifier: classifier, planner: planner, logger: logger}
}

type createBillRequest struct {
	BillNumber     string `json:"bill_number"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	FullText       string `json:"full_text"`
	Source         string `json:"source"`
	StateOrFederal string `json:"state_or_federal"`
	Status         string `json:"status"`
	Sponsor        string `json:"sponsor"`
	Chamber        string `json:"chamber"`
}

// CreateBill handles POST /api/bills. Existing bill numbers are refreshed
// rather than duplicated.
func (bh *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BillNumber == "" || req.Title == "" {
		jsonError(w, "bill_number and title are required", http.StatusBadRequest)
		return
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}
	stateOrFederal := req.StateOrFederal
	if stateOrFederal == "" {
		stateOrFederal = "federal"
	}

	bill := &db.Bill{
		BillNumber:     req.BillNumber,
		Title:          req.Title,
		Summary:        req.Summary,
		FullText:       req.FullText,
		Source:         source,
		StateOrFederal: stateOrFederal,
		Status:         req.Status,
		Sponsor:        optional(req.Sponsor),
		Chamber:        optional(req.Chamber),
		IsActive:       true,
	}

	stored, err := bh.db.UpsertBill(r.Context(), bill)
	if err != nil {
		bh.logger.Error("create bill failed", "bill", req.BillNumber, "err", err)
		jsonError(w, "could not store bill", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(stored)
}

// ListBills handles GET /api/bills with optional min_score, category,
// priority, active, unscored, limit and offset query parameters.
func (bh *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := db.BillFilter{
		Category: q.Get("category"),
		Priority: q.Get("priority"),
	}
	if v := q.Get("min_score"); v != "" {
		if score, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinScore = score
		}
	}
	if v := q.Get("active"); v == "true" || v == "1" {
		filter.ActiveOnly = true
	}
	if v := q.Get("unscored"); v == "true" || v == "1" {
		filter.Unscored = true
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	bills, err := bh.db.ListBills(r.Context(), filter)
	if err != nil {
		bh.logger.Error("list bills failed", "err", err)
		jsonError(w, "failed to fetch bills", http.StatusInternalServerError)
		return
	}
	if bills == nil {
		bills = []*db.Bill{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bills)
}

// GetBill handles GET /api/bills/{id}.
func (bh *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := bh.lookupBill(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bill)
}

// DeleteBill handles DELETE /api/bills/{id}.
func (bh *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}
	if err := bh.db.DeleteBill(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			jsonError(w, "bill not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete bill", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ScoreBill handles POST /api/bills/{id}/score: runs the classifier and the
// financial estimator on demand and persists both.
func (bh *BillHandler) ScoreBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := bh.lookupBill(w, r)
	if !ok {
		return
	}

	res := bh.classifier.Analyze(bill.Title, bill.Summary, bill.FullText)
	if err := bh.db.UpdateBillScore(r.Context(), bill.ID, &res); err != nil {
		bh.logger.Error("score update failed", "bill", bill.BillNumber, "err", err)
		jsonError(w, "failed to store score", http.StatusInternalServerError)
		return
	}

	impact := finance.EstimateBillImpact(bill.Title, bill.Summary, finance.FacilityParams{})
	if err := bh.db.UpdateBillFinancials(r.Context(), bill.ID, &impact); err != nil {
		bh.logger.Warn("financial update failed", "bill", bill.BillNumber, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"bill_id":          bill.ID,
		"classification":   res,
		"financial_impact": impact,
	})
}

// GetFinancialImpact handles GET /api/bills/{id}/financial-impact. Facility
// parameters may be overridden via bed_count, occupancy_rate, medicare_mix
// and medicaid_mix query parameters.
func (bh *BillHandler) GetFinancialImpact(w http.ResponseWriter, r *http.Request) {
	bill, ok := bh.lookupBill(w, r)
	if !ok {
		return
	}

	facility := finance.DefaultFacility()
	q := r.URL.Query()
	if v := q.Get("bed_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			facility.BedCount = n
		}
	}
	if v := q.Get("occupancy_rate"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 100 {
			facility.OccupancyRate = f
		}
	}
	if v := q.Get("medicare_mix"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			facility.MedicareMix = f
		}
	}
	if v := q.Get("medicaid_mix"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			facility.MedicaidMix = f
		}
	}

	impact := finance.EstimateBillImpact(bill.Title, bill.Summary, facility)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(impact)
}

// GetImplementationPlan handles GET /api/bills/{id}/implementation-plan.
// Complexity and timeline may be overridden via query parameters.
func (bh *BillHandler) GetImplementationPlan(w http.ResponseWriter, r *http.Request) {
	bill, ok := bh.lookupBill(w, r)
	if !ok {
		return
	}

	req := plan.Request{
		ImplementationType: planType(bill),
		Complexity:         r.URL.Query().Get("complexity"),
		Timeline:           r.URL.Query().Get("timeline"),
	}
	if req.Complexity == "" {
		req.Complexity = plan.ComplexityModerate
	}

	p := bh.planner.Generate(req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// planType maps a bill's classification onto an implementation plan type.
func planType(bill *db.Bill) string {
	categories := ""
	if bill.PrimaryCategory != nil {
		categories = *bill.PrimaryCategory
	}
	if bill.SecondaryCategory != nil {
		categories += " " + *bill.SecondaryCategory
	}

	switch {
	case strings.Contains(categories, "quality"):
		return plan.TypeQuality
	case strings.Contains(categories, "workforce"):
		return plan.TypeStaffing
	case strings.Contains(categories, "regulatory"):
		return plan.TypeSystems
	}
	return plan.TypePayment
}

func (bh *BillHandler) lookupBill(w http.ResponseWriter, r *http.Request) (*db.Bill, bool) {
	id, ok := billID(w, r)
	if !ok {
		return nil, false
	}
	bill, err := bh.db.GetBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			jsonError(w, "bill not found", http.StatusNotFound)
			return nil, false
		}
		bh.logger.Error("get bill failed", "id", id, "err", err)
		jsonError(w, "failed to fetch bill", http.StatusInternalServerError)
		return nil, false
	}
	return bill, true
}

func billID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid bill ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
