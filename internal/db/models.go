package db

import "time"

// Bill is one tracked piece of legislation plus its latest analysis results.
// Analysis columns are nil until the bill has been scored.
type Bill struct {
	ID             int64      `json:"id"`
	BillNumber     string     `json:"bill_number"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary"`
	FullText       string     `json:"full_text,omitempty"`
	Source         string     `json:"source"`
	StateOrFederal string     `json:"state_or_federal"`
	Status         string     `json:"status"`
	Sponsor        *string    `json:"sponsor,omitempty"`
	Chamber        *string    `json:"chamber,omitempty"`
	IntroducedDate *time.Time `json:"introduced_date,omitempty"`
	LastActionDate *time.Time `json:"last_action_date,omitempty"`
	IsActive       bool       `json:"is_active"`

	RelevanceScore     *float64   `json:"relevance_score,omitempty"`
	PrimaryCategory    *string    `json:"primary_category,omitempty"`
	SecondaryCategory  *string    `json:"secondary_category,omitempty"`
	MAImpact           bool       `json:"ma_impact"`
	IndirectImpact     bool       `json:"indirect_impact"`
	MonitoringPriority *string    `json:"monitoring_priority,omitempty"`
	Confidence         *float64   `json:"confidence,omitempty"`
	Explanation        *string    `json:"explanation,omitempty"`
	RecommendedActions []string   `json:"recommended_actions"`
	ScoredAt           *time.Time `json:"scored_at,omitempty"`

	PerBedDailyImpact         *float64 `json:"per_bed_daily_impact,omitempty"`
	AnnualFacilityImpact      *float64 `json:"annual_facility_impact,omitempty"`
	MedicareRateChangePercent *float64 `json:"medicare_rate_change_percent,omitempty"`
	MedicaidRateChangePercent *float64 `json:"medicaid_rate_change_percent,omitempty"`
	FinancialImpactCategory   *string  `json:"financial_impact_category,omitempty"`
	FinancialSummary          *string  `json:"financial_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillFilter narrows ListBills. Zero values mean "no constraint".
type BillFilter struct {
	MinScore   float64
	Category   string
	Priority   string
	ActiveOnly bool
	Unscored   bool
	Limit      int
	Offset     int
}

// AnalysisRun is one batch pass of the analyzer over unscored bills.
type AnalysisRun struct {
	ID             int64      `json:"id"`
	Trigger        string     `json:"trigger"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	BillsProcessed int        `json:"bills_processed"`
	BillsScored    int        `json:"bills_scored"`
	BillsFailed    int        `json:"bills_failed"`
	Notes          *string    `json:"notes,omitempty"`
}

// Stats is the dashboard headline row.
type Stats struct {
	TotalBills      int64    `json:"total_bills"`
	ActiveBills     int64    `json:"active_bills"`
	ScoredBills     int64    `json:"scored_bills"`
	HighPriority    int64    `json:"high_priority"`
	AvgRelevance    *float64 `json:"avg_relevance,omitempty"`
	LastRunAt       *string  `json:"last_run_at,omitempty"`
	BillsLast24h    int64    `json:"bills_last_24h"`
	ScoredLast24h   int64    `json:"scored_last_24h"`
	TotalAnnualCost *float64 `json:"total_annual_cost,omitempty"`
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// PriorityCount is one slice of the monitoring-priority distribution.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

// FinancialSummary aggregates projected facility impact across scored bills.
type FinancialSummary struct {
	BillsWithEstimates int64   `json:"bills_with_estimates"`
	TotalAnnualImpact  float64 `json:"total_annual_impact"`
	WorstAnnualImpact  float64 `json:"worst_annual_impact"`
	BestAnnualImpact   float64 `json:"best_annual_impact"`
	AvgPerBedDaily     float64 `json:"avg_per_bed_daily"`
}
