package classify

// Direct relevance categories, ordered roughly by specificity.
const (
	CategoryDirectSNF         = "direct_snf"
	CategoryMAPayment         = "ma_payment"
	CategoryMAPriorAuth       = "ma_prior_auth"
	CategoryMANetwork         = "ma_network"
	CategoryMAQuality         = "ma_quality"
	CategoryLTCRelated        = "ltc_related"
	CategoryMedicareGeneral   = "medicare_general"
	CategoryHealthcareGeneral = "healthcare_general"
	CategoryNonHealthcare     = "non_healthcare"
	CategoryInvalid           = "invalid"
)

// Indirect impact categories reported by the impact detector.
const (
	ImpactPaymentCritical     = "payment_critical"
	ImpactPaymentModerate     = "payment_moderate"
	ImpactCompetitionDirect   = "competition_direct"
	ImpactCompetitionIndirect = "competition_indirect"
	ImpactWorkforceCritical   = "workforce_critical"
	ImpactWorkforceModerate   = "workforce_moderate"
	ImpactRegulatory          = "regulatory_impact"
	ImpactMinimal             = "minimal_impact"
	ImpactNoContent           = "no_content"
)

// Monitoring priority tiers used downstream to drive review cadence.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityModerate = "Moderate"
	PriorityLow      = "Low"
	PriorityNone     = "None"
)

// RelevanceResult is the output of the direct/MA relevance classifier.
type RelevanceResult struct {
	Score        float64  `json:"score"`
	Category     string   `json:"category"`
	Confidence   float64  `json:"confidence"`
	Explanation  string   `json:"explanation"`
	MAImpact     bool     `json:"ma_impact"`
	ContextNotes []string `json:"context_notes"`
}

// ImpactResult is the output of the indirect impact detector.
type ImpactResult struct {
	HasImpact          bool     `json:"has_impact"`
	ImpactCategory     string   `json:"impact_category"`
	RelevanceScore     float64  `json:"relevance_score"`
	Confidence         float64  `json:"confidence"`
	Explanation        string   `json:"explanation"`
	SpecificImpacts    []string `json:"specific_impacts"`
	MonitoringPriority string   `json:"monitoring_priority"`
}

// ComprehensiveResult is the fused output of both classifiers. Its fields map
// 1:1 onto the bills table columns owned by the persistence layer.
type ComprehensiveResult struct {
	FinalScore         float64  `json:"final_score"`
	PrimaryCategory    string   `json:"primary_category"`
	SecondaryCategory  string   `json:"secondary_category"`
	Confidence         float64  `json:"confidence"`
	Explanation        string   `json:"explanation"`
	MAImpact           bool     `json:"ma_impact"`
	IndirectImpact     bool     `json:"indirect_impact"`
	MonitoringPriority string   `json:"monitoring_priority"`
	ContextNotes       []string `json:"context_notes"`
	SpecificImpacts    []string `json:"specific_impacts"`
	RecommendedActions []string `json:"recommended_actions"`
}
