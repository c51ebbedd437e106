package classify

import "strings"

// phrase is a trigger keyword with its lowercase form precomputed so matching
// never re-folds table entries per call. Matching is case-insensitive
// substring containment with no word anchoring, which mirrors how the scoring
// rules were originally calibrated (a term like "SNF" also hits inside longer
// tokens).
type phrase struct {
	raw   string
	lower string
}

func phrases(terms ...string) []phrase {
	out := make([]phrase, 0, len(terms))
	for _, t := range terms {
		out = append(out, phrase{raw: t, lower: strings.ToLower(t)})
	}
	return out
}

// containsAny returns the first table phrase found in the lowercased text.
func containsAny(text string, table []phrase) (phrase, bool) {
	for _, p := range table {
		if strings.Contains(text, p.lower) {
			return p, true
		}
	}
	return phrase{}, false
}

// Direct SNF trigger tables, highest priority.
var (
	snfExplicit       []phrase
	snfPaymentSystems []phrase
	snfQualityPrograms []phrase
)

// Medicare Advantage trigger tables. The explicit table gates the four
// subcategory tables, which are checked in priority order.
var (
	maExplicit  []phrase
	maPayment   []phrase
	maPriorAuth []phrase
	maNetwork   []phrase
	maQuality   []phrase
)

// Long-term care / post-acute trigger tables.
var (
	ltcFacilities []phrase
	ltcServices   []phrase
	ltcRegulatory []phrase
)

// generalHealthTerms are the lowest-specificity healthcare signals.
var generalHealthTerms []phrase

// weightedGroup is one keyword group inside an indirect impact dimension.
// Every phrase hit adds Weight to the dimension's raw score and records a
// "Label: keyword" entry in the result's specific impacts.
type weightedGroup struct {
	label   string
	weight  int
	phrases []phrase
}

// Indirect impact dimensions, in the fixed evaluation (and tie-break) order:
// payment, competition, workforce, regulatory.
var (
	paymentGroups     []weightedGroup
	competitionGroups []weightedGroup
	workforceGroups   []weightedGroup
	regulatoryGroups  []weightedGroup
)

// scoreBand is the (base, max) scoring pair for a direct relevance category.
type scoreBand struct {
	base float64
	max  float64
}

var scoringMatrix = map[string]scoreBand{
	CategoryDirectSNF:         {85, 100},
	CategoryMAPayment:         {75, 95},
	CategoryMAPriorAuth:       {65, 85},
	CategoryMANetwork:         {55, 75},
	CategoryMAQuality:         {45, 65},
	CategoryLTCRelated:        {35, 55},
	CategoryMedicareGeneral:   {25, 45},
	CategoryHealthcareGeneral: {15, 35},
}

// impactCaps bound each indirect impact category's rescaled score.
var impactCaps = map[string]float64{
	ImpactPaymentCritical:     95,
	ImpactPaymentModerate:     75,
	ImpactCompetitionDirect:   85,
	ImpactCompetitionIndirect: 65,
	ImpactWorkforceCritical:   80,
	ImpactWorkforceModerate:   60,
	ImpactRegulatory:          55,
	ImpactMinimal:             35,
}

// impactPriorities map each indirect category to its monitoring tier.
var impactPriorities = map[string]string{
	ImpactPaymentCritical:     PriorityHigh,
	ImpactPaymentModerate:     PriorityModerate,
	ImpactCompetitionDirect:   PriorityHigh,
	ImpactCompetitionIndirect: PriorityModerate,
	ImpactWorkforceCritical:   PriorityHigh,
	ImpactWorkforceModerate:   PriorityModerate,
	ImpactRegulatory:          PriorityModerate,
	ImpactMinimal:             PriorityLow,
}

func init() {
	snfExplicit = phrases(
		"skilled nursing facility", "skilled nursing facilities", "SNF", "SNFs",
		"nursing home", "nursing homes", "nursing facility", "nursing facilities",
	)
	snfPaymentSystems = phrases(
		"PDPM", "RUG-IV", "Medicare Part A", "SNF PPS", "consolidated billing",
	)
	snfQualityPrograms = phrases(
		"Five-Star Quality Rating", "SNF Quality Reporting Program",
		"CMS Five Star", "nursing home compare",
	)

	maExplicit = phrases(
		"Medicare Advantage", "MA plan", "MA plans", "Medicare Part C",
		"Medicare+Choice", "managed care organization", "MCO",
	)
	maPayment = phrases(
		"prompt payment", "payment timeline", "payment delay", "provider payment",
		"reimbursement schedule", "claims payment", "payment processing",
	)
	maPriorAuth = phrases(
		"prior authorization", "preauthorization", "pre-authorization",
		"utilization review", "medical necessity", "coverage determination",
	)
	maNetwork = phrases(
		"network adequacy", "provider network", "network participation",
		"provider access", "network standards", "adequate network",
	)
	maQuality = phrases(
		"Star Ratings", "MA Star Ratings", "bonus payment", "quality bonus",
		"performance measures", "HEDIS", "HOS", "CAHPS",
	)

	ltcFacilities = phrases(
		"long-term care", "post-acute care", "rehabilitation facility",
		"assisted living", "continuing care", "subacute care",
	)
	ltcServices = phrases(
		"physical therapy", "occupational therapy", "speech therapy",
		"wound care", "IV therapy", "ventilator care", "dialysis",
	)
	ltcRegulatory = phrases(
		"CMS", "Centers for Medicare", "survey", "certification",
		"licensing", "state agency", "federal oversight",
	)

	generalHealthTerms = phrases("health", "medical", "healthcare", "patient")

	paymentGroups = []weightedGroup{
		{label: "Payment timing", weight: 15, phrases: phrases(
			"prompt payment", "payment timeline", "payment delay", "payment processing",
			"claims payment", "reimbursement schedule", "payment terms",
			"account receivable", "collection timeline", "payment acceleration",
		)},
		{label: "Bridge financing", weight: 12, phrases: phrases(
			"bridge financing", "credit facility", "line of credit", "working capital",
			"receivables financing", "factoring", "cash advance", "credit line",
			"short-term financing", "interim financing",
		)},
		{label: "Medicare payment", weight: 10, phrases: phrases(
			"Medicare payment", "Medicare reimbursement", "Part A payment",
			"Medicare rate", "CMS payment", "federal reimbursement",
		)},
		{label: "Medicaid payment", weight: 8, phrases: phrases(
			"Medicaid payment", "Medicaid reimbursement", "state Medicaid",
			"Medicaid rate", "Medicaid funding", "state reimbursement",
		)},
	}

	competitionGroups = []weightedGroup{
		{label: "LTCH competition", weight: 12, phrases: phrases(
			"long-term care hospital", "LTCH", "long term acute care",
			"LTAC", "specialty hospital", "long-stay hospital",
		)},
		{label: "IRF competition", weight: 10, phrases: phrases(
			"inpatient rehabilitation facility", "IRF", "rehabilitation hospital",
			"inpatient rehab", "rehab facility", "rehabilitation services",
		)},
		{label: "Home health alternative", weight: 8, phrases: phrases(
			"home health", "home healthcare", "home-based care",
			"community-based care", "home care services", "visiting nurse",
		)},
		{label: "Discharge planning", weight: 6, phrases: phrases(
			"discharge planning", "post-acute care", "transition of care",
			"care coordination", "hospital readmission", "length of stay",
		)},
	}

	workforceGroups = []weightedGroup{
		{label: "Healthcare staffing", weight: 15, phrases: phrases(
			"healthcare worker", "nurse shortage", "nursing shortage",
			"healthcare staffing", "medical staffing", "clinical staff",
			"certified nursing assistant", "CNA", "licensed practical nurse", "LPN",
		)},
		{label: "Immigration workforce", weight: 12, phrases: phrases(
			"healthcare immigration", "foreign nurse", "visa healthcare",
			"immigrant healthcare worker", "H1-B healthcare", "international nurse",
			"foreign healthcare professional",
		)},
		{label: "Wage impact", weight: 10, phrases: phrases(
			"minimum wage", "wage increase", "living wage", "hourly wage",
			"pay raise", "wage floor", "salary increase",
		)},
		{label: "Workforce development", weight: 8, phrases: phrases(
			"workforce development", "job training healthcare", "nursing education",
			"healthcare training", "clinical training", "apprenticeship healthcare",
		)},
	}

	regulatoryGroups = []weightedGroup{
		{label: "Quality reporting", weight: 8, phrases: phrases(
			"quality reporting", "patient safety", "quality measures",
			"performance measures", "outcome measures", "quality indicators",
		)},
		{label: "Infection control", weight: 10, phrases: phrases(
			"infection control", "infection prevention", "antimicrobial",
			"antibiotic resistance", "hospital-acquired infection", "nosocomial",
		)},
		{label: "Emergency preparedness", weight: 8, phrases: phrases(
			"emergency preparedness", "disaster planning", "pandemic response",
			"emergency response", "public health emergency",
		)},
	}
}
