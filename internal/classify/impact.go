package classify

import (
	"fmt"
	"sort"
	"strings"
)

// dimensionResult is one indirect dimension's scored outcome before fusion.
type dimensionResult struct {
	category    string
	score       float64
	confidence  float64
	explanation string
	specifics   []string
	priority    string
}

// ImpactDetector finds indirect SNF effects in legislation that never names
// nursing facilities: payment plumbing, competing post-acute providers,
// workforce policy and regulatory load. Stateless, safe for concurrent use.
type ImpactDetector struct{}

func NewImpactDetector() *ImpactDetector {
	return &ImpactDetector{}
}

const snfCashFlowContext = "SNFs operate on thin margins with 60-90 day payment cycles. Payment delays create immediate cash flow crises requiring expensive bridge financing."
const snfStaffingContext = "SNFs face severe staffing shortages with turnover rates of 75-100%. Any healthcare workforce changes significantly impact SNF operations."
const snfQualityContext = "SNFs are subject to extensive quality reporting. New requirements create administrative burden and potential penalties."

// scoreDimension accumulates weighted keyword hits for one dimension.
func scoreDimension(text string, groups []weightedGroup) (int, []string) {
	raw := 0
	var specifics []string
	for _, g := range groups {
		for _, p := range g.phrases {
			if strings.Contains(text, p.lower) {
				raw += g.weight
				specifics = append(specifics, g.label+": "+p.raw)
			}
		}
	}
	return raw, specifics
}

// rescale scales a raw dimension score and caps it at the category ceiling.
func rescale(raw int, factor float64, category string) float64 {
	score := float64(raw) * factor
	if max, ok := impactCaps[category]; ok && score > max {
		score = max
	}
	return score
}

func (d *ImpactDetector) paymentImpact(text string) dimensionResult {
	raw, specifics := scoreDimension(text, paymentGroups)

	var category, explanation string
	var confidence float64
	switch {
	case raw >= 25:
		category = ImpactPaymentCritical
		explanation = fmt.Sprintf("Critical payment impact (Score: %d). %s", raw, snfCashFlowContext)
		confidence = 0.9
	case raw >= 15:
		category = ImpactPaymentModerate
		explanation = fmt.Sprintf("Moderate payment impact (Score: %d). May affect SNF financial operations.", raw)
		confidence = 0.7
	default:
		category = ImpactMinimal
		explanation = fmt.Sprintf("Minimal payment impact (Score: %d).", raw)
		confidence = 0.6
	}

	return dimensionResult{
		category:    category,
		score:       rescale(raw, 2, category),
		confidence:  confidence,
		explanation: explanation,
		specifics:   specifics,
		priority:    impactPriorities[category],
	}
}

func (d *ImpactDetector) competitionImpact(text string) dimensionResult {
	raw, specifics := scoreDimension(text, competitionGroups)

	var category, explanation string
	var confidence float64
	switch {
	case raw >= 20:
		category = ImpactCompetitionDirect
		explanation = fmt.Sprintf("Direct competitive impact (Score: %d). Changes affect SNF referral patterns and census.", raw)
		confidence = 0.8
	case raw >= 10:
		category = ImpactCompetitionIndirect
		explanation = fmt.Sprintf("Indirect competitive impact (Score: %d). May influence patient flow to SNFs.", raw)
		confidence = 0.7
	default:
		category = ImpactMinimal
		explanation = fmt.Sprintf("Minimal competitive impact (Score: %d).", raw)
		confidence = 0.6
	}

	return dimensionResult{
		category:    category,
		score:       rescale(raw, 2.5, category),
		confidence:  confidence,
		explanation: explanation,
		specifics:   specifics,
		priority:    impactPriorities[category],
	}
}

func (d *ImpactDetector) workforceImpact(text string) dimensionResult {
	raw, specifics := scoreDimension(text, workforceGroups)

	var category, explanation string
	var confidence float64
	switch {
	case raw >= 25:
		category = ImpactWorkforceCritical
		explanation = fmt.Sprintf("Critical workforce impact (Score: %d). %s", raw, snfStaffingContext)
		confidence = 0.8
	case raw >= 15:
		category = ImpactWorkforceModerate
		explanation = fmt.Sprintf("Moderate workforce impact (Score: %d). May affect SNF staffing and costs.", raw)
		confidence = 0.7
	default:
		category = ImpactMinimal
		explanation = fmt.Sprintf("Minimal workforce impact (Score: %d).", raw)
		confidence = 0.6
	}

	return dimensionResult{
		category:    category,
		score:       rescale(raw, 2, category),
		confidence:  confidence,
		explanation: explanation,
		specifics:   specifics,
		priority:    impactPriorities[category],
	}
}

func (d *ImpactDetector) regulatoryImpact(text string) dimensionResult {
	raw, specifics := scoreDimension(text, regulatoryGroups)

	var category, explanation string
	var confidence float64
	if raw >= 15 {
		category = ImpactRegulatory
		explanation = fmt.Sprintf("Regulatory impact (Score: %d). %s", raw, snfQualityContext)
		confidence = 0.7
	} else {
		category = ImpactMinimal
		explanation = fmt.Sprintf("Minimal regulatory impact (Score: %d).", raw)
		confidence = 0.6
	}

	return dimensionResult{
		category:    category,
		score:       rescale(raw, 2.5, category),
		confidence:  confidence,
		explanation: explanation,
		specifics:   specifics,
		priority:    impactPriorities[category],
	}
}

// Analyze assesses indirect SNF impact across all four dimensions and
// returns the dominant one. Ties keep the payment, competition, workforce,
// regulatory evaluation order.
func (d *ImpactDetector) Analyze(title, summary, fullText string) ImpactResult {
	combined := combineText(title, summary, fullText)

	if strings.TrimSpace(combined) == "" {
		return ImpactResult{
			HasImpact:          false,
			ImpactCategory:     ImpactNoContent,
			RelevanceScore:     0.0,
			Confidence:         0.1,
			Explanation:        "No content to analyze",
			SpecificImpacts:    []string{},
			MonitoringPriority: PriorityNone,
		}
	}

	dims := []dimensionResult{
		d.paymentImpact(combined),
		d.competitionImpact(combined),
		d.workforceImpact(combined),
		d.regulatoryImpact(combined),
	}

	// Cross-dimension context keeps the payment, competition, workforce,
	// regulatory order no matter which dimension wins.
	var all []string
	for _, dim := range dims {
		all = append(all, dim.specifics...)
	}
	if len(all) > 5 {
		all = all[:5]
	}

	sort.SliceStable(dims, func(i, j int) bool { return dims[i].score > dims[j].score })

	top := dims[0]
	if top.score < 30 {
		return ImpactResult{
			HasImpact:          false,
			ImpactCategory:     ImpactMinimal,
			RelevanceScore:     top.score,
			Confidence:         0.6,
			Explanation:        "Minimal indirect SNF impact detected",
			SpecificImpacts:    []string{},
			MonitoringPriority: PriorityLow,
		}
	}

	return ImpactResult{
		HasImpact:          true,
		ImpactCategory:     top.category,
		RelevanceScore:     top.score,
		Confidence:         top.confidence,
		Explanation:        top.explanation,
		SpecificImpacts:    all,
		MonitoringPriority: top.priority,
	}
}
