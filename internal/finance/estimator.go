// Package finance turns classified legislation into dollar projections for a
// specific facility: extracted or estimated rate changes applied to the
// facility's bed count, occupancy and payer mix.
package finance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// National average SNF daily rates used for projections.
const (
	MedicareDailyRate = 600.0
	MedicaidDailyRate = 250.0
)

// FacilityParams describe the facility the projection is computed for.
// Percentages are whole numbers (85 means 85%).
type FacilityParams struct {
	BedCount      int     `json:"bed_count"`
	OccupancyRate float64 `json:"occupancy_rate"`
	MedicareMix   float64 `json:"medicare_mix"`
	MedicaidMix   float64 `json:"medicaid_mix"`
}

// DefaultFacility is the standard 100-bed facility used when callers supply
// no parameters.
func DefaultFacility() FacilityParams {
	return FacilityParams{
		BedCount:      100,
		OccupancyRate: 85,
		MedicareMix:   65,
		MedicaidMix:   35,
	}
}

// RateChanges are the percentage changes extracted or estimated from a bill.
type RateChanges struct {
	MedicarePercent     float64 `json:"medicare_percent"`
	MedicaidPercent     float64 `json:"medicaid_percent"`
	QualityBonusPercent float64 `json:"quality_bonus_percent"`
}

// CalculationDetails expose the intermediate terms of a projection.
type CalculationDetails struct {
	MedicareBeds              float64 `json:"medicare_beds"`
	MedicaidBeds              float64 `json:"medicaid_beds"`
	MedicareDailyImpactPerBed float64 `json:"medicare_daily_impact_per_bed"`
	MedicaidDailyImpactPerBed float64 `json:"medicaid_daily_impact_per_bed"`
	QualityDailyImpactPerBed  float64 `json:"quality_daily_impact_per_bed"`
}

// Impact is the complete financial projection for one bill.
type Impact struct {
	PerBedDailyImpact         float64            `json:"per_bed_daily_impact"`
	AnnualFacilityImpact      float64            `json:"annual_facility_impact"`
	MedicareRateChangePercent float64            `json:"medicare_rate_change_percent"`
	MedicaidRateChangePercent float64            `json:"medicaid_rate_change_percent"`
	Category                  string             `json:"financial_impact_category"`
	PayerMixAssumption        string             `json:"payer_mix_assumption"`
	Details                   CalculationDetails `json:"calculation_details"`
	ImpactExplanation         string             `json:"impact_explanation"`
	Summary                   string             `json:"summary"`
}

// Impact categories.
const (
	CategoryQualityBonus      = "quality_bonus"
	CategoryComplianceCost    = "compliance_cost"
	CategoryRateChange        = "rate_change"
	CategoryCompetitiveEffect = "competitive_effect"
)

type ratePattern struct {
	re   *regexp.Regexp
	sign float64
}

// Ordered alternatives; the first pattern that matches anywhere in the text
// wins and later patterns are not consulted.
var ratePatterns = []ratePattern{
	{regexp.MustCompile(`(\d+\.?\d*)\s*percent.*increase`), 1},
	{regexp.MustCompile(`(\d+\.?\d*)%.*increase`), 1},
	{regexp.MustCompile(`increase.*(\d+\.?\d*)\s*percent`), 1},
	{regexp.MustCompile(`(\d+\.?\d*)\s*percent.*decrease`), -1},
	{regexp.MustCompile(`(\d+\.?\d*)%.*decrease`), -1},
	{regexp.MustCompile(`decrease.*(\d+\.?\d*)\s*percent`), -1},
	{regexp.MustCompile(`update.*(\d+\.?\d*)\s*percent`), 1},
	{regexp.MustCompile(`(\d+\.?\d*)%.*update`), 1},
}

var competitorTerms = []string{"rehabilitation", "psychiatric", "hospice"}

// EstimateBillImpact projects the financial effect of a bill on a facility.
// A zero-value FacilityParams falls back to the standard 100-bed facility.
func EstimateBillImpact(title, summary string, facility FacilityParams) Impact {
	if facility.BedCount == 0 {
		facility = DefaultFacility()
	}

	changes := extractRateChanges(title, summary)
	category := impactCategory(title)
	impact := baseImpact(changes, category, facility)
	applyAdjustments(&impact, title)
	impact.Summary = summarize(impact, facility)
	return impact
}

// extractRateChanges pulls explicit percent changes from the bill text, or
// falls back to type-based estimates when no number is stated.
func extractRateChanges(title, summary string) RateChanges {
	text := strings.ToLower(title) + " " + strings.ToLower(summary)

	var changes RateChanges
	for _, p := range ratePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		rate, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		rate *= p.sign

		switch {
		case strings.Contains(text, "medicare") && strings.Contains(text, "skilled nursing"):
			changes.MedicarePercent = rate
		case strings.Contains(text, "medicaid"):
			changes.MedicaidPercent = rate
		case strings.Contains(text, "quality"):
			changes.QualityBonusPercent = rate
		default:
			changes.MedicarePercent = rate
		}
		return changes
	}

	return estimateRateChanges(title)
}

func estimateRateChanges(title string) RateChanges {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "skilled nursing") && strings.Contains(t, "payment"):
		return RateChanges{MedicarePercent: 2.8}
	case strings.Contains(t, "quality"):
		return RateChanges{QualityBonusPercent: 1.5}
	case containsAnyTerm(t, competitorTerms):
		return RateChanges{MedicarePercent: 0.1}
	case strings.Contains(t, "medicare advantage"):
		return RateChanges{MedicarePercent: 1.0}
	}
	return RateChanges{MedicarePercent: 0.5}
}

func impactCategory(title string) string {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "quality") || strings.Contains(t, "reporting"):
		return CategoryQualityBonus
	case strings.Contains(t, "compliance") || strings.Contains(t, "requirement"):
		return CategoryComplianceCost
	case strings.Contains(t, "payment") || strings.Contains(t, "rate") || strings.Contains(t, "prospective"):
		return CategoryRateChange
	case containsAnyTerm(t, competitorTerms):
		return CategoryCompetitiveEffect
	}
	return CategoryRateChange
}

func baseImpact(changes RateChanges, category string, facility FacilityParams) Impact {
	occupied := float64(facility.BedCount) * facility.OccupancyRate / 100
	medicareBeds := occupied * facility.MedicareMix / 100
	medicaidBeds := occupied * facility.MedicaidMix / 100

	medicareDaily := changes.MedicarePercent / 100 * MedicareDailyRate
	medicaidDaily := changes.MedicaidPercent / 100 * MedicaidDailyRate
	// Quality bonuses apply to the Medicare census.
	qualityDaily := changes.QualityBonusPercent / 100 * MedicareDailyRate

	totalDaily := medicareDaily*medicareBeds + medicaidDaily*medicaidBeds + qualityDaily*medicareBeds

	perBedDaily := 0.0
	if facility.BedCount > 0 {
		perBedDaily = totalDaily / float64(facility.BedCount)
	}

	return Impact{
		PerBedDailyImpact:         round2(perBedDaily),
		AnnualFacilityImpact:      math.Round(totalDaily * 365),
		MedicareRateChangePercent: changes.MedicarePercent,
		MedicaidRateChangePercent: changes.MedicaidPercent,
		Category:                  category,
		PayerMixAssumption:        fmt.Sprintf(`{"medicare": %g, "medicaid": %g}`, facility.MedicareMix, facility.MedicaidMix),
		Details: CalculationDetails{
			MedicareBeds:              round1(medicareBeds),
			MedicaidBeds:              round1(medicaidBeds),
			MedicareDailyImpactPerBed: round2(medicareDaily),
			MedicaidDailyImpactPerBed: round2(medicaidDaily),
			QualityDailyImpactPerBed:  round2(qualityDaily),
		},
	}
}

func applyAdjustments(impact *Impact, title string) {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "skilled nursing"):
		impact.ImpactExplanation = "Direct SNF impact - affects all Medicare days"
	case strings.Contains(t, "quality"):
		impact.ImpactExplanation = "Quality program - potential for bonuses or penalties"
	case strings.Contains(t, "rehabilitation") || strings.Contains(t, "psychiatric"):
		impact.ImpactExplanation = "Indirect impact through referral pattern changes"
	default:
		impact.ImpactExplanation = "General Medicare regulation impact"
	}
}

func summarize(impact Impact, facility FacilityParams) string {
	annual := impact.AnnualFacilityImpact

	verb := ""
	switch {
	case annual > 0:
		verb = "cost"
	case annual < 0:
		verb = "save"
		annual = -annual
	default:
		return fmt.Sprintf("This bill has minimal financial impact on your %d-bed facility.", facility.BedCount)
	}

	return fmt.Sprintf("This will %s your %d-bed facility $%s per year ($%.2f per bed daily)",
		verb, facility.BedCount, formatThousands(annual), impact.PerBedDailyImpact)
}

// formatThousands renders a non-negative whole dollar amount with commas.
func formatThousands(v float64) string {
	s := strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func containsAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
