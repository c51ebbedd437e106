package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExplicitIncrease(t *testing.T) {
	changes := extractRateChanges(
		"Medicare skilled nursing facility payment update",
		"Provides a 2.8 percent increase in payment rates")

	assert.Equal(t, 2.8, changes.MedicarePercent)
	assert.Equal(t, 0.0, changes.MedicaidPercent)
}

func TestExtractExplicitDecreaseFlipsSign(t *testing.T) {
	changes := extractRateChanges(
		"Medicaid rate adjustment act",
		"Implements a 3.5 percent decrease in provider rates")

	assert.Equal(t, -3.5, changes.MedicaidPercent)
}

func TestExtractDefaultsToMedicare(t *testing.T) {
	changes := extractRateChanges(
		"Provider payment act",
		"Provides a 2 percent increase in rates")

	assert.Equal(t, 2.0, changes.MedicarePercent)
}

func TestEstimateFallbacks(t *testing.T) {
	assert.Equal(t, RateChanges{MedicarePercent: 2.8},
		estimateRateChanges("Skilled nursing facility payment update"))
	assert.Equal(t, RateChanges{QualityBonusPercent: 1.5},
		estimateRateChanges("Quality reporting modernization act"))
	assert.Equal(t, RateChanges{MedicarePercent: 0.1},
		estimateRateChanges("Rehabilitation hospital payment act"))
	assert.Equal(t, RateChanges{MedicarePercent: 1.0},
		estimateRateChanges("Medicare Advantage reform act"))
	assert.Equal(t, RateChanges{MedicarePercent: 0.5},
		estimateRateChanges("Rural provider act"))
}

func TestEstimateFallbackOrder(t *testing.T) {
	// SNF payment wins over quality when both terms appear.
	changes := estimateRateChanges("Skilled nursing facility payment and quality act")
	assert.Equal(t, RateChanges{MedicarePercent: 2.8}, changes)
}

func TestImpactCategory(t *testing.T) {
	assert.Equal(t, CategoryQualityBonus, impactCategory("Quality reporting act"))
	assert.Equal(t, CategoryComplianceCost, impactCategory("Staffing compliance act"))
	assert.Equal(t, CategoryRateChange, impactCategory("Prospective payment update"))
	assert.Equal(t, CategoryCompetitiveEffect, impactCategory("Hospice access act"))
	assert.Equal(t, CategoryRateChange, impactCategory("Miscellaneous provisions act"))
}

func TestEstimateBillImpactDefaultFacility(t *testing.T) {
	impact := EstimateBillImpact(
		"Medicare skilled nursing facility payment update",
		"Provides a 2.8 percent increase in payment rates",
		FacilityParams{})

	// 100 beds * 85% occupancy * 65% Medicare = 55.25 Medicare beds.
	// 2.8% of $600 = $16.80/day per Medicare bed.
	assert.Equal(t, 55.3, impact.Details.MedicareBeds)
	assert.Equal(t, 16.80, impact.Details.MedicareDailyImpactPerBed)
	assert.Equal(t, 9.28, impact.PerBedDailyImpact)
	assert.InDelta(t, 338793, impact.AnnualFacilityImpact, 1)
	assert.Equal(t, CategoryRateChange, impact.Category)
	assert.Equal(t, "Direct SNF impact - affects all Medicare days", impact.ImpactExplanation)
	assert.Contains(t, impact.Summary, "cost your 100-bed facility")
	assert.Contains(t, impact.Summary, "$338,793 per year")
}

func TestEstimateBillImpactCustomFacility(t *testing.T) {
	facility := FacilityParams{
		BedCount:      50,
		OccupancyRate: 90,
		MedicareMix:   50,
		MedicaidMix:   50,
	}
	impact := EstimateBillImpact(
		"Medicare skilled nursing facility payment update",
		"Provides a 2 percent increase in payment rates",
		facility)

	// 50 * 0.9 * 0.5 = 22.5 beds per payer; 2% of $600 = $12/day Medicare.
	assert.Equal(t, 22.5, impact.Details.MedicareBeds)
	assert.Equal(t, 12.0, impact.Details.MedicareDailyImpactPerBed)
	require.Greater(t, impact.AnnualFacilityImpact, 0.0)
}

func TestEstimateBillImpactSavings(t *testing.T) {
	impact := EstimateBillImpact(
		"Medicare skilled nursing facility payment reform",
		"Implements a 2 percent decrease in payment rates",
		FacilityParams{})

	assert.Less(t, impact.AnnualFacilityImpact, 0.0)
	assert.Contains(t, impact.Summary, "save your 100-bed facility")
}

func TestEstimateBillImpactZeroChange(t *testing.T) {
	// Quality fallback with zero Medicare census contribution still yields a
	// non-zero projection; a truly neutral case needs explicit zero rates.
	impact := baseImpact(RateChanges{}, CategoryRateChange, DefaultFacility())
	impact.Summary = summarize(impact, DefaultFacility())

	assert.Equal(t, 0.0, impact.AnnualFacilityImpact)
	assert.Contains(t, impact.Summary, "minimal financial impact")
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "0", formatThousands(0))
	assert.Equal(t, "999", formatThousands(999))
	assert.Equal(t, "1,000", formatThousands(1000))
	assert.Equal(t, "338,793", formatThousands(338793))
	assert.Equal(t, "12,345,678", formatThousands(12345678))
}
