package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComprehensiveEmptyTitle(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze("", "", "")

	assert.Equal(t, CategoryInvalid, result.PrimaryCategory)
	assert.Equal(t, "none", result.SecondaryCategory)
	assert.Equal(t, 0.0, result.FinalScore)
	assert.Equal(t, 0.1, result.Confidence)
	assert.Equal(t, PriorityNone, result.MonitoringPriority)
	assert.Equal(t, "No title provided", result.Explanation)
	assert.Empty(t, result.RecommendedActions)
}

func TestComprehensiveDirectSNF(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze(
		"Medicare Program; Prospective Payment System and Consolidated Billing for Skilled Nursing Facilities",
		"Updates SNF payment rates and quality reporting requirements",
		"")

	assert.Equal(t, CategoryDirectSNF, result.PrimaryCategory)
	assert.GreaterOrEqual(t, result.FinalScore, 70.0)
	assert.LessOrEqual(t, result.FinalScore, 100.0)
	assert.False(t, result.MAImpact)
	assert.Contains(t, result.Explanation, "Direct SNF legislation")
}

func TestComprehensiveDirectSNFOutranksIndirect(t *testing.T) {
	c := NewClassifier()

	// A bill naming SNFs explicitly stays direct_snf even when loaded with
	// indirect payment keywords.
	result := c.Analyze(
		"Skilled nursing facility prompt payment act",
		"Requires prompt payment and fixes claims payment timelines and payment delay penalties",
		"")

	assert.Equal(t, CategoryDirectSNF, result.PrimaryCategory)
	assert.NotEqual(t, "none", result.SecondaryCategory)
	assert.True(t, result.IndirectImpact)
}

func TestComprehensiveMAPayment(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze(
		"A bill to require prompt payment by Medicare Advantage organizations",
		"Establishes 30-day payment requirements for Medicare Advantage plans to pay providers",
		"")

	assert.Equal(t, CategoryMAPayment, result.PrimaryCategory)
	assert.True(t, result.MAImpact)
	// 75 base × 0.9 length multiplier + capped indirect bonus 4.5.
	assert.Equal(t, 72.0, result.FinalScore)
	assert.Contains(t, result.Explanation, "Medicare Advantage impact")
}

func TestComprehensiveIndirectWinsOverWeakDirect(t *testing.T) {
	c := NewClassifier()

	// Workforce bill: healthcare_general directly (low score) but a critical
	// workforce impact indirectly, so the indirect category leads.
	result := c.Analyze(
		"Healthcare Worker Visa Relief Act",
		"Provides immigration relief for foreign healthcare workers including nurses and CNAs",
		"")

	assert.Equal(t, ImpactWorkforceCritical, result.PrimaryCategory)
	assert.Equal(t, CategoryHealthcareGeneral, result.SecondaryCategory)
	assert.Equal(t, PriorityHigh, result.MonitoringPriority)
	assert.True(t, result.IndirectImpact)
	assert.LessOrEqual(t, result.FinalScore, 85.0)
}

func TestComprehensiveHighwayBill(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze(
		"Highway Infrastructure Investment Act",
		"Provides federal funding for highway and bridge repairs",
		"")

	assert.Equal(t, CategoryNonHealthcare, result.PrimaryCategory)
	assert.Equal(t, "none", result.SecondaryCategory)
	assert.Less(t, result.FinalScore, 30.0)
	assert.Equal(t, PriorityLow, result.MonitoringPriority)
	assert.False(t, result.MAImpact)
	assert.False(t, result.IndirectImpact)
	assert.Equal(t, []string{"Low priority - annual review adequate"}, result.RecommendedActions)
}

func TestComprehensiveConfidenceFloor(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze("Highway Infrastructure Investment Act", "", "")

	// Without indirect impact the floor is the 0.5 fallback.
	assert.GreaterOrEqual(t, result.Confidence, 0.5)
}

func TestComprehensiveScoreRounding(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze(
		"Healthcare Worker Visa Relief Act",
		"Provides immigration relief for foreign healthcare workers including nurses and CNAs",
		"")

	// Scores carry at most one decimal place.
	scaled := result.FinalScore * 10
	assert.InDelta(t, math.Round(scaled), scaled, 1e-6)
}

func TestComprehensiveContextNotesMerge(t *testing.T) {
	c := NewClassifier()
	result := c.Analyze(
		"Skilled nursing facility prompt payment act",
		"Requires prompt payment and fixes claims payment timelines and payment delay penalties",
		"")

	require.NotEmpty(t, result.ContextNotes)
	assert.Contains(t, result.ContextNotes[0], "Explicitly mentions")
	// Indirect specifics ride along after the direct notes.
	assert.Greater(t, len(result.ContextNotes), 1)
}

func TestComprehensiveRecommendations(t *testing.T) {
	c := NewClassifier()

	direct := c.Analyze(
		"Medicare Program; Prospective Payment System and Consolidated Billing for Skilled Nursing Facilities; Updates to the Quality Reporting Program",
		"This final rule finalizes changes and updates to the policies and payment rates used under the Skilled Nursing Facility (SNF) Prospective Payment System for the coming federal fiscal year, including case mix adjustments",
		"")
	require.Equal(t, CategoryDirectSNF, direct.PrimaryCategory)
	if direct.FinalScore >= 85 {
		assert.Contains(t, direct.RecommendedActions, "Monitor implementation timeline closely")
	}

	workforce := c.Analyze(
		"Healthcare Worker Visa Relief Act",
		"Provides immigration relief for foreign healthcare workers including nurses and CNAs",
		"")
	assert.Contains(t, workforce.RecommendedActions, "Assess staffing recruitment impacts")
}

func TestComprehensiveIdempotent(t *testing.T) {
	c := NewClassifier()
	title := "A bill to require prompt payment by Medicare Advantage organizations"
	summary := "Establishes payment requirements for Medicare Advantage plans"

	first := c.Analyze(title, summary, "")
	second := c.Analyze(title, summary, "")

	assert.Equal(t, first, second)
}
