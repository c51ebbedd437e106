package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyTitle(t *testing.T) {
	c := NewDirectClassifier()
	result := c.Analyze("", "some summary", "")

	assert.Equal(t, CategoryInvalid, result.Category)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.1, result.Confidence)
	assert.Equal(t, "No title provided", result.Explanation)
	assert.False(t, result.MAImpact)
	assert.Empty(t, result.ContextNotes)
}

func TestAnalyzeDirectSNF(t *testing.T) {
	c := NewDirectClassifier()
	result := c.Analyze(
		"Medicare Program; Prospective Payment System and Consolidated Billing for Skilled Nursing Facilities",
		"Updates to the policies and payment rates used under the Skilled Nursing Facility (SNF) Prospective Payment System",
		"")

	assert.Equal(t, CategoryDirectSNF, result.Category)
	assert.GreaterOrEqual(t, result.Score, 68.0, "direct SNF bills score at the top of the range")
	assert.LessOrEqual(t, result.Score, 100.0)
	assert.False(t, result.MAImpact)
	require.NotEmpty(t, result.ContextNotes)
	assert.Contains(t, result.ContextNotes[0], "Explicitly mentions")
}

func TestAnalyzeSNFPaymentSystem(t *testing.T) {
	c := NewDirectClassifier()
	result := c.Analyze("A bill to revise the PDPM case mix methodology", "", "")

	assert.Equal(t, CategoryDirectSNF, result.Category)
	require.NotEmpty(t, result.ContextNotes)
	assert.Contains(t, result.ContextNotes[0], "References SNF payment system")
}

func TestAnalyzeMAPromptPayment(t *testing.T) {
	c := NewDirectClassifier()
	result := c.Analyze(
		"A bill to amend title XVIII of the Social Security Act to apply improved prompt payment requirements to Medicare Advantage organizations.",
		"Requires Medicare Advantage plans to pay providers within specified timeframes",
		"")

	assert.Equal(t, CategoryMAPayment, result.Category)
	assert.True(t, result.MAImpact)
	assert.GreaterOrEqual(t, result.Score, 60.0)
	assert.LessOrEqual(t, result.Score, 95.0)
	assert.Contains(t, result.ContextNotes, "Medicare Advantage legislation detected")
}

func TestAnalyzeMASubcategoryOrder(t *testing.T) {
	c := NewDirectClassifier()

	// Payment wins over prior authorization when both match.
	result := c.Analyze("Medicare Advantage prompt payment and prior authorization reform", "", "")
	assert.Equal(t, CategoryMAPayment, result.Category)

	result = c.Analyze("Medicare Advantage prior authorization transparency", "", "")
	assert.Equal(t, CategoryMAPriorAuth, result.Category)

	result = c.Analyze("Medicare Advantage network adequacy standards", "", "")
	assert.Equal(t, CategoryMANetwork, result.Category)

	result = c.Analyze("Medicare Advantage Star Ratings reform", "", "")
	assert.Equal(t, CategoryMAQuality, result.Category)
}

func TestAnalyzeMAWithoutSubcategoryFallsThrough(t *testing.T) {
	c := NewDirectClassifier()

	// MA detected but no subcategory keyword: the MA note is kept while the
	// bill settles in a lower tier.
	result := c.Analyze("A bill concerning Medicare Advantage enrollment periods", "", "")

	assert.Equal(t, CategoryMedicareGeneral, result.Category)
	assert.False(t, result.MAImpact)
	assert.Contains(t, result.ContextNotes, "Medicare Advantage legislation detected")
}

func TestAnalyzeLTCRelated(t *testing.T) {
	c := NewDirectClassifier()
	result := c.Analyze("A bill to expand assisted living and post-acute care options", "", "")

	assert.Equal(t, CategoryLTCRelated, result.Category)
	require.NotEmpty(t, result.ContextNotes)
	assert.Contains(t, result.ContextNotes[0], "Long-term care related")
}

func TestAnalyzeMedicareGeneralExcludesMedicaid(t *testing.T) {
	c := NewDirectClassifier()

	result := c.Analyze("A bill to modernize Medicare enrollment", "", "")
	assert.Equal(t, CategoryMedicareGeneral, result.Category)

	// Mixed Medicare/Medicaid bills drop to the general healthcare tier.
	result = c.Analyze("A bill to modernize Medicare and Medicaid health coverage", "", "")
	assert.Equal(t, CategoryHealthcareGeneral, result.Category)
}

func TestAnalyzeNonHealthcare(t *testing.T) {
	c := NewDirectClassifier()
	result := c.Analyze(
		"Highway Infrastructure Investment Act",
		"Provides funding for highway repairs and bridge construction",
		"")

	assert.Equal(t, CategoryNonHealthcare, result.Category)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.1, result.Confidence)
}

func TestScoreBounds(t *testing.T) {
	c := NewDirectClassifier()

	titles := []string{
		"Skilled nursing facility payment update",
		"Medicare Advantage prompt payment act",
		"Medicare Advantage utilization review reform",
		"Medicare Advantage provider network rules",
		"Medicare Advantage quality bonus changes",
		"Long-term care expansion act",
		"Medicare modernization act",
		"Public health improvement act",
		"Highway repair act",
	}
	for _, title := range titles {
		result := c.Analyze(title, "", "")
		assert.GreaterOrEqual(t, result.Score, 0.0, title)
		assert.LessOrEqual(t, result.Score, 100.0, title)
		if band, ok := scoringMatrix[result.Category]; ok {
			assert.LessOrEqual(t, result.Score, band.max, title)
		}
	}
}

func TestDirectSNFDominance(t *testing.T) {
	c := NewDirectClassifier()

	snf := c.Analyze("Skilled nursing facility payment reform", "", "")
	other := c.Analyze("Public health and patient safety improvement act", "", "")

	assert.Greater(t, snf.Score, other.Score,
		"direct SNF bills outscore general healthcare bills of similar length")
}

func TestLongerTextRaisesConfidence(t *testing.T) {
	c := NewDirectClassifier()
	title := "Skilled nursing facility payment reform"

	short := c.Analyze(title, "", "")
	long := c.Analyze(title, strings.Repeat("payment rate update details. ", 40), "")

	assert.Greater(t, long.Confidence, short.Confidence)
	assert.GreaterOrEqual(t, long.Score, short.Score)
}

func TestAnalyzeIdempotent(t *testing.T) {
	c := NewDirectClassifier()
	title := "Medicare Advantage prompt payment requirements"
	summary := "Requires plans to pay providers within 30 days"

	first := c.Analyze(title, summary, "")
	second := c.Analyze(title, summary, "")

	assert.Equal(t, first, second)
}
