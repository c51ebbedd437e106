package classify

import (
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// DirectClassifier scores a bill's direct relevance to skilled nursing
// facilities using the keyword taxonomy. It is stateless and safe for
// concurrent use.
type DirectClassifier struct{}

func NewDirectClassifier() *DirectClassifier {
	return &DirectClassifier{}
}

// combineText lowercases and joins the three text fields the way every
// category check expects them.
func combineText(title, summary, fullText string) string {
	return strings.ToLower(title + " " + summary + " " + fullText)
}

// normalizeText collapses whitespace and drops degenerate fragments.
func normalizeText(text string) string {
	text = whitespaceRE.ReplaceAllString(strings.TrimSpace(strings.ToLower(text)), " ")
	if len(text) < 10 {
		return ""
	}
	return text
}

// detectCategory walks the taxonomy in priority order and returns the first
// matching category with its context notes.
func (c *DirectClassifier) detectCategory(title, summary, fullText string) (string, []string) {
	combined := combineText(title, summary, fullText)
	notes := []string{}

	if p, ok := containsAny(combined, snfExplicit); ok {
		notes = append(notes, "Explicitly mentions: "+p.raw)
		return CategoryDirectSNF, notes
	}
	if p, ok := containsAny(combined, snfPaymentSystems); ok {
		notes = append(notes, "References SNF payment system: "+p.raw)
		return CategoryDirectSNF, notes
	}

	if _, ok := containsAny(combined, maExplicit); ok {
		notes = append(notes, "Medicare Advantage legislation detected")

		if _, ok := containsAny(combined, maPayment); ok {
			notes = append(notes, "Addresses provider payment timelines - critical for SNF cash flow")
			return CategoryMAPayment, notes
		}
		if _, ok := containsAny(combined, maPriorAuth); ok {
			notes = append(notes, "Affects prior authorization - impacts SNF admission patterns")
			return CategoryMAPriorAuth, notes
		}
		if _, ok := containsAny(combined, maNetwork); ok {
			notes = append(notes, "Network adequacy requirements - affects SNF market participation")
			return CategoryMANetwork, notes
		}
		if _, ok := containsAny(combined, maQuality); ok {
			notes = append(notes, "MA quality programs - may affect referral patterns to SNFs")
			return CategoryMAQuality, notes
		}
		// MA bill with no recognized subcategory falls through to the
		// lower-priority checks, keeping the MA note.
	}

	var ltcFound []string
	for _, p := range ltcFacilities {
		if strings.Contains(combined, p.lower) {
			ltcFound = append(ltcFound, p.raw)
		}
	}
	if len(ltcFound) > 0 {
		notes = append(notes, "Long-term care related: "+strings.Join(ltcFound, ", "))
		return CategoryLTCRelated, notes
	}

	if (strings.Contains(combined, "medicare") || strings.Contains(combined, "social security act")) &&
		!strings.Contains(combined, "medicaid") {
		notes = append(notes, "General Medicare legislation")
		return CategoryMedicareGeneral, notes
	}

	if _, ok := containsAny(combined, generalHealthTerms); ok {
		notes = append(notes, "General healthcare legislation")
		return CategoryHealthcareGeneral, notes
	}

	return CategoryNonHealthcare, notes
}

// score maps a detected category plus content richness onto the scoring
// matrix. Categories outside the matrix score zero.
func (c *DirectClassifier) score(category, title, summary, fullText string) (float64, float64) {
	band, ok := scoringMatrix[category]
	if !ok {
		return 0.0, 0.1
	}

	textLength := len(title) + len(summary) + len(fullText) + 2

	var confidence, multiplier float64
	switch {
	case textLength > 1000:
		confidence, multiplier = 0.9, 1.0
	case textLength > 500:
		confidence, multiplier = 0.8, 0.95
	case textLength > 100:
		confidence, multiplier = 0.7, 0.9
	default:
		confidence, multiplier = 0.6, 0.8
	}

	final := band.base * multiplier
	if final > band.max {
		final = band.max
	}
	return final, confidence
}

// Analyze classifies a bill's direct SNF relevance from its title, summary
// and full text. Summary and full text may be empty.
func (c *DirectClassifier) Analyze(title, summary, fullText string) RelevanceResult {
	if title == "" {
		return RelevanceResult{
			Score:        0.0,
			Category:     CategoryInvalid,
			Confidence:   0.1,
			Explanation:  "No title provided",
			MAImpact:     false,
			ContextNotes: []string{},
		}
	}

	category, notes := c.detectCategory(title, summary, fullText)
	score, confidence := c.score(category, title, summary, fullText)

	return RelevanceResult{
		Score:        score,
		Category:     category,
		Confidence:   confidence,
		Explanation:  explainRelevance(category, score, notes),
		MAImpact:     strings.HasPrefix(category, "ma_"),
		ContextNotes: notes,
	}
}

var categoryExplanations = map[string]string{
	CategoryDirectSNF:         "Direct SNF legislation (Score: %.1f/100) - Explicitly addresses skilled nursing facilities",
	CategoryMAPayment:         "Medicare Advantage payment legislation (Score: %.1f/100) - High SNF impact due to cash flow dependency",
	CategoryMAPriorAuth:       "Medicare Advantage prior authorization (Score: %.1f/100) - Affects SNF admission patterns",
	CategoryMANetwork:         "Medicare Advantage network requirements (Score: %.1f/100) - Impacts SNF market participation",
	CategoryMAQuality:         "Medicare Advantage quality programs (Score: %.1f/100) - May influence SNF referral patterns",
	CategoryLTCRelated:        "Long-term care related (Score: %.1f/100) - Indirect SNF relevance",
	CategoryMedicareGeneral:   "General Medicare legislation (Score: %.1f/100) - Potential SNF impact",
	CategoryHealthcareGeneral: "General healthcare legislation (Score: %.1f/100) - Minimal SNF relevance",
	CategoryNonHealthcare:     "Non-healthcare legislation (Score: %.1f/100) - No SNF relevance",
}

func explainRelevance(category string, score float64, notes []string) string {
	format, ok := categoryExplanations[category]
	if !ok {
		format = "Unknown category (Score: %.1f/100)"
	}
	explanation := fmt.Sprintf(format, score)
	if len(notes) > 0 {
		explanation += " | Context: " + strings.Join(notes, "; ")
	}
	return explanation
}
