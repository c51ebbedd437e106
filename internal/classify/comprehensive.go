package classify

import (
	"fmt"
	"math"
	"strings"
)

// Classifier fuses the direct relevance classifier and the indirect impact
// detector into a single comprehensive assessment. It is the entry point the
// analyzer loop and the API handlers use.
type Classifier struct {
	direct   *DirectClassifier
	indirect *ImpactDetector
}

func NewClassifier() *Classifier {
	return &Classifier{
		direct:   NewDirectClassifier(),
		indirect: NewImpactDetector(),
	}
}

// Analyze runs both classifiers and fuses their outputs.
func (c *Classifier) Analyze(title, summary, fullText string) ComprehensiveResult {
	if title == "" {
		return emptyResult("No title provided")
	}

	direct := c.direct.Analyze(title, summary, fullText)
	indirect := c.indirect.Analyze(title, summary, fullText)

	primary, secondary := determineCategories(direct, indirect)
	finalScore := fuseScores(direct, indirect, primary)
	priority := determinePriority(primary, direct, indirect)

	notes := append([]string{}, direct.ContextNotes...)
	if indirect.HasImpact && len(indirect.SpecificImpacts) > 0 {
		notes = append(notes, indirect.SpecificImpacts...)
	}

	specifics := []string{}
	if indirect.HasImpact {
		specifics = indirect.SpecificImpacts
	}

	confidence := direct.Confidence
	if indirect.HasImpact {
		if indirect.Confidence > confidence {
			confidence = indirect.Confidence
		}
	} else if confidence < 0.5 {
		confidence = 0.5
	}

	return ComprehensiveResult{
		FinalScore:         finalScore,
		PrimaryCategory:    primary,
		SecondaryCategory:  secondary,
		Confidence:         confidence,
		Explanation:        fuseExplanation(indirect, primary, finalScore),
		MAImpact:           direct.MAImpact,
		IndirectImpact:     indirect.HasImpact,
		MonitoringPriority: priority,
		ContextNotes:       notes,
		SpecificImpacts:    specifics,
		RecommendedActions: recommendations(primary, finalScore),
	}
}

// determineCategories picks the primary and secondary category following the
// fixed precedence ladder: direct SNF, strong MA, strong indirect over weak
// direct, any MA, moderate indirect, then whatever the direct pass said.
func determineCategories(direct RelevanceResult, indirect ImpactResult) (string, string) {
	indirectOrNone := "none"
	if indirect.HasImpact {
		indirectOrNone = indirect.ImpactCategory
	}

	if direct.Category == CategoryDirectSNF {
		return CategoryDirectSNF, indirectOrNone
	}
	if direct.MAImpact && direct.Score >= 60 {
		return direct.Category, indirectOrNone
	}
	if indirect.HasImpact && indirect.RelevanceScore >= 60 && direct.Score < 50 {
		return indirect.ImpactCategory, direct.Category
	}
	if direct.MAImpact {
		return direct.Category, indirectOrNone
	}
	if indirect.HasImpact && indirect.RelevanceScore >= 40 {
		return indirect.ImpactCategory, direct.Category
	}
	return direct.Category, indirectOrNone
}

// fuseScores blends the two scores with the weighting appropriate to the
// chosen primary category.
func fuseScores(direct RelevanceResult, indirect ImpactResult, primary string) float64 {
	directScore := direct.Score
	indirectScore := 0.0
	if indirect.HasImpact {
		indirectScore = indirect.RelevanceScore
	}

	var final float64
	switch {
	case primary == CategoryDirectSNF:
		boost := math.Min(indirectScore*0.2, 15)
		final = math.Min(directScore+boost, 100)
	case strings.HasPrefix(primary, "ma_"):
		boost := math.Min(indirectScore*0.15, 10)
		final = math.Min(directScore+boost, 95)
	case primary == ImpactPaymentCritical || primary == ImpactCompetitionDirect || primary == ImpactWorkforceCritical:
		boost := math.Min(directScore*0.25, 15)
		final = math.Min(indirectScore+boost, 85)
	case indirect.HasImpact:
		final = indirectScore*0.7 + directScore*0.3
	default:
		final = directScore
	}

	return math.Round(final*10) / 10
}

func determinePriority(primary string, direct RelevanceResult, indirect ImpactResult) string {
	if primary == CategoryDirectSNF && direct.Score >= 85 {
		return PriorityCritical
	}
	if primary == CategoryMAPayment && direct.Score >= 75 {
		return PriorityCritical
	}
	if primary == ImpactPaymentCritical {
		return PriorityCritical
	}

	if primary == CategoryDirectSNF && direct.Score >= 70 {
		return PriorityHigh
	}
	if direct.MAImpact && direct.Score >= 60 {
		return PriorityHigh
	}
	if primary == ImpactCompetitionDirect || primary == ImpactWorkforceCritical {
		return PriorityHigh
	}

	if strings.HasPrefix(primary, "ma_") || indirect.HasImpact {
		return PriorityModerate
	}
	return PriorityLow
}

func fuseExplanation(indirect ImpactResult, primary string, finalScore float64) string {
	var parts []string

	switch {
	case primary == CategoryDirectSNF:
		parts = append(parts,
			fmt.Sprintf("Direct SNF legislation (Score: %.1f/100)", finalScore),
			"Explicitly addresses skilled nursing facilities")
	case strings.HasPrefix(primary, "ma_"):
		parts = append(parts,
			fmt.Sprintf("Medicare Advantage impact (Score: %.1f/100)", finalScore),
			"Affects SNF operations through MA plans (30-40% of SNF revenue)")
	case primary == ImpactPaymentCritical:
		parts = append(parts,
			fmt.Sprintf("Critical payment impact (Score: %.1f/100)", finalScore),
			"Affects SNF cash flow and financial operations")
	case primary == ImpactCompetitionDirect:
		parts = append(parts,
			fmt.Sprintf("Direct competitive impact (Score: %.1f/100)", finalScore),
			"Changes affect SNF referral patterns and census")
	case primary == ImpactWorkforceCritical:
		parts = append(parts,
			fmt.Sprintf("Critical workforce impact (Score: %.1f/100)", finalScore),
			"SNFs face severe staffing shortages - workforce changes have major impact")
	}

	if indirect.HasImpact && primary != indirect.ImpactCategory {
		parts = append(parts, "Additional "+strings.ReplaceAll(indirect.ImpactCategory, "_", " ")+" detected")
	}

	return strings.Join(parts, " | ")
}

func recommendations(primary string, finalScore float64) []string {
	switch {
	case primary == CategoryDirectSNF && finalScore >= 85:
		return []string{
			"Monitor implementation timeline closely",
			"Assess impact on facility operations and compliance",
			"Prepare staff training if needed",
		}
	case primary == CategoryMAPayment && finalScore >= 75:
		return []string{
			"Track progress through relevant committees",
			"Assess impact on cash flow and working capital",
			"Monitor industry association advocacy efforts",
		}
	case primary == ImpactPaymentCritical:
		return []string{
			"Monitor for SNF-specific impacts",
			"Track payment timing requirements",
			"Assess cash flow implications",
		}
	case primary == ImpactCompetitionDirect:
		return []string{
			"Monitor competitor payment rate changes",
			"Assess impact on referral patterns",
			"Review market positioning strategy",
		}
	case primary == ImpactWorkforceCritical:
		return []string{
			"Assess staffing recruitment impacts",
			"Monitor wage and benefit implications",
			"Review workforce development opportunities",
		}
	case finalScore >= 50:
		return []string{
			"Quarterly monitoring sufficient",
			"Watch for SNF-specific amendments",
			"Monitor industry impact assessments",
		}
	default:
		return []string{"Low priority - annual review adequate"}
	}
}

func emptyResult(reason string) ComprehensiveResult {
	return ComprehensiveResult{
		FinalScore:         0.0,
		PrimaryCategory:    CategoryInvalid,
		SecondaryCategory:  "none",
		Confidence:         0.1,
		Explanation:        reason,
		MAImpact:           false,
		IndirectImpact:     false,
		MonitoringPriority: PriorityNone,
		ContextNotes:       []string{},
		SpecificImpacts:    []string{},
		RecommendedActions: []string{},
	}
}
