package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLLMResponse(t *testing.T) {
	text := `- Relevant: Yes
- Impact Type: Financial
- Relevance Score: 85
- Explanation: Changes Medicare Advantage payment timelines that SNFs depend on.`

	result := parseLLMResponse(text)

	assert.True(t, result.Relevant)
	assert.Equal(t, "financial", result.ImpactType)
	assert.Equal(t, 85, result.RelevanceScore)
	assert.Equal(t, "Changes Medicare Advantage payment timelines that SNFs depend on.", result.Explanation)
}

func TestParseLLMResponseCaseInsensitive(t *testing.T) {
	text := `relevant: NO
impact type: WORKFORCE
relevance score: 12
explanation: Marginal staffing relevance.`

	result := parseLLMResponse(text)

	assert.False(t, result.Relevant)
	assert.Equal(t, "workforce", result.ImpactType)
	assert.Equal(t, 12, result.RelevanceScore)
	assert.Equal(t, "Marginal staffing relevance.", result.Explanation)
}

func TestParseLLMResponseDefaults(t *testing.T) {
	result := parseLLMResponse("The model went off script entirely.")

	assert.False(t, result.Relevant)
	assert.Equal(t, "other", result.ImpactType)
	assert.Equal(t, 0, result.RelevanceScore)
	assert.Equal(t, "No explanation provided", result.Explanation)
}

func TestParseLLMResponseUnknownImpactType(t *testing.T) {
	text := `- Relevant: Yes
- Impact Type: Cosmic
- Relevance Score: 40
- Explanation: Strange but scored.`

	result := parseLLMResponse(text)

	assert.True(t, result.Relevant)
	assert.Equal(t, "other", result.ImpactType, "unrecognized impact types fall back to other")
	assert.Equal(t, 40, result.RelevanceScore)
}

func TestParseLLMResponseStopsExplanationAtNewline(t *testing.T) {
	text := "- Explanation: First line only.\nSecond line is trailing chatter."

	result := parseLLMResponse(text)

	assert.Equal(t, "First line only.", result.Explanation)
}

func TestLLMClassifyWithoutKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	result := LLMClassify(context.Background(), "Some bill", "Some summary")

	assert.False(t, result.Relevant)
	assert.Equal(t, "other", result.ImpactType)
	assert.Equal(t, 0, result.RelevanceScore)
	assert.Equal(t, "Anthropic API key not configured", result.Explanation)
	assert.Equal(t, "llm", result.Classifier)
}
