package classify

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// LLMResult is the structured output of the model-backed analysis path.
type LLMResult struct {
	Relevant       bool    `json:"relevant"`
	ImpactType     string  `json:"impact_type"`
	RelevanceScore int     `json:"relevance_score"`
	Explanation    string  `json:"explanation"`
	Classifier     string  `json:"classifier"`
	ResponseTimeMs float64 `json:"response_time_ms"`
}

const llmSystemPrompt = `You are an expert healthcare policy analyst specializing in Skilled Nursing Facility (SNF) operations and regulations. Analyze bills for their specific impact on SNFs with precision and focus.`

const llmPromptFormat = `Analyze if this bill affects skilled nursing facilities:
Title: %s
Summary: %s

Consider:
- Direct operational impacts (staffing, compliance, quality measures)
- Payment/reimbursement effects (Medicare, Medicaid, Medicare Advantage)
- Competitive impacts (IRFs, LTCHs, home health taking SNF patients)
- Workforce effects (healthcare staffing shortages affect SNFs)

Response format:
- Relevant: Yes/No
- Impact Type: Direct/Competitive/Financial/Workforce
- Relevance Score: 0-100
- Explanation: One sentence why this matters to SNFs`

var (
	llmRelevantRE    = regexp.MustCompile(`(?i)-?\s*Relevant:\s*(Yes|No)`)
	llmImpactTypeRE  = regexp.MustCompile(`(?i)-?\s*Impact Type:\s*(Direct|Competitive|Financial|Workforce)`)
	llmScoreRE       = regexp.MustCompile(`(?i)-?\s*Relevance Score:\s*(\d+)`)
	llmExplanationRE = regexp.MustCompile(`(?i)-?\s*Explanation:\s*(.+)`)
)

// LLMClassify runs the model-backed relevance analysis. It degrades to a
// sentinel result when no API key is configured or the call fails, so batch
// pipelines can treat it as best-effort.
func LLMClassify(ctx context.Context, title, summary string) *LLMResult {
	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return &LLMResult{
			Relevant:       false,
			ImpactType:     "other",
			RelevanceScore: 0,
			Explanation:    "Anthropic API key not configured",
			Classifier:     "llm",
		}
	}

	start := time.Now()

	client := anthropic.NewClient()

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 500,
		System: []anthropic.TextBlockParam{
			{Text: llmSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(llmPromptFormat, title, summary))),
		},
	})

	elapsed := float64(time.Since(start).Milliseconds())

	if err != nil {
		return &LLMResult{
			Relevant:       false,
			ImpactType:     "other",
			RelevanceScore: 0,
			Explanation:    fmt.Sprintf("Anthropic API error: %v", err),
			Classifier:     "llm",
			ResponseTimeMs: elapsed,
		}
	}

	if len(message.Content) == 0 {
		return &LLMResult{
			Relevant:       false,
			ImpactType:     "other",
			RelevanceScore: 0,
			Explanation:    "Empty model response",
			Classifier:     "llm",
			ResponseTimeMs: elapsed,
		}
	}

	result := parseLLMResponse(strings.TrimSpace(message.Content[0].Text))
	result.Classifier = "llm"
	result.ResponseTimeMs = elapsed
	return result
}

// parseLLMResponse extracts the structured fields from the model's
// line-oriented response. Missing fields fall back to safe defaults rather
// than failing the batch.
func parseLLMResponse(text string) *LLMResult {
	result := &LLMResult{
		Relevant:       false,
		ImpactType:     "other",
		RelevanceScore: 0,
		Explanation:    "No explanation provided",
	}

	if m := llmRelevantRE.FindStringSubmatch(text); m != nil {
		result.Relevant = strings.EqualFold(m[1], "yes")
	}
	if m := llmImpactTypeRE.FindStringSubmatch(text); m != nil {
		result.ImpactType = strings.ToLower(m[1])
	}
	if m := llmScoreRE.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.RelevanceScore = n
		}
	}
	if m := llmExplanationRE.FindStringSubmatch(text); m != nil {
		explanation := m[1]
		if i := strings.IndexByte(explanation, '\n'); i >= 0 {
			explanation = explanation[:i]
		}
		result.Explanation = strings.TrimSpace(explanation)
	}

	return result
}
