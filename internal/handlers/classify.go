package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pacadvocate/legtracker-go/internal/classify"
	"github.com/pacadvocate/legtracker-go/internal/ratelimit"
)

// ClassifyHandler serves the public ad-hoc classification endpoint.
type ClassifyHandler struct {
	classifier *classify.Classifier
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

func NewClassifyHandler(classifier *classify.Classifier, limiter *ratelimit.Limiter, logger *slog.Logger) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier, limiter: limiter, logger: logger}
}

type classifyRequest struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	FullText string `json:"full_text"`
	UseLLM   bool   `json:"use_llm"`
}

// Classify handles POST /v1/classify. The keyword pipeline always runs; the
// LLM pass is opt-in and degrades to a sentinel when no API key is set.
func (ch *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	if ch.limiter.Check(w, r, "classify") {
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := ch.classifier.Analyze(req.Title, req.Summary, req.FullText)

	response := map[string]any{"classification": result}
	if req.UseLLM {
		response["llm"] = classify.LLMClassify(r.Context(), req.Title, req.Summary)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
