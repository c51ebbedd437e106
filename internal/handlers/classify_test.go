package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacadvocate/legtracker-go/internal/classify"
	"github.com/pacadvocate/legtracker-go/internal/ratelimit"
)

func classifyHandler() *ClassifyHandler {
	return NewClassifyHandler(classify.NewClassifier(), ratelimit.New(), slog.Default())
}

func TestClassifyEndpoint(t *testing.T) {
	body := `{"title":"Skilled Nursing Facility Prospective Payment System update",
		"summary":"Updates SNF PPS rates and the quality reporting program for fiscal year 2027."}`

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(body))
	r.RemoteAddr = "10.1.1.1:5000"
	classifyHandler().Classify(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Classification classify.ComprehensiveResult `json:"classification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, classify.CategoryDirectSNF, resp.Classification.PrimaryCategory)
	assert.GreaterOrEqual(t, resp.Classification.FinalScore, 70.0)
	assert.LessOrEqual(t, resp.Classification.FinalScore, 100.0)
}

func TestClassifyEndpointRejectsBadJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader("{"))
	r.RemoteAddr = "10.1.1.2:5000"
	classifyHandler().Classify(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
}

func TestClassifyEndpointEmptyTitleSentinel(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(`{"title":""}`))
	r.RemoteAddr = "10.1.1.3:5000"
	classifyHandler().Classify(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Classification classify.ComprehensiveResult `json:"classification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Classification.FinalScore)
	assert.Equal(t, classify.CategoryInvalid, resp.Classification.PrimaryCategory)
}

func TestClassifyEndpointRateLimited(t *testing.T) {
	h := classifyHandler()
	bucket := ratelimit.DefaultBuckets["classify"]

	var lastCode int
	for i := 0; i < bucket.MaxRequests+1; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/classify",
			strings.NewReader(`{"title":"Highway funding act"}`))
		r.RemoteAddr = "10.1.1.4:5000"
		h.Classify(w, r)
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
