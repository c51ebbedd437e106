package collector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("FEDERAL_REGISTER_API_URL", srv.URL)
	return NewClient()
}

func TestSearchDocumentsBuildsConditions(t *testing.T) {
	var gotQuery map[string][]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents.json", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(SearchResult{Count: 1, Results: []Document{
			{DocumentNumber: "2026-12345", Title: "SNF PPS update"},
		}})
	})

	resp, err := client.SearchDocuments(t.Context(), SearchQuery{
		Agencies:      []string{"centers-for-medicare-medicaid-services"},
		Term:          "skilled nursing facility",
		DocumentTypes: []string{"RULE", "PRORULE"},
		DateFrom:      "2026-01-01",
		PerPage:       50,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "2026-12345", resp.Results[0].DocumentNumber)

	assert.Equal(t, []string{"skilled nursing facility"}, gotQuery["conditions[term]"])
	assert.Equal(t, []string{"centers-for-medicare-medicaid-services"}, gotQuery["conditions[agencies][]"])
	assert.Equal(t, []string{"RULE", "PRORULE"}, gotQuery["conditions[type][]"])
	assert.Equal(t, []string{"2026-01-01"}, gotQuery["conditions[publication_date][gte]"])
	assert.Equal(t, []string{"50"}, gotQuery["per_page"])
	assert.Equal(t, []string{"newest"}, gotQuery["order"])
}

func TestSearchDocumentsDefaultsPaging(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(SearchResult{})
	})

	_, err := client.SearchDocuments(t.Context(), SearchQuery{})
	require.NoError(t, err)
}

func TestSearchDocumentsErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SearchDocuments(t.Context(), SearchQuery{})
	assert.ErrorContains(t, err, "status 502")
}

func TestGetDocument(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/2026-99.json", r.URL.Path)
		json.NewEncoder(w).Encode(Document{DocumentNumber: "2026-99", Type: "Rule"})
	})

	doc, err := client.GetDocument(t.Context(), "2026-99")
	require.NoError(t, err)
	assert.Equal(t, "Rule", doc.Type)
}
