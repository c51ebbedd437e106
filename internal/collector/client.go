// Package collector pulls CMS rulemaking documents from the Federal Register
// API and stores them as trackable bills.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/pacadvocate/legtracker-go/internal/ratelimit"
)

const (
	defaultBaseURL = "https://www.federalregister.gov/api/v1"
	httpTimeout    = 30 * time.Second
	maxResponseLen = 4 << 20 // 4 MiB
	userAgent      = "SNFLegTracker/1.0 (Legislative Tracking Platform)"

	// Conservative: the API allows far more, but one poll cycle needs only a
	// handful of calls.
	requestsPerHour = 1000
)

// Agency is one issuing agency on a Federal Register document.
type Agency struct {
	Name string `json:"name"`
}

// Document is a Federal Register document as returned by documents.json.
type Document struct {
	DocumentNumber  string   `json:"document_number"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Type            string   `json:"type"`
	PublicationDate string   `json:"publication_date"`
	EffectiveOn     string   `json:"effective_on"`
	HTMLURL         string   `json:"html_url"`
	PDFURL          string   `json:"pdf_url"`
	Agencies        []Agency `json:"agencies"`
	Topics          []string `json:"topics"`
}

// SearchResult is one page of documents.json results.
type SearchResult struct {
	Count   int        `json:"count"`
	Results []Document `json:"results"`
}

// SearchQuery narrows a documents.json search.
type SearchQuery struct {
	Agencies      []string
	Term          string
	DocumentTypes []string
	DateFrom      string // YYYY-MM-DD
	DateTo        string
	PerPage       int
	Page          int
}

// Client is a rate-limited HTTP client for the Federal Register API.
type Client struct {
	baseURL string
	http    *http.Client
	pacer   *ratelimit.Pacer
}

// NewClient creates a Federal Register API client. The optional
// FEDERAL_REGISTER_API_URL environment variable overrides the base URL.
func NewClient() *Client {
	base := os.Getenv("FEDERAL_REGISTER_API_URL")
	if base == "" {
		base = defaultBaseURL
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: httpTimeout},
		pacer:   ratelimit.NewPacer(time.Hour/requestsPerHour, requestsPerHour),
	}
}

// SearchDocuments queries documents.json with the given conditions.
func (c *Client) SearchDocuments(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	perPage := q.PerPage
	if perPage <= 0 || perPage > 1000 {
		perPage = 100
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("order", "newest")
	for _, a := range q.Agencies {
		params.Add("conditions[agencies][]", a)
	}
	if q.Term != "" {
		params.Set("conditions[term]", q.Term)
	}
	for _, t := range q.DocumentTypes {
		params.Add("conditions[type][]", t)
	}
	if q.DateFrom != "" {
		params.Set("conditions[publication_date][gte]", q.DateFrom)
	}
	if q.DateTo != "" {
		params.Set("conditions[publication_date][lte]", q.DateTo)
	}

	var resp SearchResult
	if err := c.getJSON(ctx, "documents.json", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDocument fetches the detail record for one document number.
func (c *Client) GetDocument(ctx context.Context, documentNumber string) (*Document, error) {
	var doc Document
	if err := c.getJSON(ctx, "documents/"+documentNumber+".json", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("collector: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("collector: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return fmt.Errorf("collector: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector: %s returned status %d", endpoint, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("collector: decode response: %w", err)
	}
	return nil
}
