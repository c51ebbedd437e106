package collector

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pacadvocate/legtracker-go/internal/db"
)

// CMS agency identifiers on the Federal Register.
var cmsAgencies = []string{
	"centers-for-medicare-medicaid-services",
	"health-and-human-services-department",
}

var defaultDocumentTypes = []string{"RULE", "PRORULE", "NOTICE"}

// DefaultSearchTerms are the queries run on each scheduled poll.
var DefaultSearchTerms = []string{
	"skilled nursing facility",
	"nursing home",
	"Medicare Advantage",
	"long-term care",
}

// Result summarizes one collection pass.
type Result struct {
	Fetched int `json:"fetched"`
	Stored  int `json:"stored"`
	Failed  int `json:"failed"`
}

// Collector polls the Federal Register and upserts matching documents as
// bills.
type Collector struct {
	client *Client
	db     *db.Database
	logger *slog.Logger
}

// New creates a collector.
func New(client *Client, database *db.Database, logger *slog.Logger) *Collector {
	return &Collector{client: client, db: database, logger: logger}
}

// Collect runs one pass: each search term against the CMS agencies over the
// given lookback window, deduplicated by document number.
func (c *Collector) Collect(ctx context.Context, terms []string, lookback time.Duration, limit int) (*Result, error) {
	if len(terms) == 0 {
		terms = DefaultSearchTerms
	}
	if limit <= 0 {
		limit = 200
	}
	dateFrom := time.Now().Add(-lookback).Format("2006-01-02")

	res := &Result{}
	seen := make(map[string]struct{})

	for _, term := range terms {
		if res.Fetched >= limit {
			break
		}
		page := 1
		for res.Fetched < limit {
			resp, err := c.client.SearchDocuments(ctx, SearchQuery{
				Agencies:      cmsAgencies,
				Term:          term,
				DocumentTypes: defaultDocumentTypes,
				DateFrom:      dateFrom,
				PerPage:       100,
				Page:          page,
			})
			if err != nil {
				c.logger.Error("federal register search failed", "term", term, "err", err)
				res.Failed++
				break
			}
			if len(resp.Results) == 0 {
				break
			}

			for i := range resp.Results {
				doc := &resp.Results[i]
				if doc.DocumentNumber == "" {
					continue
				}
				if _, dup := seen[doc.DocumentNumber]; dup {
					continue
				}
				seen[doc.DocumentNumber] = struct{}{}
				res.Fetched++

				if err := c.storeDocument(ctx, doc); err != nil {
					c.logger.Error("store document failed",
						"document", doc.DocumentNumber, "err", err)
					res.Failed++
					continue
				}
				res.Stored++
			}

			if len(resp.Results) < 100 {
				break
			}
			page++
		}
	}

	c.logger.Info("collection pass finished",
		"fetched", res.Fetched, "stored", res.Stored, "failed", res.Failed)
	return res, nil
}

// Run polls on the given interval until the context is cancelled. Meant to be
// supervised by server.RunWithRecovery.
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Collect(ctx, nil, 30*24*time.Hour, 200); err != nil {
				c.logger.Error("scheduled collection failed", "err", err)
			}
		}
	}
}

func (c *Collector) storeDocument(ctx context.Context, doc *Document) error {
	// Federal Register metadata rides in full_text so the analyzer sees the
	// topics and agency names too.
	metadata, err := json.Marshal(map[string]any{
		"document_type":   doc.Type,
		"document_number": doc.DocumentNumber,
		"agencies":        agencyNames(doc.Agencies),
		"topics":          doc.Topics,
		"html_url":        doc.HTMLURL,
		"pdf_url":         doc.PDFURL,
	})
	if err != nil {
		return err
	}

	chamber := "executive"
	sponsor := primaryAgency(doc.Agencies)
	bill := &db.Bill{
		BillNumber:     "FR-" + doc.DocumentNumber,
		Title:          doc.Title,
		Summary:        doc.Abstract,
		FullText:       string(metadata),
		Source:         "federal_register",
		StateOrFederal: "federal",
		Status:         documentStatus(doc.Type),
		Sponsor:        &sponsor,
		Chamber:        &chamber,
		IntroducedDate: parseDate(doc.PublicationDate),
		LastActionDate: parseDate(doc.EffectiveOn),
		IsActive:       true,
	}

	_, err = c.db.UpsertBill(ctx, bill)
	return err
}

func documentStatus(docType string) string {
	switch docType {
	case "Rule", "RULE":
		return "Final Rule"
	case "Proposed Rule", "PRORULE":
		return "Proposed Rule"
	case "Notice", "NOTICE":
		return "Notice"
	}
	return "Published"
}

func primaryAgency(agencies []Agency) string {
	if len(agencies) > 0 && agencies[0].Name != "" {
		return agencies[0].Name
	}
	return "Centers for Medicare & Medicaid Services"
}

func agencyNames(agencies []Agency) []string {
	names := make([]string, 0, len(agencies))
	for _, a := range agencies {
		names = append(names, a.Name)
	}
	return names
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
