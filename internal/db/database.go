package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pacadvocate/legtracker-go/internal/classify"
	"github.com/pacadvocate/legtracker-go/internal/finance"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Database wraps the pgx connection pool.
type Database struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection to Postgres and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Database{pool: pool}, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (d *Database) Migrate(ctx context.Context) error {
	schema, err := migrationsFS.ReadFile("migrations/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := d.pool.Exec(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (d *Database) Close() {
	d.pool.Close()
}

// Ping verifies the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

const billColumns = `id, bill_number, title, summary, full_text, source, state_or_federal,
	status, sponsor, chamber, introduced_date, last_action_date, is_active,
	relevance_score, primary_category, secondary_category, ma_impact, indirect_impact,
	monitoring_priority, confidence, explanation, recommended_actions, scored_at,
	per_bed_daily_impact, annual_facility_impact, medicare_rate_change_percent,
	medicaid_rate_change_percent, financial_impact_category, financial_summary,
	created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(
		&b.ID, &b.BillNumber, &b.Title, &b.Summary, &b.FullText, &b.Source, &b.StateOrFederal,
		&b.Status, &b.Sponsor, &b.Chamber, &b.IntroducedDate, &b.LastActionDate, &b.IsActive,
		&b.RelevanceScore, &b.PrimaryCategory, &b.SecondaryCategory, &b.MAImpact, &b.IndirectImpact,
		&b.MonitoringPriority, &b.Confidence, &b.Explanation, &b.RecommendedActions, &b.ScoredAt,
		&b.PerBedDailyImpact, &b.AnnualFacilityImpact, &b.MedicareRateChangePercent,
		&b.MedicaidRateChangePercent, &b.FinancialImpactCategory, &b.FinancialSummary,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.RecommendedActions == nil {
		b.RecommendedActions = []string{}
	}
	return &b, nil
}

// UpsertBill inserts a bill or refreshes its descriptive fields, keyed on
// bill_number. Analysis columns are left untouched so re-collection does not
// wipe existing scores.
func (d *Database) UpsertBill(ctx context.Context, b *Bill) (*Bill, error) {
	row := d.pool.QueryRow(ctx, `
		INSERT INTO bills (bill_number, title, summary, full_text, source, state_or_federal,
			status, sponsor, chamber, introduced_date, last_action_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (bill_number) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			full_text = EXCLUDED.full_text,
			source = EXCLUDED.source,
			state_or_federal = EXCLUDED.state_or_federal,
			status = EXCLUDED.status,
			sponsor = EXCLUDED.sponsor,
			chamber = EXCLUDED.chamber,
			introduced_date = EXCLUDED.introduced_date,
			last_action_date = EXCLUDED.last_action_date,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING `+billColumns,
		b.BillNumber, b.Title, b.Summary, b.FullText, b.Source, b.StateOrFederal,
		b.Status, b.Sponsor, b.Chamber, b.IntroducedDate, b.LastActionDate, b.IsActive,
	)
	return scanBill(row)
}

// GetBill fetches a bill by id.
func (d *Database) GetBill(ctx context.Context, id int64) (*Bill, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id)
	return scanBill(row)
}

// GetBillByNumber fetches a bill by its external bill number.
func (d *Database) GetBillByNumber(ctx context.Context, billNumber string) (*Bill, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE bill_number = $1`, billNumber)
	return scanBill(row)
}

// ListBills returns bills matching the filter, highest relevance first with
// unscored bills last.
func (d *Database) ListBills(ctx context.Context, filter BillFilter) ([]*Bill, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.MinScore > 0 {
		where = append(where, "relevance_score >= "+arg(filter.MinScore))
	}
	if filter.Category != "" {
		where = append(where, "primary_category = "+arg(filter.Category))
	}
	if filter.Priority != "" {
		where = append(where, "monitoring_priority = "+arg(filter.Priority))
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if filter.Unscored {
		where = append(where, "relevance_score IS NULL")
	}

	query := `SELECT ` + billColumns + ` FROM bills`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY relevance_score DESC NULLS LAST, last_action_date DESC NULLS LAST"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// ListUnscoredBills returns active bills that have never been scored, oldest
// first so the analyzer drains the backlog in arrival order.
func (d *Database) ListUnscoredBills(ctx context.Context, limit int) ([]*Bill, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.pool.Query(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE relevance_score IS NULL AND is_active = TRUE
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UpdateBillScore writes a classification result onto the bill's analysis
// columns.
func (d *Database) UpdateBillScore(ctx context.Context, id int64, res *classify.ComprehensiveResult) error {
	actions := res.RecommendedActions
	if actions == nil {
		actions = []string{}
	}
	tag, err := d.pool.Exec(ctx, `
		UPDATE bills SET
			relevance_score = $2,
			primary_category = $3,
			secondary_category = $4,
			ma_impact = $5,
			indirect_impact = $6,
			monitoring_priority = $7,
			confidence = $8,
			explanation = $9,
			recommended_actions = $10,
			scored_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`,
		id, res.FinalScore, res.PrimaryCategory, nullableString(res.SecondaryCategory),
		res.MAImpact, res.IndirectImpact, res.MonitoringPriority, res.Confidence,
		res.Explanation, actions,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateBillFinancials writes a financial projection onto the bill.
func (d *Database) UpdateBillFinancials(ctx context.Context, id int64, impact *finance.Impact) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE bills SET
			per_bed_daily_impact = $2,
			annual_facility_impact = $3,
			medicare_rate_change_percent = $4,
			medicaid_rate_change_percent = $5,
			financial_impact_category = $6,
			financial_summary = $7,
			updated_at = NOW()
		WHERE id = $1`,
		id, impact.PerBedDailyImpact, impact.AnnualFacilityImpact,
		impact.MedicareRateChangePercent, impact.MedicaidRateChangePercent,
		impact.Category, impact.Summary,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBillActive flips the active flag, e.g. when a bill dies in committee.
func (d *Database) SetBillActive(ctx context.Context, id int64, active bool) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE bills SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBill removes a bill.
func (d *Database) DeleteBill(ctx context.Context, id int64) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertAnalysisRun records the start of a batch pass and returns its id.
func (d *Database) InsertAnalysisRun(ctx context.Context, trigger string) (int64, error) {
	var id int64
	err := d.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (trigger) VALUES ($1) RETURNING id`, trigger).Scan(&id)
	return id, err
}

// FinishAnalysisRun closes out a batch pass with its counters.
func (d *Database) FinishAnalysisRun(ctx context.Context, id int64, processed, scored, failed int, notes string) error {
	var n *string
	if notes != "" {
		n = &notes
	}
	_, err := d.pool.Exec(ctx, `
		UPDATE analysis_runs SET
			finished_at = NOW(),
			bills_processed = $2,
			bills_scored = $3,
			bills_failed = $4,
			notes = $5
		WHERE id = $1`,
		id, processed, scored, failed, n)
	return err
}

// GetRecentAnalysisRuns returns the latest batch passes, newest first.
func (d *Database) GetRecentAnalysisRuns(ctx context.Context, limit int) ([]*AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.pool.Query(ctx, `
		SELECT id, trigger, started_at, finished_at, bills_processed, bills_scored, bills_failed, notes
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		var r AnalysisRun
		if err := rows.Scan(&r.ID, &r.Trigger, &r.StartedAt, &r.FinishedAt,
			&r.BillsProcessed, &r.BillsScored, &r.BillsFailed, &r.Notes); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// GetStats returns the dashboard headline numbers in one query.
func (d *Database) GetStats(ctx context.Context) (*Stats, error) {
	var (
		s         Stats
		lastRunAt *time.Time
	)
	err := d.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM bills),
			(SELECT COUNT(*) FROM bills WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM bills WHERE relevance_score IS NOT NULL),
			(SELECT COUNT(*) FROM bills WHERE monitoring_priority IN ('High', 'Critical')),
			(SELECT AVG(relevance_score) FROM bills WHERE relevance_score IS NOT NULL),
			(SELECT MAX(started_at) FROM analysis_runs),
			(SELECT COUNT(*) FROM bills WHERE created_at > NOW() - INTERVAL '24 hours'),
			(SELECT COUNT(*) FROM bills WHERE scored_at > NOW() - INTERVAL '24 hours'),
			(SELECT SUM(annual_facility_impact) FROM bills WHERE annual_facility_impact IS NOT NULL)
	`).Scan(&s.TotalBills, &s.ActiveBills, &s.ScoredBills, &s.HighPriority,
		&s.AvgRelevance, &lastRunAt, &s.BillsLast24h, &s.ScoredLast24h, &s.TotalAnnualCost)
	if err != nil {
		return nil, err
	}
	if lastRunAt != nil {
		formatted := lastRunAt.UTC().Format(time.RFC3339)
		s.LastRunAt = &formatted
	}
	return &s, nil
}

// GetCategoryDistribution returns scored-bill counts per primary category.
func (d *Database) GetCategoryDistribution(ctx context.Context) ([]*CategoryCount, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT primary_category, COUNT(*), COALESCE(AVG(relevance_score), 0)
		FROM bills
		WHERE primary_category IS NOT NULL
		GROUP BY primary_category
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count, &c.AvgScore); err != nil {
			return nil, err
		}
		counts = append(counts, &c)
	}
	return counts, rows.Err()
}

// GetPriorityCounts returns scored-bill counts per monitoring priority.
func (d *Database) GetPriorityCounts(ctx context.Context) ([]*PriorityCount, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT monitoring_priority, COUNT(*)
		FROM bills
		WHERE monitoring_priority IS NOT NULL
		GROUP BY monitoring_priority
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*PriorityCount
	for rows.Next() {
		var p PriorityCount
		if err := rows.Scan(&p.Priority, &p.Count); err != nil {
			return nil, err
		}
		counts = append(counts, &p)
	}
	return counts, rows.Err()
}

// GetFinancialSummary aggregates the projected facility impact of every bill
// that carries an estimate.
func (d *Database) GetFinancialSummary(ctx context.Context) (*FinancialSummary, error) {
	var s FinancialSummary
	err := d.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(annual_facility_impact), 0),
			COALESCE(MAX(annual_facility_impact), 0),
			COALESCE(MIN(annual_facility_impact), 0),
			COALESCE(AVG(per_bed_daily_impact), 0)
		FROM bills
		WHERE annual_facility_impact IS NOT NULL`).
		Scan(&s.BillsWithEstimates, &s.TotalAnnualImpact, &s.WorstAnnualImpact,
			&s.BestAnnualImpact, &s.AvgPerBedDaily)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
