// Package analyzer runs the background scoring loop: unscored bills are fed
// through the comprehensive classifier and the financial estimator, results
// are persisted and pushed to connected dashboards.
package analyzer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pacadvocate/legtracker-go/internal/classify"
	"github.com/pacadvocate/legtracker-go/internal/db"
	"github.com/pacadvocate/legtracker-go/internal/finance"
	"github.com/pacadvocate/legtracker-go/internal/sse"
	"github.com/pacadvocate/legtracker-go/internal/ws"
)

const batchSize = 50

// Loop manages the background bill scoring cycle.
type Loop struct {
	db         *db.Database
	classifier *classify.Classifier
	ws         *ws.Manager
	sse        *sse.Hub
	logger     *slog.Logger
	interval   time.Duration
	running    atomic.Bool
}

// NewLoop creates a new analyzer loop.
func NewLoop(database *db.Database, classifier *classify.Classifier, wsManager *ws.Manager, hub *sse.Hub, logger *slog.Logger, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Loop{
		db:         database,
		classifier: classifier,
		ws:         wsManager,
		sse:        hub,
		logger:     logger,
		interval:   interval,
	}
}

// Run starts the scoring loop. It blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	// Wait for server to be ready
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.runBatch(ctx, "schedule")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.interval):
		}
	}
}

// RunResult summarizes one batch pass.
type RunResult struct {
	RunID     int64 `json:"run_id"`
	Processed int   `json:"processed"`
	Scored    int   `json:"scored"`
	Failed    int   `json:"failed"`
}

// RunOnce executes a single batch pass. Used for manual triggers.
func (l *Loop) RunOnce(ctx context.Context) *RunResult {
	return l.runBatch(ctx, "manual")
}

func (l *Loop) runBatch(ctx context.Context, trigger string) *RunResult {
	result := &RunResult{}

	bills, err := l.db.ListUnscoredBills(ctx, batchSize)
	if err != nil {
		l.logger.Error("list unscored bills failed", "err", err)
		return result
	}
	if len(bills) == 0 {
		return result
	}

	runID, err := l.db.InsertAnalysisRun(ctx, trigger)
	if err != nil {
		l.logger.Error("insert analysis run failed", "err", err)
		return result
	}
	result.RunID = runID

	l.logger.Info("analysis batch starting",
		"run_id", runID, "trigger", trigger, "bills", len(bills))

	for _, bill := range bills {
		if ctx.Err() != nil {
			break
		}

		result.Processed++
		if err := l.scoreBill(ctx, bill); err != nil {
			l.logger.Error("scoring failed",
				"bill", bill.BillNumber, "err", err)
			result.Failed++
			continue
		}
		result.Scored++
	}

	if err := l.db.FinishAnalysisRun(ctx, runID,
		result.Processed, result.Scored, result.Failed, ""); err != nil {
		l.logger.Error("finish analysis run failed", "run_id", runID, "err", err)
	}

	l.logger.Info("analysis batch finished",
		"run_id", runID, "processed", result.Processed,
		"scored", result.Scored, "failed", result.Failed)

	l.publish("run", map[string]any{
		"type":            "run",
		"run_id":          runID,
		"trigger":         trigger,
		"status":          "done",
		"bills_processed": result.Processed,
		"bills_scored":    result.Scored,
		"bills_failed":    result.Failed,
	})
	l.broadcastStats(ctx)

	return result
}

func (l *Loop) scoreBill(ctx context.Context, bill *db.Bill) error {
	res := l.classifier.Analyze(bill.Title, bill.Summary, bill.FullText)
	if err := l.db.UpdateBillScore(ctx, bill.ID, &res); err != nil {
		return err
	}

	// Financial projection is best effort; a failure here must not lose the
	// classification that was already persisted.
	impact := finance.EstimateBillImpact(bill.Title, bill.Summary, finance.FacilityParams{})
	if err := l.db.UpdateBillFinancials(ctx, bill.ID, &impact); err != nil {
		l.logger.Warn("financial update failed", "bill", bill.BillNumber, "err", err)
	}

	l.publish("bill_scored", map[string]any{
		"type":                "bill_scored",
		"bill_id":             bill.ID,
		"bill_number":         bill.BillNumber,
		"title":               truncate(bill.Title, 120),
		"relevance_score":     res.FinalScore,
		"primary_category":    res.PrimaryCategory,
		"monitoring_priority": res.MonitoringPriority,
	})
	return nil
}

func (l *Loop) publish(eventType string, payload map[string]any) {
	if l.ws != nil {
		l.ws.Broadcast(payload)
	}
	if l.sse != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		l.sse.Publish("events", sse.Event{Type: eventType, Data: data})
	}
}

func (l *Loop) broadcastStats(ctx context.Context) {
	stats, err := l.db.GetStats(ctx)
	if err != nil {
		return
	}
	l.publish("stats", map[string]any{
		"type":          "stats",
		"total_bills":   stats.TotalBills,
		"active_bills":  stats.ActiveBills,
		"scored_bills":  stats.ScoredBills,
		"high_priority": stats.HighPriority,
		"avg_relevance": stats.AvgRelevance,
	})
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
