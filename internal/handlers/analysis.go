package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pacadvocate/legtracker-go/internal/analyzer"
	"github.com/pacadvocate/legtracker-go/internal/collector"
	"github.com/pacadvocate/legtracker-go/internal/ratelimit"
)

// AnalysisHandler exposes manual triggers for the background loops.
type AnalysisHandler struct {
	loop      *analyzer.Loop
	collector *collector.Collector
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
}

func NewAnalysisHandler(loop *analyzer.Loop, coll *collector.Collector, limiter *ratelimit.Limiter, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{loop: loop, collector: coll, limiter: limiter, logger: logger}
}

// TriggerAnalysis handles POST /api/analysis/run. The batch runs in the
// background; the response acknowledges the trigger immediately.
func (ah *AnalysisHandler) TriggerAnalysis(w http.ResponseWriter, r *http.Request) {
	if ah.limiter.Check(w, r, "analysis") {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		ah.loop.RunOnce(ctx)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// TriggerCollection handles POST /api/collector/run.
func (ah *AnalysisHandler) TriggerCollection(w http.ResponseWriter, r *http.Request) {
	if ah.limiter.Check(w, r, "collector") {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := ah.collector.Collect(ctx, nil, 30*24*time.Hour, 200); err != nil {
			ah.logger.Error("manual collection failed", "err", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}
