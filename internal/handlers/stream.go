package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pacadvocate/legtracker-go/internal/db"
	"github.com/pacadvocate/legtracker-go/internal/sse"
)

// StreamHandler serves the SSE feed of analysis events.
type StreamHandler struct {
	hub *sse.Hub
	db  *db.Database
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *sse.Hub, database *db.Database) *StreamHandler {
	return &StreamHandler{hub: hub, db: database}
}

// HandleSSE handles GET /api/stream/events. It sends an initial hydration
// payload of current stats and recent runs, then streams live events with
// periodic keepalives.
func (sh *StreamHandler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Hydrate with current state
	stats, _ := sh.db.GetStats(r.Context())
	if stats != nil {
		data, _ := json.Marshal(stats)
		fmt.Fprintf(w, "event: stats\ndata: %s\n\n", data)
	}

	runs, _ := sh.db.GetRecentAnalysisRuns(r.Context(), 5)
	for _, run := range runs {
		data, _ := json.Marshal(run)
		fmt.Fprintf(w, "event: run\ndata: %s\n\n", data)
	}
	flusher.Flush()

	// Subscribe to live events
	ch, cancel := sh.hub.Subscribe("events")
	defer cancel()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
