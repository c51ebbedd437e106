package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pacadvocate/legtracker-go/internal/db"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Manager tracks active WebSocket connections and broadcasts analysis events.
type Manager struct {
	mu          sync.RWMutex
	connections []*websocket.Conn
	logger      *slog.Logger
	db          *db.Database
}

// NewManager creates a new WebSocket manager.
func NewManager(database *db.Database, logger *slog.Logger) *Manager {
	return &Manager{db: database, logger: logger}
}

// HandleWS upgrades an HTTP connection to WebSocket and registers it.
func (m *Manager) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	m.mu.Lock()
	m.connections = append(m.connections, conn)
	m.mu.Unlock()

	// Hydrate: send current stats and the top bills so the dashboard renders
	// immediately.
	m.hydrate(r.Context(), conn)

	defer func() {
		m.mu.Lock()
		for i, c := range m.connections {
			if c == conn {
				m.connections = append(m.connections[:i], m.connections[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		conn.Close()
	}()

	// Keep connection alive, read messages (we ignore them)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (m *Manager) hydrate(ctx context.Context, conn *websocket.Conn) {
	stats, err := m.db.GetStats(ctx)
	if err == nil {
		m.sendJSON(conn, map[string]any{
			"type":          "stats",
			"total_bills":   stats.TotalBills,
			"active_bills":  stats.ActiveBills,
			"scored_bills":  stats.ScoredBills,
			"high_priority": stats.HighPriority,
			"avg_relevance": stats.AvgRelevance,
			"last_run_at":   stats.LastRunAt,
		})
	}

	bills, err := m.db.ListBills(ctx, db.BillFilter{MinScore: 50, Limit: 20})
	if err == nil {
		for i := len(bills) - 1; i >= 0; i-- {
			b := bills[i]
			m.sendJSON(conn, map[string]any{
				"type":                "bill_scored",
				"bill_id":             b.ID,
				"bill_number":         b.BillNumber,
				"title":               truncate(b.Title, 120),
				"relevance_score":     b.RelevanceScore,
				"primary_category":    b.PrimaryCategory,
				"monitoring_priority": b.MonitoringPriority,
			})
		}
	}

	runs, err := m.db.GetRecentAnalysisRuns(ctx, 5)
	if err == nil {
		for i := len(runs) - 1; i >= 0; i-- {
			run := runs[i]
			status := "running"
			if run.FinishedAt != nil {
				status = "done"
			}
			m.sendJSON(conn, map[string]any{
				"type":            "run",
				"run_id":          run.ID,
				"trigger":         run.Trigger,
				"status":          status,
				"bills_processed": run.BillsProcessed,
				"bills_scored":    run.BillsScored,
				"bills_failed":    run.BillsFailed,
			})
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (m *Manager) Broadcast(data map[string]any) {
	m.mu.RLock()
	conns := make([]*websocket.Conn, len(m.connections))
	copy(conns, m.connections)
	m.mu.RUnlock()

	var dead []*websocket.Conn
	for _, conn := range conns {
		if err := m.sendJSON(conn, data); err != nil {
			dead = append(dead, conn)
		}
	}

	if len(dead) > 0 {
		m.mu.Lock()
		for _, d := range dead {
			for i, c := range m.connections {
				if c == d {
					m.connections = append(m.connections[:i], m.connections[i+1:]...)
					d.Close()
					break
				}
			}
		}
		m.mu.Unlock()
	}
}

func (m *Manager) sendJSON(conn *websocket.Conn, data map[string]any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
