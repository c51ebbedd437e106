package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer throttles outbound calls to an upstream API: a minimum interval
// between consecutive calls plus a hard cap per rolling hour.
type Pacer struct {
	mu          sync.Mutex
	minInterval time.Duration
	hourlyMax   int
	lastCall    time.Time
	calls       []time.Time
}

// NewPacer creates a pacer with the given minimum spacing and hourly cap.
func NewPacer(minInterval time.Duration, hourlyMax int) *Pacer {
	return &Pacer{minInterval: minInterval, hourlyMax: hourlyMax}
}

// Wait blocks until the next call is permitted or the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		now := time.Now()
		delay := p.delayLocked(now)
		if delay <= 0 {
			p.lastCall = now
			p.calls = append(p.calls, now)
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Pacer) delayLocked(now time.Time) time.Duration {
	cutoff := now.Add(-time.Hour)
	pruned := p.calls[:0]
	for _, t := range p.calls {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}
	p.calls = pruned

	if !p.lastCall.IsZero() {
		if since := now.Sub(p.lastCall); since < p.minInterval {
			return p.minInterval - since
		}
	}
	if p.hourlyMax > 0 && len(p.calls) >= p.hourlyMax {
		return p.calls[0].Add(time.Hour).Sub(now)
	}
	return 0
}
