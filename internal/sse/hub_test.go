package sse

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub(slog.Default())

	ch, cancel := h.Subscribe("events")
	defer cancel()

	h.Publish("events", Event{Type: "stats", Data: []byte(`{"total_bills":1}`)})

	ev := <-ch
	assert.Equal(t, "stats", ev.Type)
	assert.JSONEq(t, `{"total_bills":1}`, string(ev.Data))
}

func TestPublishIgnoresOtherTopics(t *testing.T) {
	h := NewHub(slog.Default())

	ch, cancel := h.Subscribe("events")
	defer cancel()

	h.Publish("other", Event{Type: "run"})
	assert.Empty(t, ch)
}

func TestCancelRemovesSubscriber(t *testing.T) {
	h := NewHub(slog.Default())

	_, cancel := h.Subscribe("events")
	require.Equal(t, 1, h.SubscriberCount("events"))

	cancel()
	assert.Equal(t, 0, h.SubscriberCount("events"))
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub(slog.Default())

	ch, cancel := h.Subscribe("events")
	defer cancel()

	// Fill the buffer past capacity; Publish must never block.
	for i := 0; i < 100; i++ {
		h.Publish("events", Event{Type: "bill_scored"})
	}
	assert.Len(t, ch, cap(ch))
}

// Cancelling a subscriber while publishes are in flight must never send on a
// closed channel. Run with -race to catch regressions in the hub locking.
func TestConcurrentPublishAndCancel(t *testing.T) {
	h := NewHub(slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		_, cancel := h.Subscribe("events")

		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish("events", Event{Type: "stats"})
			}
		}()
		go func() {
			defer wg.Done()
			cancel()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.SubscriberCount("events"))
}
