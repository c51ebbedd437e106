package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBucket(t *testing.T) {
	l := New()
	bucket := Bucket{MaxRequests: 3, Window: time.Minute}

	assert.True(t, l.Allow("k", bucket))
	assert.True(t, l.Allow("k", bucket))
	assert.True(t, l.Allow("k", bucket))
	assert.False(t, l.Allow("k", bucket), "fourth request exceeds the bucket")
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	bucket := Bucket{MaxRequests: 1, Window: time.Minute}

	assert.True(t, l.Allow("a", bucket))
	assert.False(t, l.Allow("a", bucket))
	assert.True(t, l.Allow("b", bucket))
}

func TestCheckWrites429(t *testing.T) {
	l := New()

	var lastCode int
	for i := 0; i < DefaultBuckets["analysis"].MaxRequests+1; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/analysis/run", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		l.Check(w, r, "analysis")
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestCheckUsesRealIPHeader(t *testing.T) {
	l := New()
	bucket := DefaultBuckets["collector"]

	for i := 0; i < bucket.MaxRequests; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/collector/run", nil)
		r.Header.Set("X-Real-IP", "1.2.3.4")
		require.False(t, l.Check(w, r, "collector"))
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/collector/run", nil)
	r.Header.Set("X-Real-IP", "1.2.3.4")
	assert.True(t, l.Check(w, r, "collector"))

	// Different client, same bucket: not limited.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/collector/run", nil)
	r.Header.Set("X-Real-IP", "5.6.7.8")
	assert.False(t, l.Check(w, r, "collector"))
}

func TestPacerEnforcesMinInterval(t *testing.T) {
	p := NewPacer(30*time.Millisecond, 100)
	ctx := t.Context()

	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestPacerHonoursCancellation(t *testing.T) {
	p := NewPacer(time.Hour, 1)
	require.NoError(t, p.Wait(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := p.Wait(ctx)
	assert.Error(t, err)
}
