package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protected(t *testing.T) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetSubjectFromCtx(r.Context())))
	})
	return RequireAuth(testSecret)(next)
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	token, err := IssueToken(testSecret, "analyst", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	protected(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "analyst", w.Body.String())
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	protected(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken("other-secret", "analyst", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	protected(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	token, err := IssueToken(testSecret, "analyst", -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	protected(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsMalformedToken(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	protected(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
