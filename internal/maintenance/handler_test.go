package maintenance

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claudiu-deving/APIServer/internal/auth"
	"github.com/claudiu-deving/APIServer/internal/observability"
)

func doCleanup(handler *CleanupHandler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/cleanup", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestCleanupHiddenWithoutSecret(t *testing.T) {
	handler := NewCleanupHandler(auth.NewAttemptTracker(5, 5*time.Minute), observability.NewLogger(), "", time.Hour)

	rec := doCleanup(handler, "anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanupRejectsWrongSecret(t *testing.T) {
	handler := NewCleanupHandler(auth.NewAttemptTracker(5, 5*time.Minute), observability.NewLogger(), "cron-secret", time.Hour)

	rec := doCleanup(handler, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doCleanup(handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCleanupPrunesIdleEntries(t *testing.T) {
	tracker := auth.NewAttemptTracker(5, 5*time.Minute)
	tracker.CheckAndRecord("alice")
	handler := NewCleanupHandler(tracker, observability.NewLogger(), "cron-secret", time.Hour)

	rec := doCleanup(handler, "cron-secret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tracked_usernames":1`)
	assert.Contains(t, rec.Body.String(), `"pruned_usernames":0`)
}
