// Package maintenance exposes a cron-secret protected endpoint for
// operational housekeeping of the in-process login throttle.
package maintenance

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/claudiu-deving/APIServer/internal/auth"
	"github.com/claudiu-deving/APIServer/internal/observability"
)

type CleanupHandler struct {
	tracker    *auth.AttemptTracker
	logger     *observability.Logger
	cronSecret string
	retention  time.Duration
}

func NewCleanupHandler(tracker *auth.AttemptTracker, logger *observability.Logger, cronSecret string, retention time.Duration) *CleanupHandler {
	return &CleanupHandler{
		tracker:    tracker,
		logger:     logger,
		cronSecret: strings.TrimSpace(cronSecret),
		retention:  retention,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Without a configured secret the endpoint does not exist.
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	pruned := h.tracker.Prune(h.retention)
	tracked := h.tracker.Tracked()

	h.logger.Info("throttle_cleanup_completed", map[string]any{
		"pruned_usernames":  pruned,
		"tracked_usernames": tracked,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"result": map[string]int{
			"pruned_usernames":  pruned,
			"tracked_usernames": tracked,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
