package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/grovetrack/importflow/internal/middleware"
)

// runArchive moves rejected shipments older than the cutoff into the
// archive table. Admin-only; the route is wrapped in RequireAdmin.
func (r *Router) runArchive(w http.ResponseWriter, req *http.Request) {
	var body struct {
		OlderThanDays int `json:"olderThanDays"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.OlderThanDays < 0 {
		respondValidation(w, []string{"olderThanDays must not be negative"})
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -body.OlderThanDays)
	count, err := r.archive.ArchiveRejected(cutoff, middleware.ClaimsFrom(req).Email())
	if err != nil {
		r.respondInternal(w, "Archive run failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"archived": count})
}
