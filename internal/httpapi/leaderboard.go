package httpapi

import (
	"net/http"

	"footybrain/internal/authgate"
)

func (s *Server) handleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	displayName := r.URL.Query().Get("display_name")
	if displayName == "" {
		displayName = user.UserID
	}
	result, err := s.leaderboard.GlobalLeaderboard(r.Context(), user.UserID, displayName)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"entries":       result.Entries,
		"my_entry":      result.MyEntry,
		"total_coaches": result.TotalCoaches,
	})
}
