package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"footybrain/internal/authgate"
	"footybrain/internal/careers"
)

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		PlayerID      string          `json:"player_id"`
		DisplayName   string          `json:"display_name"`
		OverallRating *int            `json:"overall_rating"`
		CurrentLeague *careers.League `json:"current_league"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.careers.CreatePlayer(r.Context(), careers.CreateInput{
		PlayerID:    in.PlayerID,
		UserID:      user.UserID,
		DisplayName: in.DisplayName,
		Rating:      in.OverallRating,
		League:      in.CurrentLeague,
	})
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "player": p})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	p, err := s.careers.GetPlayer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if p.UserID != user.UserID {
		writeError(w, http.StatusForbidden, "not the owner of this player")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "player": p})
}

func (s *Server) handlePlayerProgress(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID        string          `json:"user_id"`
		OverallRating *int            `json:"overall_rating"`
		CurrentLeague *careers.League `json:"current_league"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	playerID := chi.URLParam(r, "id")
	p, err := s.careers.UpdatePlayerProgress(r.Context(), careers.UpdateProgressInput{
		PlayerID: playerID,
		Rating:   in.OverallRating,
		League:   in.CurrentLeague,
	})
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found or already completed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "player": p})
}

func (s *Server) handleCompletePlayer(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	playerID := chi.URLParam(r, "id")
	p, err := s.careers.GetPlayer(r.Context(), playerID)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if p.UserID != user.UserID {
		writeError(w, http.StatusForbidden, "not the owner of this player")
		return
	}
	result, err := s.careers.CompletePlayerCareer(r.Context(), nil, playerID)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	if result.AlreadyCompleted {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "already_completed": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "completion": result.Completion})
}
