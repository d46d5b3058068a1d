package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"footybrain/internal/authgate"
	"footybrain/internal/groups"
)

func (s *Server) handleGroupCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.groups.CreateGroup(r.Context(), groups.CreateGroupInput{UserID: user.UserID, Name: in.Name})
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "group": g})
}

func (s *Server) handleGroupJoin(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		InviteCode string `json:"invite_code"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.groups.JoinGroup(r.Context(), user.UserID, in.InviteCode)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "group": res.Group, "already_member": res.AlreadyMember})
}

func (s *Server) handleGroupsMine(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	rows, err := s.groups.Mine(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "groups": rows})
}

func (s *Server) handleGroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	rows, err := s.groups.GetGroupLeaderboard(r.Context(), user.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rows": rows})
}

func (s *Server) handleGroupLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	if err := s.groups.LeaveGroup(r.Context(), user.UserID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
