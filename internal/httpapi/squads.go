package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"footybrain/internal/authgate"
	"footybrain/internal/squads"
)

func (s *Server) handleSquadsLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	l := 0
	if limit != nil {
		l = *limit
	}
	rows, err := s.squads.Leaderboard(r.Context(), l)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "squads": rows})
}

func (s *Server) handleSquadsSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	l := 0
	if limit != nil {
		l = *limit
	}
	rows, err := s.squads.Search(r.Context(), r.URL.Query().Get("query"), l)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "squads": rows})
}

func (s *Server) handleSquadProfile(w http.ResponseWriter, r *http.Request) {
	sq, members, facilities, err := s.squads.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "squad": sq, "members": members, "facilities": facilities})
}

func (s *Server) handleSquadCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		Name        string         `json:"name"`
		Tag         string         `json:"tag"`
		Description string         `json:"description"`
		Privacy     squads.Privacy `json:"privacy"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sq, err := s.squads.CreateSquad(r.Context(), squads.CreateSquadInput{
		UserID:      user.UserID,
		Name:        in.Name,
		Tag:         in.Tag,
		Description: in.Description,
		Privacy:     in.Privacy,
	})
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "squad": sq})
}

func (s *Server) handleSquadJoin(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	if err := s.squads.JoinOpenSquad(r.Context(), user.UserID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSquadRequestJoin(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	jr, err := s.squads.RequestJoinSquad(r.Context(), user.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "request": jr})
}

func (s *Server) handleSquadUpgrade(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		FacilityType squads.FacilityType `json:"facility_type"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !squads.IsValidFacilityType(in.FacilityType) {
		writeError(w, http.StatusBadRequest, "facility_type must be one of training_equipment, spa, analysis_room, medical_center")
		return
	}
	sq, err := s.squads.UpgradeSquadFacility(r.Context(), user.UserID, chi.URLParam(r, "id"), in.FacilityType)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "squad": sq})
}

func (s *Server) handleSquadSetRole(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		UserID string      `json:"user_id"`
		Role   squads.Role `json:"role"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Role != squads.RoleCoLeader && in.Role != squads.RoleMember {
		writeError(w, http.StatusBadRequest, "role must be one of co_leader, member")
		return
	}
	if err := s.squads.SetMemberRole(r.Context(), user.UserID, chi.URLParam(r, "id"), in.UserID, in.Role); err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSquadResolveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		Action string `json:"action"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var approve bool
	switch in.Action {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		writeError(w, http.StatusBadRequest, "action must be one of approve, reject")
		return
	}
	jr, err := s.squads.ResolveSquadJoinRequest(r.Context(), chi.URLParam(r, "id"), user.UserID, approve)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "request": jr})
}

func (s *Server) handleSquadLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	var in struct {
		SquadID string `json:"squad_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.squads.LeaveSquad(r.Context(), user.UserID, in.SquadID); err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSquadsMine(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	rows, err := s.squads.Mine(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "squads": rows})
}

func (s *Server) handleSquadPendingRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := authgate.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth context")
		return
	}
	rows, err := s.squads.PendingRequests(r.Context(), user.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "requests": rows})
}
