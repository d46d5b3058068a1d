package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"footybrain/internal/leagues"
)

func (s *Server) handleSeasonsResetSync(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.simulator.ResetSync(r.Context())
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tiers": statuses})
}

func (s *Server) handleSeasonsSimulateDay(w http.ResponseWriter, r *http.Request) {
	result, err := s.simulator.SimulateDay(r.Context())
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, result.HTTPStatus(), map[string]any{"ok": result.HTTPStatus() == http.StatusOK, "tiers": result.Tiers})
}

func (s *Server) handleSeasonsStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.simulator.Status(r.Context())
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tiers": statuses})
}

func (s *Server) handleLeaguesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "leagues": []leagues.Tier{
		leagues.Championship, leagues.LeagueOne, leagues.LeagueTwo,
	}})
}

func parseTier(r *http.Request) (leagues.Tier, bool) {
	switch leagues.Tier(chi.URLParam(r, "leagueId")) {
	case leagues.Championship:
		return leagues.Championship, true
	case leagues.LeagueOne:
		return leagues.LeagueOne, true
	case leagues.LeagueTwo:
		return leagues.LeagueTwo, true
	default:
		return "", false
	}
}

func (s *Server) handleLeagueTable(w http.ResponseWriter, r *http.Request) {
	tier, ok := parseTier(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown league")
		return
	}
	rows, err := s.simulator.Table(r.Context(), tier)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	views := make([]leagues.TeamSeasonView, len(rows))
	for i, row := range rows {
		views[i] = leagues.NewTeamSeasonView(row)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "table": views})
}

func (s *Server) handleLeagueFixtures(w http.ResponseWriter, r *http.Request) {
	tier, ok := parseTier(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown league")
		return
	}
	matchday, ok := queryInt(r, "matchday")
	if !ok {
		writeError(w, http.StatusBadRequest, "matchday must be an integer")
		return
	}
	rows, err := s.simulator.Fixtures(r.Context(), tier, matchday)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "fixtures": rows})
}

func (s *Server) handleLeagueResults(w http.ResponseWriter, r *http.Request) {
	tier, ok := parseTier(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown league")
		return
	}
	matchday, ok := queryInt(r, "matchday")
	if !ok {
		writeError(w, http.StatusBadRequest, "matchday must be an integer")
		return
	}
	rows, err := s.simulator.Results(r.Context(), tier, matchday)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "results": rows})
}
