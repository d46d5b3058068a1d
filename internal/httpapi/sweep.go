package httpapi

import "net/http"

func (s *Server) handleSweepStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sweep.Status(r.Context())
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": status})
}

func (s *Server) handleSweepRun(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Force bool `json:"force"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	result, err := s.sweep.Run(r.Context(), in.Force)
	if err != nil {
		writeDomainError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": result})
}
