package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
)

func (s *Server) handleListTerminals(w http.ResponseWriter, r *http.Request) {
	list, err := s.terminals.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTerminal(w http.ResponseWriter, r *http.Request) {
	out, err := s.terminals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConfigureTerminal(w http.ResponseWriter, r *http.Request) {
	var in service.TerminalSettings
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	in.ID = chi.URLParam(r, "id")
	out, err := s.terminals.Configure(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTerminal(w http.ResponseWriter, r *http.Request) {
	if err := s.terminals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
