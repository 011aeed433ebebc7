package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// personBody is the editable part of a person. Credentials are managed
// through the credential sub-resource.
type personBody struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DocumentID string `json:"document_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Active     *bool  `json:"active"`
	ScheduleID string `json:"schedule_id"`
}

func (b personBody) person(active bool) types.Person {
	if b.Active != nil {
		active = *b.Active
	}
	return types.Person{
		ID:         b.ID,
		FirstName:  b.FirstName,
		LastName:   b.LastName,
		DocumentID: b.DocumentID,
		Email:      b.Email,
		Phone:      b.Phone,
		Active:     active,
		ScheduleID: b.ScheduleID,
	}
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	list, err := s.registry.ListPeople(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var in personBody
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	out, err := s.registry.CreatePerson(r.Context(), in.person(true))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	out, err := s.registry.GetPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in personBody
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	cur, err := s.registry.GetPerson(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out, err := s.registry.UpdatePerson(r.Context(), id, in.person(cur.Active))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeletePerson(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type credentialBody struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Server) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	var in credentialBody
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	out, err := s.registry.IssueCredential(r.Context(), chi.URLParam(r, "id"), in.ExpiresAt)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	out, err := s.registry.RevokeCredential(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
