package httpapi

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/report"
)

// scheduleBody is the request form of a window. Times are pointers so an
// omitted one is reported instead of read as midnight.
type scheduleBody struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Days  schedule.WeekdaySet `json:"days"`
	Start *schedule.TimeOfDay `json:"start_time"`
	End   *schedule.TimeOfDay `json:"end_time"`
}

func (b scheduleBody) window() (schedule.Window, error) {
	if b.Start == nil {
		return schedule.Window{}, apperr.Invalid("start_time", "is required")
	}
	if b.End == nil {
		return schedule.Window{}, apperr.Invalid("end_time", "is required")
	}
	return schedule.Window{ID: b.ID, Name: b.Name, Days: b.Days, Start: *b.Start, End: *b.End}, nil
}

func (s *Server) decodeSchedule(w http.ResponseWriter, r *http.Request) (schedule.Window, bool) {
	var in scheduleBody
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return schedule.Window{}, false
	}
	win, err := in.window()
	if err != nil {
		s.writeServiceError(w, r, err)
		return schedule.Window{}, false
	}
	return win, true
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := s.registry.ListSchedules(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeSchedule(w, r)
	if !ok {
		return
	}
	out, err := s.registry.CreateSchedule(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	out, err := s.registry.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeSchedule(w, r)
	if !ok {
		return
	}
	out, err := s.registry.UpdateSchedule(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type deleteScheduleResponse struct {
	ID         string `json:"id"`
	Unassigned int    `json:"unassigned"` // people whose assignment was cleared
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := s.registry.DeleteSchedule(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteScheduleResponse{ID: id, Unassigned: n})
}

func (s *Server) handleSchedulesCalendar(w http.ResponseWriter, r *http.Request) {
	list, err := s.registry.ListSchedules(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeCalendar(w, r, "schedules.ics", list)
}

func (s *Server) handleScheduleCalendar(w http.ResponseWriter, r *http.Request) {
	win, err := s.registry.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeCalendar(w, r, win.ID+".ics", []schedule.Window{win})
}

func (s *Server) writeCalendar(w http.ResponseWriter, r *http.Request, filename string, list []schedule.Window) {
	var buf bytes.Buffer
	if err := report.WriteSchedules(&buf, list, s.now().In(s.evaluator.Location())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(buf.Bytes())
}
