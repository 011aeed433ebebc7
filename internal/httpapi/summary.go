package httpapi

import (
	"net/http"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

const recentActivity = 5

// summary backs the dashboard's landing cards.
type summary struct {
	People        int                          `json:"people"`
	ActiveQRCodes int                          `json:"active_qr_codes"`
	Schedules     int                          `json:"schedules"`
	AccessToday   int                          `json:"access_today"`
	DeniedToday   int                          `json:"denied_today"`
	Terminals     map[types.TerminalStatus]int `json:"terminals"`
	Recent        []types.AccessLogEntry       `json:"recent"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.now().In(s.evaluator.Location())

	people, err := s.registry.ListPeople(ctx, "")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	schedules, err := s.registry.ListSchedules(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	terminals, err := s.terminals.List(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := summary{
		People:    len(people),
		Schedules: len(schedules),
		Terminals: map[types.TerminalStatus]int{},
		Recent:    []types.AccessLogEntry{},
	}
	for _, p := range people {
		if p.Credential.ValidAt(now) {
			out.ActiveQRCodes++
		}
	}
	for _, t := range terminals {
		out.Terminals[t.Status]++
	}

	from, to, err := store.DayBucket("today", now)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	for e, err := range s.logs.Query(ctx, store.LogFilter{From: from, To: to}) {
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		out.AccessToday++
		if !e.Allowed {
			out.DeniedToday++
		}
	}

	for e, err := range s.logs.Query(ctx, store.LogFilter{Limit: recentActivity}) {
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		out.Recent = append(out.Recent, e)
	}

	writeJSON(w, http.StatusOK, out)
}
