package httpapi

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
	"github.com/Renatocm0708/qr-access-nexus/internal/report"
)

const (
	defaultLogLimit = 200
	maxLogLimit     = 1000
)

func (s *Server) handleAccessRequest(w http.ResponseWriter, r *http.Request) {
	var req types.AccessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	entry, err := s.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.Response())
}

type logPage struct {
	Entries []types.AccessLogEntry `json:"entries"`
	Count   int                    `json:"count"`
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	f, err := s.logFilter(r.URL.Query(), defaultLogLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	page := logPage{Entries: []types.AccessLogEntry{}}
	for e, err := range s.logs.Query(r.Context(), f) {
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		page.Entries = append(page.Entries, e)
	}
	page.Count = len(page.Entries)
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	f, err := s.logFilter(r.URL.Query(), 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := report.WriteAccessLog(&buf, s.logs.Query(r.Context(), f), s.evaluator.Location()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="access-log.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// logFilter reads from, to, day, status, q, terminal_id, person_id and
// limit. An explicit from/to overrides the matching end of a day bucket.
func (s *Server) logFilter(q url.Values, defaultLimit int) (store.LogFilter, error) {
	loc := s.evaluator.Location()
	f := store.LogFilter{
		Text:       q.Get("q"),
		TerminalID: strings.TrimSpace(q.Get("terminal_id")),
		PersonID:   strings.TrimSpace(q.Get("person_id")),
		Limit:      defaultLimit,
	}

	var err error
	if f.Status, err = store.ParseStatusFilter(q.Get("status")); err != nil {
		return f, apperr.Invalid("status", "must be all, allowed or denied")
	}
	if f.From, f.To, err = store.DayBucket(q.Get("day"), s.now().In(loc)); err != nil {
		return f, apperr.Invalid("day", "must be all, today or yesterday")
	}
	if raw := q.Get("from"); raw != "" {
		if f.From, err = service.ParseTimestamp(raw, loc); err != nil {
			return f, err
		}
	}
	if raw := q.Get("to"); raw != "" {
		if f.To, err = service.ParseTimestamp(raw, loc); err != nil {
			return f, err
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLogLimit {
			return f, apperr.Invalid("limit", "must be between 1 and %d", maxLogLimit)
		}
		f.Limit = n
	}
	return f, nil
}
