package types

import "time"

// Reason explains an access decision. The values are stable; they are stored
// in the access log and returned to terminals.
type Reason string

const (
	ReasonNoCredential       Reason = "no-credential"
	ReasonInactivePerson     Reason = "inactive-person"
	ReasonOutsideWindow      Reason = "outside-window"
	ReasonNoScheduleAssigned Reason = "no-schedule-assigned"
	ReasonAllowed            Reason = "allowed"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonNoCredential, ReasonInactivePerson, ReasonOutsideWindow,
		ReasonNoScheduleAssigned, ReasonAllowed:
		return true
	}
	return false
}

// AccessRequest is what a terminal (or the admin UI) submits for a decision.
// Either PersonID or DocumentID identifies the person; DocumentID is the
// value encoded in the QR credential.
type AccessRequest struct {
	PersonID   string `json:"person_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	TerminalID string `json:"terminal_id"`
	Timestamp  string `json:"timestamp,omitempty"` // empty means server time
}

type AccessResponse struct {
	Allowed    bool   `json:"allowed"`
	Reason     Reason `json:"reason"`
	EntryID    string `json:"entry_id"`
	PersonID   string `json:"person_id,omitempty"`
	TerminalID string `json:"terminal_id"`
	DecidedAt  string `json:"decided_at"`
}

// AccessLogEntry is one immutable decision record. Person, document, terminal
// and schedule fields are snapshots taken at decision time so the history
// survives later edits and deletions.
type AccessLogEntry struct {
	ID           string    `json:"id"`
	Seq          int64     `json:"seq"`
	Timestamp    time.Time `json:"timestamp"`
	PersonID     string    `json:"person_id,omitempty"`
	PersonName   string    `json:"person_name,omitempty"`
	DocumentID   string    `json:"document_id,omitempty"`
	TerminalID   string    `json:"terminal_id"`
	TerminalName string    `json:"terminal_name,omitempty"`
	ScheduleID   string    `json:"schedule_id,omitempty"`
	Allowed      bool      `json:"allowed"`
	Reason       Reason    `json:"reason"`
}

func (e AccessLogEntry) Response() AccessResponse {
	return AccessResponse{
		Allowed:    e.Allowed,
		Reason:     e.Reason,
		EntryID:    e.ID,
		PersonID:   e.PersonID,
		TerminalID: e.TerminalID,
		DecidedAt:  e.Timestamp.Format(time.RFC3339),
	}
}
