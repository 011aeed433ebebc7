// Package store declares the persistence contracts. Implementations live in
// store/memory and store/sqlite; both return apperr.ErrNotFound and
// apperr.ErrDuplicateID for the obvious cases.
package store

import (
	"context"
	"iter"
	"time"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// ScheduleStore owns access windows. List returns insertion order.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, w schedule.Window) error
	UpdateSchedule(ctx context.Context, w schedule.Window) error
	DeleteSchedule(ctx context.Context, id string) error
	GetSchedule(ctx context.Context, id string) (schedule.Window, error)
	ListSchedules(ctx context.Context) ([]schedule.Window, error)
}

// PersonStore holds people. DocumentID is unique alongside ID.
type PersonStore interface {
	CreatePerson(ctx context.Context, p types.Person) error
	UpdatePerson(ctx context.Context, p types.Person) error
	DeletePerson(ctx context.Context, id string) error
	GetPerson(ctx context.Context, id string) (types.Person, error)
	GetPersonByDocument(ctx context.Context, documentID string) (types.Person, error)
	ListPeople(ctx context.Context) ([]types.Person, error)

	// PeopleWithSchedule returns the ids of people assigned to scheduleID.
	PeopleWithSchedule(ctx context.Context, scheduleID string) ([]string, error)
	// ClearSchedule unassigns scheduleID from everyone holding it and
	// returns how many people changed.
	ClearSchedule(ctx context.Context, scheduleID string) (int, error)
}

// AccessLogStore is the append-only decision log. Append assigns Seq.
type AccessLogStore interface {
	Append(ctx context.Context, e types.AccessLogEntry) (types.AccessLogEntry, error)
	Query(ctx context.Context, f LogFilter) iter.Seq2[types.AccessLogEntry, error]
}

// TerminalStore keeps door-controller settings and liveness.
type TerminalStore interface {
	UpsertTerminal(ctx context.Context, t types.Terminal) error
	DeleteTerminal(ctx context.Context, id string) error
	GetTerminal(ctx context.Context, id string) (types.Terminal, error)
	ListTerminals(ctx context.Context) ([]types.Terminal, error)
	// MarkSeen records traffic from a terminal. Unknown ids get a
	// placeholder row so the log can reference them.
	MarkSeen(ctx context.Context, id string, seenAt, eventAt time.Time) error
	// MarkStaleDisconnected flips connected terminals not seen since cutoff
	// to disconnected and returns how many changed.
	MarkStaleDisconnected(ctx context.Context, cutoff time.Time) (int64, error)
}
