package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// Publisher receives every appended log entry. Failures are logged and do
// not affect the decision.
type Publisher interface {
	Publish(ctx context.Context, e types.AccessLogEntry) error
}

type EvaluatorConfig struct {
	// Location is the site's wall clock. Weekday and time of day are read
	// in it. Defaults to UTC.
	Location *time.Location
	// Clock supplies "now" for requests without a timestamp.
	Clock     func() time.Time
	Publisher Publisher
}

// Evaluator decides access and records every decision in the access log.
type Evaluator struct {
	registry  *Registry
	terminals *TerminalRegistry
	log       store.AccessLogStore
	publisher Publisher
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewEvaluator(reg *Registry, terminals *TerminalRegistry, log store.AccessLogStore, logger *zap.Logger, cfg EvaluatorConfig) *Evaluator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		registry:  reg,
		terminals: terminals,
		log:       log,
		publisher: cfg.Publisher,
		loc:       cfg.Location,
		now:       cfg.Clock,
		logger:    logger,
	}
}

func (e *Evaluator) Location() *time.Location { return e.loc }

// Evaluate decides one access request and appends exactly one log entry.
// A missing terminal id or a malformed timestamp fails before anything is
// written. If the append itself fails the error is returned and no entry
// exists.
func (e *Evaluator) Evaluate(ctx context.Context, req types.AccessRequest) (types.AccessLogEntry, error) {
	terminalID := strings.TrimSpace(req.TerminalID)
	if terminalID == "" {
		return types.AccessLogEntry{}, apperr.Invalid("terminal_id", "is required")
	}

	at := e.now().In(e.loc)
	if strings.TrimSpace(req.Timestamp) != "" {
		t, err := ParseTimestamp(req.Timestamp, e.loc)
		if err != nil {
			return types.AccessLogEntry{}, err
		}
		at = t
	}

	personID := strings.TrimSpace(req.PersonID)
	documentID := strings.TrimSpace(req.DocumentID)

	snap, err := e.registry.resolve(ctx, personID, documentID)
	if err != nil {
		return types.AccessLogEntry{}, err
	}

	allowed, reason := decide(snap, at, e.registry.Policy().AllowUnassigned)

	entry := types.AccessLogEntry{
		ID:           uuid.NewString(),
		Timestamp:    at,
		PersonID:     personID,
		DocumentID:   documentID,
		TerminalID:   terminalID,
		TerminalName: e.terminals.DisplayName(ctx, terminalID),
		Allowed:      allowed,
		Reason:       reason,
	}
	if p := snap.person; p != nil {
		entry.PersonID = p.ID
		entry.PersonName = p.FullName()
		entry.DocumentID = p.DocumentID
		entry.ScheduleID = p.ScheduleID
	}

	entry, err = e.log.Append(ctx, entry)
	if err != nil {
		return types.AccessLogEntry{}, err
	}

	e.terminals.NoteEvent(ctx, terminalID, at)

	e.logger.Info("access decided",
		zap.String("entry_id", entry.ID),
		zap.String("terminal_id", terminalID),
		zap.String("person_id", entry.PersonID),
		zap.Bool("allowed", allowed),
		zap.String("reason", string(reason)),
		zap.Time("at", at))

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, entry); err != nil {
			e.logger.Warn("publish access decision", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}

	return entry, nil
}

// decide applies the rules in order; the first match wins.
func decide(snap snapshot, at time.Time, allowUnassigned bool) (bool, types.Reason) {
	p := snap.person
	switch {
	case p == nil || !p.Credential.ValidAt(at):
		return false, types.ReasonNoCredential
	case !p.Active:
		return false, types.ReasonInactivePerson
	case p.ScheduleID == "":
		if allowUnassigned {
			return true, types.ReasonAllowed
		}
		return false, types.ReasonNoScheduleAssigned
	case snap.window == nil:
		// Dangling reference: fail closed.
		return false, types.ReasonOutsideWindow
	case snap.window.Contains(schedule.WeekdayOf(at.Weekday()), schedule.ClockOf(at)):
		return true, types.ReasonAllowed
	}
	return false, types.ReasonOutsideWindow
}
