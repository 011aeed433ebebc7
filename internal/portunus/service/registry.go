package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// DeletePolicy decides what happens when a schedule still assigned to
// people is deleted.
type DeletePolicy string

const (
	// DeleteRestrict refuses the delete with apperr.ErrInUse.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade unassigns the schedule from every person, then deletes it.
	DeleteCascade DeletePolicy = "cascade"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeleteRestrict:
		return DeleteRestrict, nil
	case DeleteCascade:
		return DeleteCascade, nil
	}
	return "", fmt.Errorf("unknown schedule delete policy %q", s)
}

type RegistryPolicy struct {
	OnScheduleDelete DeletePolicy
	// AllowUnassigned admits active, credentialed people who have no
	// schedule. Off by default: such people are denied.
	AllowUnassigned bool
}

// Registry owns schedules and people. Writes are serialised by one lock and
// evaluation reads the person and their schedule under the read lock, so a
// decision never sees a half-applied edit.
type Registry struct {
	mu        sync.RWMutex
	schedules store.ScheduleStore
	people    store.PersonStore
	policy    RegistryPolicy
	logger    *zap.Logger
	now       func() time.Time
}

func NewRegistry(schedules store.ScheduleStore, people store.PersonStore, policy RegistryPolicy, logger *zap.Logger) *Registry {
	if policy.OnScheduleDelete == "" {
		policy.OnScheduleDelete = DeleteRestrict
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		schedules: schedules,
		people:    people,
		policy:    policy,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Registry) Policy() RegistryPolicy { return r.policy }

// snapshot is what the evaluator sees of one person at decision time.
type snapshot struct {
	person *types.Person
	window *schedule.Window // nil when unassigned or dangling
}

// resolve looks up a person by id, falling back to document id, together
// with their schedule. Unknown people and dangling schedules are not
// errors; they come back as nil fields.
func (r *Registry) resolve(ctx context.Context, personID, documentID string) (snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		p   types.Person
		err error
	)
	switch {
	case personID != "":
		p, err = r.people.GetPerson(ctx, personID)
	case documentID != "":
		p, err = r.people.GetPersonByDocument(ctx, documentID)
	default:
		return snapshot{}, nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return snapshot{}, nil
	}
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{person: &p}
	if p.ScheduleID == "" {
		return snap, nil
	}
	w, err := r.schedules.GetSchedule(ctx, p.ScheduleID)
	if errors.Is(err, apperr.ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return snapshot{}, err
	}
	snap.window = &w
	return snap, nil
}

// ── Schedules ────────────────────────────────────────────────────────────────

// CreateSchedule validates w and stores it. An empty id gets a UUID.
func (r *Registry) CreateSchedule(ctx context.Context, w schedule.Window) (schedule.Window, error) {
	w.ID = strings.TrimSpace(w.ID)
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w, err := schedule.NewWindow(w.ID, w.Name, w.Days, w.Start, w.End)
	if err != nil {
		return schedule.Window{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.schedules.CreateSchedule(ctx, w); err != nil {
		return schedule.Window{}, err
	}
	r.logger.Info("schedule created", zap.String("schedule_id", w.ID), zap.String("name", w.Name))
	return w, nil
}

func (r *Registry) UpdateSchedule(ctx context.Context, id string, w schedule.Window) (schedule.Window, error) {
	w, err := schedule.NewWindow(id, w.Name, w.Days, w.Start, w.End)
	if err != nil {
		return schedule.Window{}, err
	}
	if w.ID == "" {
		return schedule.Window{}, apperr.Invalid("id", "is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.schedules.UpdateSchedule(ctx, w); err != nil {
		return schedule.Window{}, err
	}
	r.logger.Info("schedule updated", zap.String("schedule_id", w.ID))
	return w, nil
}

// DeleteSchedule removes a schedule. When people still reference it the
// registry's DeletePolicy applies; the returned count is how many people
// were unassigned by a cascade.
func (r *Registry) DeleteSchedule(ctx context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.schedules.GetSchedule(ctx, id); err != nil {
		return 0, err
	}
	refs, err := r.people.PeopleWithSchedule(ctx, id)
	if err != nil {
		return 0, err
	}

	cleared := 0
	if len(refs) > 0 {
		if r.policy.OnScheduleDelete != DeleteCascade {
			return 0, apperr.InUse("schedule", id, len(refs))
		}
		cleared, err = r.people.ClearSchedule(ctx, id)
		if err != nil {
			return 0, err
		}
	}

	if err := r.schedules.DeleteSchedule(ctx, id); err != nil {
		return 0, err
	}
	r.logger.Info("schedule deleted",
		zap.String("schedule_id", id),
		zap.String("policy", string(r.policy.OnScheduleDelete)),
		zap.Int("unassigned", cleared))
	return cleared, nil
}

func (r *Registry) GetSchedule(ctx context.Context, id string) (schedule.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schedules.GetSchedule(ctx, id)
}

// ListSchedules returns schedules in insertion order.
func (r *Registry) ListSchedules(ctx context.Context) ([]schedule.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schedules.ListSchedules(ctx)
}
