package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

func normalizePerson(p types.Person) types.Person {
	p.ID = strings.TrimSpace(p.ID)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.DocumentID = strings.TrimSpace(p.DocumentID)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.ScheduleID = strings.TrimSpace(p.ScheduleID)
	return p
}

// checkScheduleRef must be called with r.mu held.
func (r *Registry) checkScheduleRef(ctx context.Context, scheduleID string) error {
	if scheduleID == "" {
		return nil
	}
	_, err := r.schedules.GetSchedule(ctx, scheduleID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Invalid("schedule_id", "unknown schedule %q", scheduleID)
	}
	return err
}

// CreatePerson validates and stores p. An empty id gets a UUID.
func (r *Registry) CreatePerson(ctx context.Context, p types.Person) (types.Person, error) {
	p = normalizePerson(p)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := validateStruct(p); err != nil {
		return types.Person{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkScheduleRef(ctx, p.ScheduleID); err != nil {
		return types.Person{}, err
	}
	if err := r.people.CreatePerson(ctx, p); err != nil {
		return types.Person{}, err
	}
	r.logger.Info("person created", zap.String("person_id", p.ID))
	return p.Clone(), nil
}

// UpdatePerson replaces the profile fields of person id. Credential state is
// kept; use IssueCredential and RevokeCredential to change it.
func (r *Registry) UpdatePerson(ctx context.Context, id string, p types.Person) (types.Person, error) {
	p = normalizePerson(p)
	p.ID = strings.TrimSpace(id)
	if err := validateStruct(p); err != nil {
		return types.Person{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cur, err := r.people.GetPerson(ctx, p.ID)
	if err != nil {
		return types.Person{}, err
	}
	if err := r.checkScheduleRef(ctx, p.ScheduleID); err != nil {
		return types.Person{}, err
	}
	p.Credential = cur.Credential
	if err := r.people.UpdatePerson(ctx, p); err != nil {
		return types.Person{}, err
	}
	r.logger.Info("person updated", zap.String("person_id", p.ID))
	return p.Clone(), nil
}

func (r *Registry) DeletePerson(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.people.DeletePerson(ctx, id); err != nil {
		return err
	}
	r.logger.Info("person deleted", zap.String("person_id", id))
	return nil
}

func (r *Registry) GetPerson(ctx context.Context, id string) (types.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.people.GetPerson(ctx, id)
}

func (r *Registry) GetPersonByDocument(ctx context.Context, documentID string) (types.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.people.GetPersonByDocument(ctx, strings.TrimSpace(documentID))
}

// ListPeople returns people in insertion order. A non-empty query keeps
// those whose full name (case-insensitive) or document id contains it.
func (r *Registry) ListPeople(ctx context.Context, query string) ([]types.Person, error) {
	r.mu.RLock()
	all, err := r.people.ListPeople(ctx)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}
	out := all[:0]
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.FullName()), q) ||
			strings.Contains(strings.ToLower(p.DocumentID), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// IssueCredential marks the person's QR credential as issued. A nil
// expiresAt means it never expires; a past one is rejected.
func (r *Registry) IssueCredential(ctx context.Context, id string, expiresAt *time.Time) (types.Person, error) {
	now := r.now()
	if expiresAt != nil && !expiresAt.After(now) {
		return types.Person{}, apperr.Invalid("expires_at", "must be in the future")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.people.GetPerson(ctx, id)
	if err != nil {
		return types.Person{}, err
	}
	c := &types.Credential{Issued: true, IssuedAt: now}
	if expiresAt != nil {
		exp := expiresAt.UTC()
		c.ExpiresAt = &exp
	}
	p.Credential = c
	if err := r.people.UpdatePerson(ctx, p); err != nil {
		return types.Person{}, err
	}
	r.logger.Info("credential issued", zap.String("person_id", id))
	return p.Clone(), nil
}

func (r *Registry) RevokeCredential(ctx context.Context, id string) (types.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.people.GetPerson(ctx, id)
	if err != nil {
		return types.Person{}, err
	}
	if p.Credential == nil || !p.Credential.Issued {
		return p, nil
	}
	p.Credential.Issued = false
	if err := r.people.UpdatePerson(ctx, p); err != nil {
		return types.Person{}, err
	}
	r.logger.Info("credential revoked", zap.String("person_id", id))
	return p.Clone(), nil
}
