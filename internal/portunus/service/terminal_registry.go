package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// TerminalSettings is the editable part of a terminal. An empty Password
// keeps the stored hash.
type TerminalSettings struct {
	ID        string `json:"id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=100"`
	IPAddress string `json:"ip_address" validate:"omitempty,ip|hostname_rfc1123"`
	Port      string `json:"port" validate:"omitempty,numeric,max=5"`
	Username  string `json:"username" validate:"omitempty,max=64"`
	Password  string `json:"password,omitempty" validate:"omitempty,max=72"`
}

// TerminalRegistry keeps door-controller settings and tracks when each
// terminal was last heard from.
type TerminalRegistry struct {
	store  store.TerminalStore
	logger *zap.Logger
	now    func() time.Time
}

func NewTerminalRegistry(st store.TerminalStore, logger *zap.Logger) *TerminalRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalRegistry{
		store:  st,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *TerminalRegistry) Configure(ctx context.Context, in TerminalSettings) (types.Terminal, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.IPAddress = strings.TrimSpace(in.IPAddress)
	in.Port = strings.TrimSpace(in.Port)
	if err := validateStruct(in); err != nil {
		return types.Terminal{}, err
	}

	t := types.Terminal{
		ID:        in.ID,
		Name:      in.Name,
		IPAddress: in.IPAddress,
		Port:      in.Port,
		Username:  strings.TrimSpace(in.Username),
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return types.Terminal{}, err
		}
		t.PasswordHash = hash
	}

	if err := r.store.UpsertTerminal(ctx, t); err != nil {
		return types.Terminal{}, err
	}
	r.logger.Info("terminal configured", zap.String("terminal_id", t.ID))
	return r.store.GetTerminal(ctx, t.ID)
}

func (r *TerminalRegistry) Get(ctx context.Context, id string) (types.Terminal, error) {
	return r.store.GetTerminal(ctx, strings.TrimSpace(id))
}

func (r *TerminalRegistry) List(ctx context.Context) ([]types.Terminal, error) {
	return r.store.ListTerminals(ctx)
}

func (r *TerminalRegistry) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteTerminal(ctx, id); err != nil {
		return err
	}
	r.logger.Info("terminal deleted", zap.String("terminal_id", id))
	return nil
}

// DisplayName returns the configured name of a terminal, or "" when the
// terminal is unknown or the lookup fails.
func (r *TerminalRegistry) DisplayName(ctx context.Context, id string) string {
	t, err := r.store.GetTerminal(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			r.logger.Warn("terminal lookup", zap.String("terminal_id", id), zap.Error(err))
		}
		return ""
	}
	if t.Name == t.ID {
		return ""
	}
	return t.Name
}

// NoteEvent marks the terminal as seen now with a decision at eventAt.
// Events from one terminal are expected in timestamp order; a step back is
// logged and otherwise accepted. Errors are logged, not returned: the
// decision has already been recorded.
func (r *TerminalRegistry) NoteEvent(ctx context.Context, id string, eventAt time.Time) {
	prev, err := r.store.GetTerminal(ctx, id)
	if err == nil && prev.LastEventAt != nil && eventAt.Before(*prev.LastEventAt) {
		r.logger.Warn("terminal event out of order",
			zap.String("terminal_id", id),
			zap.Time("event_at", eventAt),
			zap.Time("last_event_at", *prev.LastEventAt))
	}
	if err := r.store.MarkSeen(ctx, id, r.now(), eventAt); err != nil {
		r.logger.Warn("mark terminal seen", zap.String("terminal_id", id), zap.Error(err))
	}
}
