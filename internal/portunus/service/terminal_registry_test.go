package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store/memory"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

func TestTerminalRegistry_ConfigureHashesPassword(t *testing.T) {
	reg := service.NewTerminalRegistry(memory.NewTerminalStore(), zap.NewNop())
	ctx := context.Background()

	term, err := reg.Configure(ctx, service.TerminalSettings{
		ID: "T1", Name: "Main Entrance", IPAddress: "192.168.1.100", Port: "8080",
		Username: "admin", Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, types.TerminalDisconnected, term.Status)
	require.NoError(t, bcrypt.CompareHashAndPassword(term.PasswordHash, []byte("s3cret")))

	// An empty password keeps the stored hash.
	term, err = reg.Configure(ctx, service.TerminalSettings{ID: "T1", Name: "Lobby"})
	require.NoError(t, err)
	assert.Equal(t, "Lobby", term.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword(term.PasswordHash, []byte("s3cret")))
}

func TestTerminalRegistry_ConfigureValidation(t *testing.T) {
	reg := service.NewTerminalRegistry(memory.NewTerminalStore(), zap.NewNop())

	cases := []struct {
		name  string
		in    service.TerminalSettings
		field string
	}{
		{"missing id", service.TerminalSettings{Name: "Door"}, "id"},
		{"missing name", service.TerminalSettings{ID: "T1"}, "name"},
		{"bad port", service.TerminalSettings{ID: "T1", Name: "Door", Port: "http"}, "port"},
		{"bad address", service.TerminalSettings{ID: "T1", Name: "Door", IPAddress: "not an address"}, "ip_address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Configure(context.Background(), tc.in)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestTerminalRegistry_DisplayName(t *testing.T) {
	st := memory.NewTerminalStore()
	reg := service.NewTerminalRegistry(st, zap.NewNop())
	ctx := context.Background()

	assert.Empty(t, reg.DisplayName(ctx, "unknown"))

	// Placeholder rows created by traffic carry no configured name.
	reg.NoteEvent(ctx, "T2", time.Now())
	assert.Empty(t, reg.DisplayName(ctx, "T2"))

	_, err := reg.Configure(ctx, service.TerminalSettings{ID: "T2", Name: "Parking"})
	require.NoError(t, err)
	assert.Equal(t, "Parking", reg.DisplayName(ctx, "T2"))
}

func TestTerminalRegistry_NoteEventAcceptsRegression(t *testing.T) {
	st := memory.NewTerminalStore()
	reg := service.NewTerminalRegistry(st, zap.NewNop())
	ctx := context.Background()

	later := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)
	reg.NoteEvent(ctx, "T1", later)
	reg.NoteEvent(ctx, "T1", later.Add(-time.Hour))

	term, err := st.GetTerminal(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, term.LastEventAt)
	assert.True(t, term.LastEventAt.Equal(later))
	assert.Equal(t, types.TerminalConnected, term.Status)
}

func TestTerminalRegistry_Delete(t *testing.T) {
	reg := service.NewTerminalRegistry(memory.NewTerminalStore(), zap.NewNop())
	ctx := context.Background()

	_, err := reg.Configure(ctx, service.TerminalSettings{ID: "T1", Name: "Door"})
	require.NoError(t, err)
	require.NoError(t, reg.Delete(ctx, "T1"))
	assert.ErrorIs(t, reg.Delete(ctx, "T1"), apperr.ErrNotFound)
}
