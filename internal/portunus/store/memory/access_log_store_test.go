package memory_test

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store/memory"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

var base = time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)

func newLog(t *testing.T) *memory.AccessLogStore {
	t.Helper()
	s := memory.NewAccessLogStore()
	entries := []types.AccessLogEntry{
		{ID: "e1", Timestamp: base, PersonID: "1", PersonName: "Juan Pérez", DocumentID: "12345678", TerminalID: "main", Allowed: true, Reason: types.ReasonAllowed},
		{ID: "e2", Timestamp: base.Add(45 * time.Minute), PersonID: "2", PersonName: "María López", DocumentID: "87654321", TerminalID: "office", Allowed: true, Reason: types.ReasonAllowed},
		{ID: "e3", Timestamp: base.Add(75 * time.Minute), PersonID: "3", PersonName: "Carlos Gómez", DocumentID: "11223344", TerminalID: "main", Allowed: false, Reason: types.ReasonOutsideWindow},
		{ID: "e4", Timestamp: base.AddDate(0, 0, -1), PersonID: "1", PersonName: "Juan Pérez", DocumentID: "12345678", TerminalID: "main", Allowed: true, Reason: types.ReasonAllowed},
		{ID: "e5", Timestamp: base, PersonID: "2", PersonName: "María López", DocumentID: "87654321", TerminalID: "office", Allowed: false, Reason: types.ReasonInactivePerson},
		{ID: "e6", Timestamp: base, PersonID: "3", PersonName: "Carlos Gómez", DocumentID: "11223344", TerminalID: "main", Allowed: false, Reason: types.ReasonNoCredential},
	}
	for _, e := range entries {
		_, err := s.Append(context.Background(), e)
		require.NoError(t, err)
	}
	return s
}

func ids(t *testing.T, seq iter.Seq2[types.AccessLogEntry, error]) []string {
	t.Helper()
	var out []string
	for e, err := range seq {
		require.NoError(t, err)
		out = append(out, e.ID)
	}
	return out
}

func TestAccessLogStore_AppendAssignsSeq(t *testing.T) {
	s := newLog(t)
	e, err := s.Append(context.Background(), types.AccessLogEntry{ID: "e7", Timestamp: base, TerminalID: "main"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, e.Seq)
	assert.Len(t, s.Entries(), 7)
}

func TestAccessLogStore_QueryTiesKeepInsertionOrder(t *testing.T) {
	s := newLog(t)

	// e1, e5 and e6 share a timestamp and come back in append order.
	got := ids(t, s.Query(context.Background(), store.LogFilter{}))
	assert.Equal(t, []string{"e3", "e2", "e1", "e5", "e6", "e4"}, got)
}

func TestAccessLogStore_QueryFilters(t *testing.T) {
	s := newLog(t)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		filter store.LogFilter
		want   []string
	}{
		{"denied", store.LogFilter{Status: store.StatusDenied}, []string{"e3", "e5", "e6"}},
		{"allowed", store.LogFilter{Status: store.StatusAllowed}, []string{"e2", "e1", "e4"}},
		{"name text folds case", store.LogFilter{Text: "MARÍA"}, []string{"e2", "e5"}},
		{"document text", store.LogFilter{Text: "1122"}, []string{"e3", "e6"}},
		{"day range", store.LogFilter{From: day, To: day.AddDate(0, 0, 1)}, []string{"e3", "e2", "e1", "e5", "e6"}},
		{"end is exclusive", store.LogFilter{From: day, To: base}, nil},
		{"terminal", store.LogFilter{TerminalID: "office"}, []string{"e2", "e5"}},
		{"person and status", store.LogFilter{PersonID: "1", Status: store.StatusAllowed}, []string{"e1", "e4"}},
		{"limit cuts after ordering", store.LogFilter{Limit: 4}, []string{"e3", "e2", "e1", "e5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(t, s.Query(context.Background(), tc.filter)))
		})
	}
}

func TestAccessLogStore_QueryIsRestartable(t *testing.T) {
	s := newLog(t)
	ctx := context.Background()

	seq := s.Query(ctx, store.LogFilter{Status: store.StatusDenied})
	first := ids(t, seq)

	_, err := s.Append(ctx, types.AccessLogEntry{ID: "e7", Timestamp: base.Add(24 * time.Hour), TerminalID: "main", Reason: types.ReasonNoCredential})
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Equal(t, []string{"e7", "e3", "e5", "e6"}, ids(t, seq))
}

func TestAccessLogStore_QueryStopsOnCancelledContext(t *testing.T) {
	s := newLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs int
	for _, err := range s.Query(ctx, store.LogFilter{}) {
		require.ErrorIs(t, err, context.Canceled)
		errs++
	}
	assert.Equal(t, 1, errs)
}
