package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// ── Schedules ────────────────────────────────────────────────────────────────

func TestRegistry_CreateThenGet_ReturnsIdenticalFields(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()

	in := mustWindow(t, "office", monToFri, "08:00", "18:00")
	created, err := f.registry.CreateSchedule(ctx, in)
	require.NoError(t, err)

	got, err := f.registry.GetSchedule(ctx, "office")
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.Equal(t, created, got)
}

func TestRegistry_CreateAssignsIDWhenEmpty(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})

	w := mustWindow(t, "", monToFri, "08:00", "18:00")
	created, err := f.registry.CreateSchedule(context.Background(), w)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestRegistry_CreateDuplicateID(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()

	_, err := f.registry.CreateSchedule(ctx, mustWindow(t, "s1", monToFri, "08:00", "18:00"))
	require.NoError(t, err)
	_, err = f.registry.CreateSchedule(ctx, mustWindow(t, "s1", monToFri, "09:00", "17:00"))
	assert.ErrorIs(t, err, apperr.ErrDuplicateID)
}

func TestRegistry_CreateInvalidWindow(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})

	_, err := f.registry.CreateSchedule(context.Background(), schedule.Window{ID: "x", Name: "Empty", Start: 0, End: 60})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegistry_UpdateMissing(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})

	_, err := f.registry.UpdateSchedule(context.Background(), "ghost", mustWindow(t, "ghost", monToFri, "08:00", "18:00"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRegistry_UpdateUsesPathID(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()

	_, err := f.registry.CreateSchedule(ctx, mustWindow(t, "s1", monToFri, "08:00", "18:00"))
	require.NoError(t, err)

	upd, err := f.registry.UpdateSchedule(ctx, "s1", mustWindow(t, "other", monToFri, "07:00", "15:00"))
	require.NoError(t, err)
	assert.Equal(t, "s1", upd.ID)

	got, err := f.registry.GetSchedule(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "07:00", got.Start.String())
}

func TestRegistry_ListInInsertionOrder(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_, err := f.registry.CreateSchedule(ctx, mustWindow(t, id, monToFri, "08:00", "18:00"))
		require.NoError(t, err)
	}
	list, err := f.registry.ListSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "b", list[2].ID)
}

// ── Schedule deletion policies ───────────────────────────────────────────────

func TestRegistry_DeleteMissing(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})

	_, err := f.registry.DeleteSchedule(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRegistry_DeleteInUse_RestrictFails(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{OnScheduleDelete: service.DeleteRestrict})
	ctx := context.Background()

	_, err := f.registry.CreateSchedule(ctx, mustWindow(t, "s1", monToFri, "08:00", "18:00"))
	require.NoError(t, err)
	f.addPerson(t, "p1", "12345678", "s1")

	_, err = f.registry.DeleteSchedule(ctx, "s1")
	require.ErrorIs(t, err, apperr.ErrInUse)

	_, err = f.registry.GetSchedule(ctx, "s1")
	assert.NoError(t, err, "schedule must survive a refused delete")
	p, err := f.registry.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "s1", p.ScheduleID)
}

func TestRegistry_DeleteInUse_CascadeUnassigns(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{OnScheduleDelete: service.DeleteCascade})
	ctx := context.Background()

	_, err := f.registry.CreateSchedule(ctx, mustWindow(t, "s1", monToFri, "08:00", "18:00"))
	require.NoError(t, err)
	f.addPerson(t, "p1", "12345678", "s1")
	f.addPerson(t, "p2", "87654321", "s1")
	f.addPerson(t, "p3", "11223344", "")

	cleared, err := f.registry.DeleteSchedule(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	for _, id := range []string{"p1", "p2"} {
		p, err := f.registry.GetPerson(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, p.ScheduleID, "no dangling reference on %s", id)
	}
	_, err = f.registry.GetSchedule(ctx, "s1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRegistry_DeleteUnused_SucceedsUnderEitherPolicy(t *testing.T) {
	for _, pol := range []service.DeletePolicy{service.DeleteRestrict, service.DeleteCascade} {
		f := newFixture(t, service.RegistryPolicy{OnScheduleDelete: pol})
		ctx := context.Background()

		_, err := f.registry.CreateSchedule(ctx, mustWindow(t, "s1", monToFri, "08:00", "18:00"))
		require.NoError(t, err)
		cleared, err := f.registry.DeleteSchedule(ctx, "s1")
		require.NoError(t, err, string(pol))
		assert.Zero(t, cleared)
	}
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := service.ParseDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, service.DeleteRestrict, p)

	p, err = service.ParseDeletePolicy("CASCADE")
	require.NoError(t, err)
	assert.Equal(t, service.DeleteCascade, p)

	_, err = service.ParseDeletePolicy("ignore")
	assert.Error(t, err)
}

// ── People ───────────────────────────────────────────────────────────────────

func TestRegistry_CreatePersonValidation(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()

	cases := []struct {
		name  string
		p     types.Person
		field string
	}{
		{"short first name", types.Person{FirstName: "J", LastName: "Pérez", DocumentID: "12345678"}, "first_name"},
		{"short last name", types.Person{FirstName: "Juan", LastName: "P", DocumentID: "12345678"}, "last_name"},
		{"short document", types.Person{FirstName: "Juan", LastName: "Pérez", DocumentID: "1234"}, "document_id"},
		{"bad email", types.Person{FirstName: "Juan", LastName: "Pérez", DocumentID: "12345678", Email: "nope"}, "email"},
		{"unknown schedule", types.Person{FirstName: "Juan", LastName: "Pérez", DocumentID: "12345678", ScheduleID: "ghost"}, "schedule_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.registry.CreatePerson(ctx, tc.p)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestRegistry_CreatePersonDuplicateDocument(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	f.addPerson(t, "p1", "12345678", "")

	_, err := f.registry.CreatePerson(context.Background(), types.Person{
		FirstName: "Other", LastName: "Person", DocumentID: "12345678",
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateID)
}

func TestRegistry_UpdatePersonKeepsCredential(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()
	f.addPerson(t, "p1", "12345678", "")

	upd, err := f.registry.UpdatePerson(ctx, "p1", types.Person{
		FirstName: "Renamed", LastName: "Person", DocumentID: "12345678", Active: false,
	})
	require.NoError(t, err)
	require.NotNil(t, upd.Credential)
	assert.True(t, upd.Credential.Issued)
	assert.False(t, upd.Active)
}

func TestRegistry_ListPeopleQuery(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	ctx := context.Background()

	for _, p := range []types.Person{
		{ID: "1", FirstName: "Juan", LastName: "Pérez", DocumentID: "12345678"},
		{ID: "2", FirstName: "María", LastName: "López", DocumentID: "87654321"},
		{ID: "3", FirstName: "Carlos", LastName: "Gómez", DocumentID: "11223344"},
	} {
		_, err := f.registry.CreatePerson(ctx, p)
		require.NoError(t, err)
	}

	got, err := f.registry.ListPeople(ctx, "juan p")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, err = f.registry.ListPeople(ctx, "4321")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got, err = f.registry.ListPeople(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRegistry_IssueCredentialRejectsPastExpiry(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	f.addPerson(t, "p1", "12345678", "")

	past := time.Now().Add(-time.Hour)
	_, err := f.registry.IssueCredential(context.Background(), "p1", &past)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegistry_RevokeCredential(t *testing.T) {
	f := newFixture(t, service.RegistryPolicy{})
	f.addPerson(t, "p1", "12345678", "")

	p, err := f.registry.RevokeCredential(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p.Credential)
	assert.False(t, p.Credential.Issued)

	_, err = f.registry.RevokeCredential(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
