package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

func TestPersonStore_RoundTripWithCredential(t *testing.T) {
	st := newTestStores(t)
	ctx := context.Background()
	require.NoError(t, st.schedules.CreateSchedule(ctx, officeWindow(t, "s1")))

	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	p := types.Person{
		ID: "p1", FirstName: "Juan", LastName: "Pérez", DocumentID: "12345678",
		Email: "juan@example.com", Active: true, ScheduleID: "s1",
		Credential: &types.Credential{
			Issued:    true,
			IssuedAt:  time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
			ExpiresAt: &exp,
		},
	}
	require.NoError(t, st.people.CreatePerson(ctx, p))

	got, err := st.people.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	byDoc, err := st.people.GetPersonByDocument(ctx, "12345678")
	require.NoError(t, err)
	assert.Equal(t, "p1", byDoc.ID)
}

func TestPersonStore_DuplicateDocument(t *testing.T) {
	st := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, st.people.CreatePerson(ctx, types.Person{ID: "p1", FirstName: "Ana", LastName: "Ruiz", DocumentID: "11111"}))
	err := st.people.CreatePerson(ctx, types.Person{ID: "p2", FirstName: "Eva", LastName: "Sosa", DocumentID: "11111"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateID)

	err = st.people.CreatePerson(ctx, types.Person{ID: "p1", FirstName: "Eva", LastName: "Sosa", DocumentID: "22222"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateID)
}

func TestPersonStore_UnknownScheduleRejected(t *testing.T) {
	st := newTestStores(t)

	err := st.people.CreatePerson(context.Background(), types.Person{
		ID: "p1", FirstName: "Ana", LastName: "Ruiz", DocumentID: "11111", ScheduleID: "nope",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPersonStore_PeopleWithSchedule(t *testing.T) {
	st := newTestStores(t)
	ctx := context.Background()
	require.NoError(t, st.schedules.CreateSchedule(ctx, officeWindow(t, "s1")))

	require.NoError(t, st.people.CreatePerson(ctx, types.Person{ID: "a", FirstName: "Ana", LastName: "Ruiz", DocumentID: "11111", ScheduleID: "s1"}))
	require.NoError(t, st.people.CreatePerson(ctx, types.Person{ID: "b", FirstName: "Eva", LastName: "Sosa", DocumentID: "22222"}))
	require.NoError(t, st.people.CreatePerson(ctx, types.Person{ID: "c", FirstName: "Leo", LastName: "Vera", DocumentID: "33333", ScheduleID: "s1"}))

	ids, err := st.people.PeopleWithSchedule(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
}
