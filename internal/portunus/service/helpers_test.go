package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store/memory"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

type fixture struct {
	registry  *service.Registry
	terminals *service.TerminalRegistry
	evaluator *service.Evaluator
	logs      *memory.AccessLogStore
	people    *memory.PersonStore
	termStore *memory.TerminalStore
}

// newFixture wires the services over in-memory stores.
func newFixture(t *testing.T, policy service.RegistryPolicy) fixture {
	t.Helper()

	people := memory.NewPersonStore()
	logs := memory.NewAccessLogStore()
	termStore := memory.NewTerminalStore()
	reg := service.NewRegistry(memory.NewScheduleStore(), people, policy, zap.NewNop())
	terms := service.NewTerminalRegistry(termStore, zap.NewNop())
	ev := service.NewEvaluator(reg, terms, logs, zap.NewNop(), service.EvaluatorConfig{
		Clock: func() time.Time { return time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC) },
	})
	return fixture{
		registry:  reg,
		terminals: terms,
		evaluator: ev,
		logs:      logs,
		people:    people,
		termStore: termStore,
	}
}

func mustWindow(t *testing.T, id string, days []schedule.Weekday, start, end string) schedule.Window {
	t.Helper()
	s, err := schedule.ParseTimeOfDay(start)
	require.NoError(t, err)
	e, err := schedule.ParseTimeOfDay(end)
	require.NoError(t, err)
	w, err := schedule.NewWindow(id, "Schedule "+id, schedule.NewWeekdaySet(days...), s, e)
	require.NoError(t, err)
	return w
}

var monToFri = []schedule.Weekday{
	schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday, schedule.Friday,
}

// addPerson creates an active person with an issued, non-expiring
// credential assigned to scheduleID.
func (f fixture) addPerson(t *testing.T, id, doc, scheduleID string) types.Person {
	t.Helper()
	ctx := context.Background()
	p, err := f.registry.CreatePerson(ctx, types.Person{
		ID: id, FirstName: "Test", LastName: "Person " + id, DocumentID: doc,
		Active: true, ScheduleID: scheduleID,
	})
	require.NoError(t, err)
	p, err = f.registry.IssueCredential(ctx, id, nil)
	require.NoError(t, err)
	return p
}
