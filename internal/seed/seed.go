// Package seed loads fixture data (by default the dashboard's demo set)
// through the regular services, so every record passes the same validation
// as API input.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

//go:embed demo.yaml
var demoYAML []byte

type Fixtures struct {
	Schedules []ScheduleFixture `yaml:"schedules"`
	People    []PersonFixture   `yaml:"people"`
	Terminals []TerminalFixture `yaml:"terminals"`
	Requests  []RequestFixture  `yaml:"requests"`
}

type ScheduleFixture struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Days  []string `yaml:"days"`
	Start string   `yaml:"start"`
	End   string   `yaml:"end"`
}

func (f ScheduleFixture) window() (schedule.Window, error) {
	days, err := schedule.ParseWeekdaySet(f.Days)
	if err != nil {
		return schedule.Window{}, apperr.Invalid("days", "%v", err)
	}
	start, err := schedule.ParseTimeOfDay(f.Start)
	if err != nil {
		return schedule.Window{}, apperr.Invalid("start", "%v", err)
	}
	end, err := schedule.ParseTimeOfDay(f.End)
	if err != nil {
		return schedule.Window{}, apperr.Invalid("end", "%v", err)
	}
	return schedule.NewWindow(f.ID, f.Name, days, start, end)
}

type PersonFixture struct {
	ID         string `yaml:"id"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	DocumentID string `yaml:"document_id"`
	Email      string `yaml:"email"`
	Phone      string `yaml:"phone"`
	Active     bool   `yaml:"active"`
	ScheduleID string `yaml:"schedule_id"`
	Credential bool   `yaml:"credential"` // issue a non-expiring credential
}

type RequestFixture struct {
	PersonID   string `yaml:"person_id"`
	DocumentID string `yaml:"document_id"`
	TerminalID string `yaml:"terminal_id"`
	Timestamp  string `yaml:"timestamp"`
}

type TerminalFixture struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	IPAddress string `yaml:"ip_address"`
	Port      string `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// Demo returns the embedded demo fixtures.
func Demo() (Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(demoYAML, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("demo fixtures: %w", err)
	}
	return fx, nil
}

// Read decodes fixtures from a YAML document. Unknown keys are rejected.
func Read(r io.Reader) (Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return fx, nil
}

type Targets struct {
	Registry  *service.Registry
	Terminals *service.TerminalRegistry
	Evaluator *service.Evaluator // nil skips request replay
	Logger    *zap.Logger
}

type Result struct {
	Schedules, People, Terminals, Requests int
	Skipped                                int // records whose id already existed
}

// Apply loads fx in dependency order: schedules, people, terminals, then
// replayed requests. Schedules and people that already exist are skipped;
// terminals are upserted and requests are replayed on every call.
func Apply(ctx context.Context, t Targets, fx Fixtures) (Result, error) {
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result

	skip := func(kind, id string, err error) bool {
		if errors.Is(err, apperr.ErrDuplicateID) {
			logger.Debug("seed: already present", zap.String("kind", kind), zap.String("id", id))
			res.Skipped++
			return true
		}
		return false
	}

	for _, sf := range fx.Schedules {
		w, err := sf.window()
		if err != nil {
			return res, fmt.Errorf("schedule %q: %w", sf.ID, err)
		}
		if _, err := t.Registry.CreateSchedule(ctx, w); err != nil {
			if skip("schedule", sf.ID, err) {
				continue
			}
			return res, fmt.Errorf("schedule %q: %w", sf.ID, err)
		}
		res.Schedules++
	}

	for _, pf := range fx.People {
		_, err := t.Registry.CreatePerson(ctx, types.Person{
			ID:         pf.ID,
			FirstName:  pf.FirstName,
			LastName:   pf.LastName,
			DocumentID: pf.DocumentID,
			Email:      pf.Email,
			Phone:      pf.Phone,
			Active:     pf.Active,
			ScheduleID: pf.ScheduleID,
		})
		if err != nil {
			if skip("person", pf.ID, err) {
				continue
			}
			return res, fmt.Errorf("person %q: %w", pf.ID, err)
		}
		if pf.Credential {
			if _, err := t.Registry.IssueCredential(ctx, pf.ID, nil); err != nil {
				return res, fmt.Errorf("person %q credential: %w", pf.ID, err)
			}
		}
		res.People++
	}

	if t.Terminals != nil {
		for _, tf := range fx.Terminals {
			if _, err := t.Terminals.Configure(ctx, service.TerminalSettings{
				ID:        tf.ID,
				Name:      tf.Name,
				IPAddress: tf.IPAddress,
				Port:      tf.Port,
				Username:  tf.Username,
				Password:  tf.Password,
			}); err != nil {
				return res, fmt.Errorf("terminal %q: %w", tf.ID, err)
			}
			res.Terminals++
		}
	}

	if t.Evaluator != nil {
		for i, rf := range fx.Requests {
			req := types.AccessRequest{
				PersonID:   rf.PersonID,
				DocumentID: rf.DocumentID,
				TerminalID: rf.TerminalID,
				Timestamp:  rf.Timestamp,
			}
			if _, err := t.Evaluator.Evaluate(ctx, req); err != nil {
				return res, fmt.Errorf("request %d: %w", i, err)
			}
			res.Requests++
		}
	}

	logger.Info("seed applied",
		zap.Int("schedules", res.Schedules),
		zap.Int("people", res.People),
		zap.Int("terminals", res.Terminals),
		zap.Int("requests", res.Requests),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
