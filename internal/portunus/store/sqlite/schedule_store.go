package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbpkg "github.com/Renatocm0708/qr-access-nexus/internal/db"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
)

type ScheduleStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScheduleStore(db *sql.DB, writer *dbpkg.Worker) *ScheduleStore {
	return &ScheduleStore{db: db, writer: writer}
}

func (s *ScheduleStore) CreateSchedule(ctx context.Context, w schedule.Window) error {
	ms := nowMs()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO schedules(
  schedule_id, name, days_mask, start_minute, end_minute, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`, w.ID, w.Name, int(w.Days), int(w.Start), int(w.End), ms, ms); err != nil {
			if isUniqueViolation(err) {
				return apperr.Duplicate("schedule", w.ID)
			}
			return fmt.Errorf("CreateSchedule insert: %w", err)
		}
		return nil
	})
}

func (s *ScheduleStore) UpdateSchedule(ctx context.Context, w schedule.Window) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE schedules
SET name = ?, days_mask = ?, start_minute = ?, end_minute = ?, updated_at_ms = ?
WHERE schedule_id = ?;
`, w.Name, int(w.Days), int(w.Start), int(w.End), nowMs(), w.ID)
		if err != nil {
			return fmt.Errorf("UpdateSchedule: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("schedule", w.ID)
		}
		return nil
	})
}

func (s *ScheduleStore) DeleteSchedule(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE schedule_id = ?;`, id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperr.InUse("schedule", id, -1)
			}
			return fmt.Errorf("DeleteSchedule: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("schedule", id)
		}
		return nil
	})
}

func (s *ScheduleStore) GetSchedule(ctx context.Context, id string) (schedule.Window, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT schedule_id, name, days_mask, start_minute, end_minute
FROM schedules WHERE schedule_id = ?;
`, id)
	w, err := scanWindow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Window{}, apperr.NotFound("schedule", id)
	}
	if err != nil {
		return schedule.Window{}, fmt.Errorf("GetSchedule: %w", err)
	}
	return w, nil
}

func (s *ScheduleStore) ListSchedules(ctx context.Context) ([]schedule.Window, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT schedule_id, name, days_mask, start_minute, end_minute
FROM schedules ORDER BY seq ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListSchedules: %w", err)
	}
	defer rows.Close()

	var out []schedule.Window
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("ListSchedules scan: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWindow(sc scanner) (schedule.Window, error) {
	var (
		w          schedule.Window
		days       int
		start, end int
	)
	if err := sc.Scan(&w.ID, &w.Name, &days, &start, &end); err != nil {
		return schedule.Window{}, err
	}
	w.Days = schedule.WeekdaySet(days)
	w.Start = schedule.TimeOfDay(start)
	w.End = schedule.TimeOfDay(end)
	return w, nil
}
