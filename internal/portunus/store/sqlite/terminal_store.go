package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/Renatocm0708/qr-access-nexus/internal/db"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

type TerminalStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewTerminalStore(db *sql.DB, writer *dbpkg.Worker) *TerminalStore {
	return &TerminalStore{db: db, writer: writer}
}

// UpsertTerminal writes the settings columns. Liveness (status, last seen)
// is left alone on update unless a status is given.
func (s *TerminalStore) UpsertTerminal(ctx context.Context, t types.Terminal) error {
	ms := nowMs()
	status := string(t.Status)
	var hash any
	if len(t.PasswordHash) > 0 {
		hash = t.PasswordHash
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO terminals(
  terminal_id, name, ip_address, port, username, password_hash, status,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), 'disconnected'), ?, ?)
ON CONFLICT(terminal_id) DO UPDATE SET
  name          = excluded.name,
  ip_address    = excluded.ip_address,
  port          = excluded.port,
  username      = excluded.username,
  password_hash = COALESCE(excluded.password_hash, terminals.password_hash),
  status        = CASE WHEN ? = '' THEN terminals.status ELSE excluded.status END,
  updated_at_ms = excluded.updated_at_ms;
`, t.ID, t.Name, t.IPAddress, t.Port, t.Username, hash, status, ms, ms, status); err != nil {
			return fmt.Errorf("UpsertTerminal: %w", err)
		}
		return nil
	})
}

func (s *TerminalStore) DeleteTerminal(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM terminals WHERE terminal_id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeleteTerminal: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("terminal", id)
		}
		return nil
	})
}

const terminalColumns = `terminal_id, name, ip_address, port, username, password_hash, status,
  last_seen_at_ms, last_event_at_ms`

func (s *TerminalStore) GetTerminal(ctx context.Context, id string) (types.Terminal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+terminalColumns+` FROM terminals WHERE terminal_id = ?;`, id)
	t, err := scanTerminal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Terminal{}, apperr.NotFound("terminal", id)
	}
	if err != nil {
		return types.Terminal{}, fmt.Errorf("GetTerminal: %w", err)
	}
	return t, nil
}

func (s *TerminalStore) ListTerminals(ctx context.Context) ([]types.Terminal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+terminalColumns+` FROM terminals ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("ListTerminals: %w", err)
	}
	defer rows.Close()

	var out []types.Terminal
	for rows.Next() {
		t, err := scanTerminal(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTerminals scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkSeen: ensure the terminal row exists (even if never configured) and
// bump its liveness. last_event_at_ms only moves forward.
func (s *TerminalStore) MarkSeen(ctx context.Context, id string, seenAt, eventAt time.Time) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}
	seenMs := seenAt.UTC().UnixMilli()
	var eventMs any
	if !eventAt.IsZero() {
		eventMs = eventAt.UTC().UnixMilli()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO terminals(terminal_id, name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?);
`, id, id, seenMs, seenMs); err != nil {
			return fmt.Errorf("MarkSeen insert terminal: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE terminals
SET last_seen_at_ms  = ?,
    status           = 'connected',
    last_event_at_ms = CASE
      WHEN ? IS NULL THEN last_event_at_ms
      WHEN last_event_at_ms IS NULL OR ? > last_event_at_ms THEN ?
      ELSE last_event_at_ms END,
    updated_at_ms    = ?
WHERE terminal_id = ?;
`, seenMs, eventMs, eventMs, eventMs, seenMs, id); err != nil {
			return fmt.Errorf("MarkSeen update terminal: %w", err)
		}
		return nil
	})
}

func (s *TerminalStore) MarkStaleDisconnected(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE terminals
SET status = 'disconnected', updated_at_ms = ?
WHERE status = 'connected'
  AND (last_seen_at_ms IS NULL OR last_seen_at_ms < ?);
`, nowMs(), cutoff.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("MarkStaleDisconnected: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

func scanTerminal(sc scanner) (types.Terminal, error) {
	var (
		t             types.Terminal
		status        string
		seenMs, evtMs sql.NullInt64
	)
	if err := sc.Scan(&t.ID, &t.Name, &t.IPAddress, &t.Port, &t.Username, &t.PasswordHash,
		&status, &seenMs, &evtMs); err != nil {
		return types.Terminal{}, err
	}
	t.Status = types.TerminalStatus(status)
	if seenMs.Valid {
		v := msTime(seenMs.Int64)
		t.LastSeenAt = &v
	}
	if evtMs.Valid {
		v := msTime(evtMs.Int64)
		t.LastEventAt = &v
	}
	return t, nil
}
