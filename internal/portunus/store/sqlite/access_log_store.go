package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"

	dbpkg "github.com/Renatocm0708/qr-access-nexus/internal/db"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// AccessLogStore persists decisions into the append-only access_log table.
// UPDATE and DELETE are rejected by triggers.
type AccessLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessLogStore(db *sql.DB, writer *dbpkg.Worker) *AccessLogStore {
	return &AccessLogStore{db: db, writer: writer}
}

func (s *AccessLogStore) Append(ctx context.Context, e types.AccessLogEntry) (types.AccessLogEntry, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, offset := e.Timestamp.Zone()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO access_log(
  entry_id, ts_ms, ts_offset_s, person_id, person_name, document_id,
  terminal_id, terminal_name, schedule_id, allowed, reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			e.ID, e.Timestamp.UnixMilli(), offset, e.PersonID, e.PersonName, e.DocumentID,
			e.TerminalID, e.TerminalName, e.ScheduleID, boolInt(e.Allowed), string(e.Reason),
		)
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append seq: %w", err)
		}
		e.Seq = seq
		return nil
	})
	if err != nil {
		return types.AccessLogEntry{}, err
	}
	return e, nil
}

// Query runs a fresh SELECT each time the sequence is ranged over. Rows are
// closed when the consumer stops early.
func (s *AccessLogStore) Query(ctx context.Context, f store.LogFilter) iter.Seq2[types.AccessLogEntry, error] {
	query, args := buildLogQuery(f)
	return func(yield func(types.AccessLogEntry, error) bool) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(types.AccessLogEntry{}, fmt.Errorf("Query: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(types.AccessLogEntry{}, fmt.Errorf("Query scan: %w", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.AccessLogEntry{}, fmt.Errorf("Query rows: %w", err))
		}
	}
}

func buildLogQuery(f store.LogFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "ts_ms >= ?")
		args = append(args, f.From.UnixMilli())
	}
	if !f.To.IsZero() {
		where = append(where, "ts_ms < ?")
		args = append(args, f.To.UnixMilli())
	}
	switch f.Status {
	case store.StatusAllowed:
		where = append(where, "allowed = 1")
	case store.StatusDenied:
		where = append(where, "allowed = 0")
	}
	if f.TerminalID != "" {
		where = append(where, "terminal_id = ?")
		args = append(args, f.TerminalID)
	}
	if f.PersonID != "" {
		where = append(where, "person_id = ?")
		args = append(args, f.PersonID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Text)); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = append(where, `(LOWER(person_name) LIKE ? ESCAPE '\' OR LOWER(document_id) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	var b strings.Builder
	b.WriteString(`
SELECT entry_id, seq, ts_ms, ts_offset_s, person_id, person_name, document_id,
       terminal_id, terminal_name, schedule_id, allowed, reason
FROM access_log`)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\nORDER BY ts_ms DESC, seq ASC")
	if f.Limit > 0 {
		b.WriteString("\nLIMIT ?")
		args = append(args, f.Limit)
	}
	b.WriteString(";")
	return b.String(), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func scanEntry(sc scanner) (types.AccessLogEntry, error) {
	var (
		e       types.AccessLogEntry
		tsMs    int64
		offset  int
		allowed int
		reason  string
	)
	if err := sc.Scan(&e.ID, &e.Seq, &tsMs, &offset, &e.PersonID, &e.PersonName, &e.DocumentID,
		&e.TerminalID, &e.TerminalName, &e.ScheduleID, &allowed, &reason); err != nil {
		return types.AccessLogEntry{}, err
	}
	e.Timestamp = msTime(tsMs)
	if offset != 0 {
		e.Timestamp = e.Timestamp.In(time.FixedZone("", offset))
	}
	e.Allowed = allowed == 1
	e.Reason = types.Reason(reason)
	return e, nil
}
