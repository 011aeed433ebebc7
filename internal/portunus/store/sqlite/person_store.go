package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	dbpkg "github.com/Renatocm0708/qr-access-nexus/internal/db"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

type PersonStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPersonStore(db *sql.DB, writer *dbpkg.Worker) *PersonStore {
	return &PersonStore{db: db, writer: writer}
}

const personColumns = `person_id, first_name, last_name, document_id, email, phone, active,
  schedule_id, credential_issued, credential_issued_ms, credential_expires_ms`

func (s *PersonStore) CreatePerson(ctx context.Context, p types.Person) error {
	ms := nowMs()
	issued, issuedMs, expiresMs := credentialColumns(p.Credential)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO people(`+personColumns+`, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, p.ID, p.FirstName, p.LastName, p.DocumentID, p.Email, p.Phone, boolInt(p.Active),
			nullableString(p.ScheduleID), issued, issuedMs, expiresMs, ms, ms); err != nil {
			return s.mapWriteErr("CreatePerson", p, err)
		}
		return nil
	})
}

func (s *PersonStore) UpdatePerson(ctx context.Context, p types.Person) error {
	issued, issuedMs, expiresMs := credentialColumns(p.Credential)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE people
SET first_name = ?, last_name = ?, document_id = ?, email = ?, phone = ?, active = ?,
    schedule_id = ?, credential_issued = ?, credential_issued_ms = ?,
    credential_expires_ms = ?, updated_at_ms = ?
WHERE person_id = ?;
`, p.FirstName, p.LastName, p.DocumentID, p.Email, p.Phone, boolInt(p.Active),
			nullableString(p.ScheduleID), issued, issuedMs, expiresMs, nowMs(), p.ID)
		if err != nil {
			return s.mapWriteErr("UpdatePerson", p, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("person", p.ID)
		}
		return nil
	})
}

func (s *PersonStore) mapWriteErr(op string, p types.Person, err error) error {
	switch {
	case isUniqueViolation(err) && strings.Contains(err.Error(), "document_id"):
		return apperr.Duplicate("document", p.DocumentID)
	case isUniqueViolation(err):
		return apperr.Duplicate("person", p.ID)
	case isForeignKeyViolation(err):
		return apperr.Invalid("schedule_id", "unknown schedule %q", p.ScheduleID)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *PersonStore) DeletePerson(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM people WHERE person_id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeletePerson: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("person", id)
		}
		return nil
	})
}

func (s *PersonStore) GetPerson(ctx context.Context, id string) (types.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE person_id = ?;`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Person{}, apperr.NotFound("person", id)
	}
	if err != nil {
		return types.Person{}, fmt.Errorf("GetPerson: %w", err)
	}
	return p, nil
}

func (s *PersonStore) GetPersonByDocument(ctx context.Context, documentID string) (types.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE document_id = ?;`, documentID)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Person{}, apperr.NotFound("document", documentID)
	}
	if err != nil {
		return types.Person{}, fmt.Errorf("GetPersonByDocument: %w", err)
	}
	return p, nil
}

func (s *PersonStore) ListPeople(ctx context.Context) ([]types.Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+personColumns+` FROM people ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("ListPeople: %w", err)
	}
	defer rows.Close()

	var out []types.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPeople scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PersonStore) PeopleWithSchedule(ctx context.Context, scheduleID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT person_id FROM people WHERE schedule_id = ? ORDER BY seq ASC;
`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("PeopleWithSchedule: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("PeopleWithSchedule scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PersonStore) ClearSchedule(ctx context.Context, scheduleID string) (int, error) {
	var n int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE people SET schedule_id = NULL, updated_at_ms = ? WHERE schedule_id = ?;
`, nowMs(), scheduleID)
		if err != nil {
			return fmt.Errorf("ClearSchedule: %w", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return int(n), err
}

func credentialColumns(c *types.Credential) (issued int, issuedMs, expiresMs any) {
	if c == nil {
		return 0, nil, nil
	}
	var at any
	if !c.IssuedAt.IsZero() {
		at = c.IssuedAt.UTC().UnixMilli()
	}
	return boolInt(c.Issued), at, nullableMs(c.ExpiresAt)
}

func scanPerson(sc scanner) (types.Person, error) {
	var (
		p                   types.Person
		active, issued      int
		scheduleID          sql.NullString
		issuedMs, expiresMs sql.NullInt64
	)
	if err := sc.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DocumentID, &p.Email, &p.Phone,
		&active, &scheduleID, &issued, &issuedMs, &expiresMs); err != nil {
		return types.Person{}, err
	}
	p.Active = active == 1
	p.ScheduleID = scheduleID.String
	if issued == 1 || issuedMs.Valid || expiresMs.Valid {
		c := &types.Credential{Issued: issued == 1}
		if issuedMs.Valid {
			c.IssuedAt = msTime(issuedMs.Int64)
		}
		if expiresMs.Valid {
			exp := msTime(expiresMs.Int64)
			c.ExpiresAt = &exp
		}
		p.Credential = c
	}
	return p, nil
}
