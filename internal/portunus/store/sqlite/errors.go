// Package sqlite implements the store contracts on modernc.org/sqlite.
// Reads use the *sql.DB directly; every write goes through the single
// db.Worker.
package sqlite

import (
	"errors"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nowMs() int64 { return time.Now().UTC().UnixMilli() }

func nullableMs(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().UnixMilli()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func msTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
