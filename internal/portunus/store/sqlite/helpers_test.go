package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Renatocm0708/qr-access-nexus/internal/db"
	sqlitestore "github.com/Renatocm0708/qr-access-nexus/internal/portunus/store/sqlite"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production.  The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each test gets its own shared-cache in-memory database, kept alive for
	// the lifetime of the pool.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		name,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn.  The worker is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

type testStores struct {
	conn      *sql.DB
	schedules *sqlitestore.ScheduleStore
	people    *sqlitestore.PersonStore
	logs      *sqlitestore.AccessLogStore
	terminals *sqlitestore.TerminalStore
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	return testStores{
		conn:      conn,
		schedules: sqlitestore.NewScheduleStore(conn, w),
		people:    sqlitestore.NewPersonStore(conn, w),
		logs:      sqlitestore.NewAccessLogStore(conn, w),
		terminals: sqlitestore.NewTerminalStore(conn, w),
	}
}
