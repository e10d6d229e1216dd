// Package querylog implements a write-behind SQLite event log of the
// responder's block/cache/forward decisions (SPEC_FULL §4.14). It is a
// pure observability add-on: nothing in spec.md §4.6-§4.7 depends on it
// existing, and a full event channel never blocks or fails a DNS answer.
//
// Grounded on the teacher's internal/database (modernc.org/sqlite,
// golang-migrate/migrate/v4 with an embedded iofs migration source for
// schema setup), but the schema and access pattern are new: the teacher's
// database package is a synchronous config store, this is an async,
// append-only event log fed by a single background writer goroutine.
package querylog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/pinedrop/noxdns/internal/wire"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// eventChanSize bounds how many pending events the writer goroutine may
// buffer before a burst of traffic starts dropping events instead of
// slowing down the request path (SPEC_FULL §4.14: "a full channel drops
// the event rather than blocking").
const eventChanSize = 1024

// Event is one posted record of a responder decision.
type Event struct {
	Time       time.Time
	ClientAddr string
	QName      string
	QType      uint16
	Outcome    string
}

// Log owns the SQLite connection and the background writer goroutine that
// drains events into it.
type Log struct {
	db     *sql.DB
	events chan Event
	done   chan struct{}
	logger *slog.Logger
}

// Open creates or migrates the SQLite database at path and starts the
// background writer goroutine. Call Close to flush and release resources.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open query log database: %w", err)
	}
	conn.SetMaxOpenConns(1) // single writer goroutine, no contention to manage

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate query log database: %w", err)
	}

	l := &Log{
		db:     conn,
		events: make(chan Event, eventChanSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.writeLoop()
	return l, nil
}

func runMigrations(conn *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Record is an responder.EventFunc: assign it to Responder.OnEvent to have
// every responder event posted to the log. A nil *Log is valid
// and a no-op, matching the "disabled" contract of SPEC_FULL §4.14 (the
// channel send is skipped entirely so a disabled log costs nothing).
func (l *Log) Record(event string, q wire.Question, peer string) {
	if l == nil {
		return
	}
	ev := Event{
		Time:       time.Now(),
		ClientAddr: peer,
		QName:      q.Name.String(),
		QType:      q.Type,
		Outcome:    event,
	}
	select {
	case l.events <- ev:
	default:
		l.logger.Debug("query log channel full, dropping event", "outcome", event, "qname", ev.QName)
	}
}

func (l *Log) writeLoop() {
	defer close(l.done)
	for ev := range l.events {
		if _, err := l.db.Exec(
			`INSERT INTO query_events (occurred_at, client_addr, qname, qtype, outcome) VALUES (?, ?, ?, ?, ?)`,
			ev.Time, ev.ClientAddr, ev.QName, ev.QType, ev.Outcome,
		); err != nil {
			l.logger.Warn("query log insert failed", "error", err)
		}
	}
}

// Close stops accepting new events, waits for the writer goroutine to
// drain the channel, and closes the database connection. Calling Close
// again after it has returned is a no-op.
func (l *Log) Close() error {
	select {
	case <-l.done:
		return nil
	default:
	}
	close(l.events)
	<-l.done
	return l.db.Close()
}

// Recent returns up to limit of the most recent events, newest first. It
// is read-only operator tooling; the responder's hot path never calls it.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT occurred_at, client_addr, qname, qtype, outcome FROM query_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Time, &ev.ClientAddr, &ev.QName, &ev.QType, &ev.Outcome); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
