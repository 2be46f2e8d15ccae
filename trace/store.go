package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benlang/ben/vm"
	_ "modernc.org/sqlite"
)

// ErrSessionNotFound indicates the requested session doesn't exist.
var ErrSessionNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	program TEXT NOT NULL,
	started TEXT NOT NULL,
	steps INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	events INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	kind TEXT NOT NULL,
	step INTEGER NOT NULL,
	name TEXT NOT NULL,
	pointer INTEGER NOT NULL,
	span_start INTEGER NOT NULL,
	span_end INTEGER NOT NULL,
	stack_depth INTEGER NOT NULL,
	frame_depth INTEGER NOT NULL,
	detail TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

// Store persists trace sessions in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the trace database at path. Use ":memory:"
// for a private in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes a session and its events in one transaction, replacing any
// existing session with the same id.
func (s *Store) Save(ctx context.Context, session Session, events []Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", session.ID); err != nil {
		return fmt.Errorf("replacing session: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, program, started, steps, outcome, events) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, session.Program, session.Started.UTC().Format(time.RFC3339Nano),
		session.Steps, session.Outcome, len(events),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events
		(session_id, seq, kind, step, name, pointer, span_start, span_end, stack_depth, frame_depth, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing event insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			session.ID, e.Seq, string(e.Kind), e.Step, e.Name, e.Pointer,
			e.SpanStart, e.SpanEnd, e.StackDepth, e.FrameDepth, e.Detail,
		)
		if err != nil {
			return fmt.Errorf("saving event %d: %w", e.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// SaveRecorder saves everything r recorded for the run that ended in final.
func (s *Store) SaveRecorder(ctx context.Context, r *Recorder, final *vm.State) error {
	return s.Save(ctx, r.Session(final), r.Events())
}

// Sessions lists sessions, most recent first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, program, started, steps, outcome, events FROM sessions ORDER BY started DESC, id")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Session returns the session with the given id.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, program, started, steps, outcome, events FROM sessions WHERE id = ?", id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, err
}

// Events returns a session's events in recording order.
func (s *Store) Events(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, kind, step, name, pointer, span_start,
		span_end, stack_depth, frame_depth, detail FROM events WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		err := rows.Scan(&e.Seq, &kind, &e.Step, &e.Name, &e.Pointer, &e.SpanStart,
			&e.SpanEnd, &e.StackDepth, &e.FrameDepth, &e.Detail)
		if err != nil {
			return nil, fmt.Errorf("reading event: %w", err)
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes a session and its events.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var session Session
	var started string
	err := row.Scan(&session.ID, &session.Program, &started, &session.Steps, &session.Outcome, &session.Events)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("reading session: %w", err)
	}
	session.Started, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Session{}, fmt.Errorf("parsing session start: %w", err)
	}
	return session, nil
}
