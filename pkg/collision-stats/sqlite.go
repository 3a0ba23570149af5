package collisionstats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/go-libsql"
)

type Sqlite struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func ClearSQLiteFiles(path string) {
	os.Remove(path)
	os.Remove(fmt.Sprintf("%s-shm", path))
	os.Remove(fmt.Sprintf("%s-wal", path))
}

// NewSqlite opens (and migrates) a libsql database. path is a libsql url,
// "file:/tmp/sat.db" for a local file.
func NewSqlite(path string) (*Sqlite, error) {
	db, err := sqlx.Open("libsql", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	s := &Sqlite{
		db:     db,
		logger: slog.Default().With("area", "Sqlite"),
	}
	if err := s.setSqliteModes(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sqlite) setPragma(name string, value string) error {
	row := s.db.QueryRowx(fmt.Sprintf("PRAGMA %s=%s;", name, value))
	var v string
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("pragma %s=%s: %w", name, value, err)
	}
	s.logger.Debug("pragma", "name", name, "value", v)
	return nil
}

func (s *Sqlite) setSqliteModes() error {
	if err := s.setPragma("busy_timeout", "3000"); err != nil {
		return err
	}
	return s.setPragma("journal_mode", "WAL")
}

func (s *Sqlite) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS ContactTransitions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        frame INTEGER NOT NULL,
        a TEXT NOT NULL,
        b TEXT NOT NULL,
        colliding INTEGER NOT NULL,
        at_ms INTEGER NOT NULL
    );`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating ContactTransitions: %w", err)
	}

	runs := `
    CREATE TABLE IF NOT EXISTS Runs (
        run_id TEXT PRIMARY KEY,
        frames INTEGER NOT NULL
    );`
	if _, err := s.db.Exec(runs); err != nil {
		return fmt.Errorf("creating Runs: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_run_pair ON ContactTransitions (run_id, a, b);`
	if _, err := s.db.Exec(index); err != nil {
		return fmt.Errorf("creating idx_run_pair: %w", err)
	}
	return nil
}

func (s *Sqlite) Record(rec Record) error {
	query := `INSERT INTO ContactTransitions (run_id, frame, a, b, colliding, at_ms)
VALUES (?, ?, ?, ?, ?, ?);`

	_, err := s.db.Exec(query, rec.RunId, rec.Frame, rec.A, rec.B, rec.Colliding, rec.AtMs)
	if err != nil {
		return err
	}
	s.logger.Debug("recorded", "transition", rec.String())
	return nil
}

func (s *Sqlite) Transitions(runId string) ([]Record, error) {
	out := []Record{}
	query := `SELECT id, run_id, frame, a, b, colliding, at_ms
FROM ContactTransitions
WHERE run_id=?
ORDER BY id;`

	if err := s.db.Select(&out, query, runId); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Sqlite) CountColliding(runId string) (int, error) {
	query := `SELECT COUNT(*)
FROM ContactTransitions t
WHERE t.run_id=? AND t.colliding=1 AND t.id = (
    SELECT MAX(id) FROM ContactTransitions
    WHERE run_id=t.run_id AND a=t.a AND b=t.b
);`

	var count int
	if err := s.db.Get(&count, query, runId); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Sqlite) EndRun(runId string, frames int64) error {
	query := `INSERT INTO Runs (run_id, frames) VALUES (?, ?)
ON CONFLICT(run_id) DO UPDATE SET frames=excluded.frames;`
	_, err := s.db.Exec(query, runId, frames)
	return err
}

func (s *Sqlite) RunFrames(runId string) (int64, bool, error) {
	var frames int64
	err := s.db.Get(&frames, `SELECT frames FROM Runs WHERE run_id=?;`, runId)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return frames, true, nil
}

func (s *Sqlite) Run(ctx context.Context) {}

func (s *Sqlite) Close() error {
	return s.db.Close()
}
