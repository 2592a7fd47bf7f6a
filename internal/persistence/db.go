// Package persistence provides the SQLite run journal.
// The journal records what happened during a run: actions as they are applied
// and periodic snapshots of the world. It is never read back to resume a run;
// every process starts from the fixed starting world.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/clearing/internal/world"
)

// DB wraps a SQLite connection for the run journal.
type DB struct {
	conn *sqlx.DB
}

// Run is one process lifetime of the simulation.
type Run struct {
	ID        string    `db:"id" json:"id"`
	StartedAt time.Time `db:"started_at" json:"started_at"`
}

// ActionRow is a journaled action.
type ActionRow struct {
	RunID   string  `db:"run_id" json:"run_id"`
	Tick    uint64  `db:"tick" json:"tick"`
	Action  int     `db:"action" json:"action"`
	Title   string  `db:"title" json:"title"`
	Applied bool    `db:"applied" json:"applied"`
	Deaths  float64 `db:"deaths" json:"deaths"`
}

// SnapshotRow is a journaled world snapshot.
type SnapshotRow struct {
	RunID       string  `db:"run_id" json:"-"`
	Tick        uint64  `db:"tick" json:"tick"`
	People      float64 `db:"people" json:"people"`
	PeopleBound float64 `db:"people_bound" json:"people_bound"`
	Food        float64 `db:"food" json:"food"`
	FoodBound   float64 `db:"food_bound" json:"food_bound"`
	Land        float64 `db:"land" json:"land"`
	LandBound   float64 `db:"land_bound" json:"land_bound"`
	Wild        float64 `db:"wild" json:"wild"`
	WildBound   float64 `db:"wild_bound" json:"wild_bound"`
	Hermit      float64 `db:"hermit" json:"hermit"`
	HermitBound float64 `db:"hermit_bound" json:"hermit_bound"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between them.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		action INTEGER NOT NULL,
		title TEXT NOT NULL,
		applied INTEGER NOT NULL,
		deaths REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		people REAL NOT NULL,
		people_bound REAL NOT NULL,
		food REAL NOT NULL,
		food_bound REAL NOT NULL,
		land REAL NOT NULL,
		land_bound REAL NOT NULL,
		wild REAL NOT NULL,
		wild_bound REAL NOT NULL,
		hermit REAL NOT NULL,
		hermit_bound REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_run ON actions(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run and returns its id.
func (db *DB) StartRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	slog.Info("journal run started", "run_id", id)
	return id, nil
}

// RecordAction appends an action outcome to the journal.
func (db *DB) RecordAction(ctx context.Context, runID string, tick uint64, out world.Outcome) error {
	_, err := db.conn.NamedExecContext(ctx, `INSERT INTO actions
		(run_id, tick, action, title, applied, deaths)
		VALUES (:run_id, :tick, :action, :title, :applied, :deaths)`,
		ActionRow{
			RunID:   runID,
			Tick:    tick,
			Action:  int(out.Action),
			Title:   out.Title,
			Applied: out.Applied,
			Deaths:  out.Deaths,
		},
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// RecordSnapshot appends a world snapshot to the journal.
func (db *DB) RecordSnapshot(ctx context.Context, runID string, tick uint64, w world.World) error {
	row := SnapshotRow{
		RunID:       runID,
		Tick:        tick,
		People:      w.People.Amount(),
		PeopleBound: w.People.Bound(),
		Food:        w.Food.Amount(),
		FoodBound:   w.Food.Bound(),
		Land:        w.Land.Amount(),
		LandBound:   w.Land.Bound(),
		Wild:        w.Wild.Amount(),
		WildBound:   w.Wild.Bound(),
		Hermit:      w.Hermit.Amount(),
		HermitBound: w.Hermit.Bound(),
	}
	_, err := db.conn.NamedExecContext(ctx, `INSERT INTO snapshots
		(run_id, tick, people, people_bound, food, food_bound, land, land_bound,
		 wild, wild_bound, hermit, hermit_bound)
		VALUES (:run_id, :tick, :people, :people_bound, :food, :food_bound, :land, :land_bound,
		 :wild, :wild_bound, :hermit, :hermit_bound)`, row)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns the newest snapshots of a run, newest first.
func (db *DB) RecentSnapshots(ctx context.Context, runID string, limit int) ([]SnapshotRow, error) {
	var rows []SnapshotRow
	err := db.conn.SelectContext(ctx, &rows, `SELECT run_id, tick, people, people_bound, food, food_bound,
		land, land_bound, wild, wild_bound, hermit, hermit_bound
		FROM snapshots WHERE run_id = ? ORDER BY id DESC LIMIT ?`,
		runID, limit,
	)
	return rows, err
}

// RecentActions returns the newest actions of a run, newest first.
func (db *DB) RecentActions(ctx context.Context, runID string, limit int) ([]ActionRow, error) {
	var rows []ActionRow
	err := db.conn.SelectContext(ctx, &rows, `SELECT run_id, tick, action, title, applied, deaths
		FROM actions WHERE run_id = ? ORDER BY id DESC LIMIT ?`,
		runID, limit,
	)
	return rows, err
}

// Runs returns the most recent runs, newest first.
func (db *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.SelectContext(ctx, &runs,
		"SELECT id, started_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}
