// Package persistence provides SQLite-based storage for simulation runs:
// the properties of each run, site records at its start and end, and the
// per-year statistics series.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/stats"
	"github.com/talgya/hivesim/internal/world"
)

// Site record phases.
const (
	PhaseStart = "start"
	PhaseEnd   = "end"
)

// Run statuses.
const (
	StatusRunning     = "running"
	StatusFinished    = "finished"
	StatusInterrupted = "interrupted"
	StatusFailed      = "failed"
)

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Run is one row of the runs table.
type Run struct {
	ID             string `db:"id" json:"id"`
	StartedAt      string `db:"started_at" json:"started_at"`
	Seed           int64  `db:"seed" json:"seed"`
	SimLength      int    `db:"sim_length" json:"sim_length"`
	YearsCompleted int    `db:"years_completed" json:"years_completed"`
	Status         string `db:"status" json:"status"`
	PropertiesJSON string `db:"properties_json" json:"-"`
}

// Properties decodes the stored property set.
func (r Run) Properties() (config.Properties, error) {
	p := config.Properties{}
	if err := json.Unmarshal([]byte(r.PropertiesJSON), &p); err != nil {
		return nil, fmt.Errorf("decode properties of run %s: %w", r.ID, err)
	}
	return p, nil
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

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
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		sim_length INTEGER NOT NULL,
		years_completed INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		properties_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS site_records (
		run_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		domestic INTEGER NOT NULL,
		queen_breeder INTEGER NOT NULL,
		total_colonies INTEGER NOT NULL,
		live_colonies INTEGER NOT NULL,
		dead_colonies INTEGER NOT NULL,
		avg_live_strength REAL NOT NULL,
		max_live_strength REAL NOT NULL,
		min_live_strength REAL NOT NULL,
		PRIMARY KEY (run_id, phase, x, y)
	);

	CREATE TABLE IF NOT EXISTS year_stats (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		metric TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, year, metric)
	);

	CREATE INDEX IF NOT EXISTS idx_year_stats_metric ON year_stats(run_id, metric);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun records a new run and its full property set.
func (db *DB) CreateRun(id string, cfg config.Config) error {
	propsJSON, err := json.Marshal(cfg.Props)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	_, err = db.conn.Exec(`INSERT INTO runs
		(id, started_at, seed, sim_length, years_completed, status, properties_json)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), cfg.Seed, cfg.SimLength, StatusRunning, string(propsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// FinishRun stores the final status of a run.
func (db *DB) FinishRun(id string, years int, status string) error {
	_, err := db.conn.Exec("UPDATE runs SET years_completed = ?, status = ? WHERE id = ?", years, status, id)
	return err
}

// LoadRun returns one run.
func (db *DB) LoadRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, `SELECT id, started_at, seed, sim_length, years_completed, status, properties_json
		FROM runs WHERE id = ?`, id)
	return r, err
}

// SaveSiteRecords writes every site record of a run phase (full replace).
func (db *DB) SaveSiteRecords(runID, phase string, records []world.SiteRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM site_records WHERE run_id = ? AND phase = ?", runID, phase); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO site_records
		(run_id, phase, x, y, domestic, queen_breeder, total_colonies, live_colonies,
		 dead_colonies, avg_live_strength, max_live_strength, min_live_strength)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			runID, phase, r.X, r.Y, boolInt(r.Domestic), boolInt(r.QueenBreeder),
			r.TotalColonies, r.LiveColonies, r.DeadColonies,
			r.AvgLiveStrength, r.MaxLiveStrength, r.MinLiveStrength,
		)
		if err != nil {
			return fmt.Errorf("insert site record (%d,%d): %w", r.X, r.Y, err)
		}
	}

	return tx.Commit()
}

// LoadSiteRecords returns a run phase's site records in row-major order.
func (db *DB) LoadSiteRecords(runID, phase string) ([]world.SiteRecord, error) {
	var records []world.SiteRecord
	err := db.conn.Select(&records, `SELECT x, y, domestic, queen_breeder, total_colonies,
		live_colonies, dead_colonies, avg_live_strength, max_live_strength, min_live_strength
		FROM site_records WHERE run_id = ? AND phase = ? ORDER BY x, y`, runID, phase)
	return records, err
}

// SaveYearStats writes every registered metric for every year (full replace).
func (db *DB) SaveYearStats(runID string, history []stats.Year) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM year_stats WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO year_stats (run_id, year, metric, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, y := range history {
		for _, m := range stats.Metrics() {
			if _, err := stmt.Exec(runID, y.Index, m.Name, m.Value(y)); err != nil {
				return fmt.Errorf("insert %s for year %d: %w", m.Name, y.Index, err)
			}
		}
	}

	return tx.Commit()
}

// StatRow is one row of the year_stats table.
type StatRow struct {
	Year   int     `db:"year" json:"year"`
	Metric string  `db:"metric" json:"metric"`
	Value  float64 `db:"value" json:"value"`
}

// LoadSeries returns every stored metric of a run as a per-year series.
func (db *DB) LoadSeries(runID string) (map[string][]float64, error) {
	var rows []StatRow
	err := db.conn.Select(&rows,
		"SELECT year, metric, value FROM year_stats WHERE run_id = ? ORDER BY metric, year", runID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]float64)
	for _, r := range rows {
		out[r.Metric] = append(out[r.Metric], r.Value)
	}
	return out, nil
}

// SaveRunState writes the end-of-run records and statistics and marks the
// run with status after years simulated years. history starts with the
// founding population as year 0.
func (db *DB) SaveRunState(runID string, years int, records []world.SiteRecord, history []stats.Year, status string) error {
	slog.Info("saving run state", "run", runID, "sites", len(records), "years", years)

	if err := db.SaveSiteRecords(runID, PhaseEnd, records); err != nil {
		return fmt.Errorf("save site records: %w", err)
	}
	if err := db.SaveYearStats(runID, history); err != nil {
		return fmt.Errorf("save year stats: %w", err)
	}
	if err := db.FinishRun(runID, years, status); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	slog.Info("run state saved", "status", status)
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
