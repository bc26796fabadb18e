package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS baseline_versions (
	version_id    TEXT PRIMARY KEY,
	scenario      TEXT NOT NULL,
	parent_id     TEXT,
	recording     TEXT NOT NULL,
	source        TEXT,
	note          TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES baseline_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_baseline_versions_scenario ON baseline_versions(scenario, created_at);

CREATE TABLE IF NOT EXISTS active_baselines (
	scenario      TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES baseline_versions(version_id)
);

CREATE TABLE IF NOT EXISTS evaluation_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           TEXT NOT NULL,
	scenario         TEXT NOT NULL,
	baseline_version TEXT,
	raw_score        REAL NOT NULL,
	final_score      REAL NOT NULL,
	label            TEXT NOT NULL,
	action           TEXT NOT NULL,
	reason           TEXT,
	verdict_json     TEXT,
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluation_log_scenario ON evaluation_log(scenario, id);
`
// #endregion schema

// #region store-struct
// Store manages versioned baselines and the evaluation log in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region promote
// PromoteBaseline stores recording as a new baseline version for scenario and
// makes it active. The previously active version becomes its parent.
func (s *Store) PromoteBaseline(scenario string, recording []byte, source, note string) (Baseline, error) {
	if scenario == "" {
		return Baseline{}, fmt.Errorf("promote baseline: empty scenario")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Baseline{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentID sql.NullString
	err = tx.QueryRow(`SELECT version_id FROM active_baselines WHERE scenario = ?`, scenario).Scan(&parentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Baseline{}, fmt.Errorf("get active: %w", err)
	}

	rec := Baseline{
		VersionID: uuid.New().String(),
		Scenario:  scenario,
		Recording: recording,
		Source:    source,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	var parentPtr interface{}
	if parentID.Valid {
		rec.ParentID = parentID.String
		parentPtr = parentID.String
	}

	_, err = tx.Exec(
		`INSERT INTO baseline_versions (version_id, scenario, parent_id, recording, source, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, scenario, parentPtr, string(recording), source, note, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Baseline{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_baselines (scenario, version_id) VALUES (?, ?)
		 ON CONFLICT(scenario) DO UPDATE SET version_id = excluded.version_id`,
		scenario, rec.VersionID,
	)
	if err != nil {
		return Baseline{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Baseline{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}
// #endregion promote

// #region get-active
// GetActive reads the active baseline of scenario.
func (s *Store) GetActive(scenario string) (Baseline, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_baselines WHERE scenario = ?`, scenario).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Baseline{}, fmt.Errorf("get active %s: %w", scenario, ErrNotFound)
	}
	if err != nil {
		return Baseline{}, fmt.Errorf("get active %s: %w", scenario, err)
	}
	return s.GetVersion(versionID)
}
// #endregion get-active

// #region get-version
// GetVersion retrieves a specific baseline version by ID.
func (s *Store) GetVersion(id string) (Baseline, error) {
	var rec Baseline
	var parentID, source, note sql.NullString
	var recording, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, scenario, parent_id, recording, source, note, created_at
		 FROM baseline_versions WHERE version_id = ?`, id,
	).Scan(&rec.VersionID, &rec.Scenario, &parentID, &recording, &source, &note, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Baseline{}, fmt.Errorf("get version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Baseline{}, fmt.Errorf("get version %s: %w", id, err)
	}

	rec.ParentID = parentID.String
	rec.Source = source.String
	rec.Note = note.String
	rec.Recording = []byte(recording)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}
// #endregion get-version

// #region rollback
// Rollback sets the active baseline of scenario to a previous version. When
// targetVersionID is empty the parent of the active version is used.
func (s *Store) Rollback(scenario, targetVersionID string) (Baseline, error) {
	if targetVersionID == "" {
		active, err := s.GetActive(scenario)
		if err != nil {
			return Baseline{}, err
		}
		if active.ParentID == "" {
			return Baseline{}, fmt.Errorf("rollback %s: no previous version: %w", scenario, ErrNotFound)
		}
		targetVersionID = active.ParentID
	}

	target, err := s.GetVersion(targetVersionID)
	if err != nil {
		return Baseline{}, err
	}
	if target.Scenario != scenario {
		return Baseline{}, fmt.Errorf("rollback %s: version %s belongs to %s", scenario, targetVersionID, target.Scenario)
	}

	_, err = s.db.Exec(`UPDATE active_baselines SET version_id = ? WHERE scenario = ?`, targetVersionID, scenario)
	if err != nil {
		return Baseline{}, fmt.Errorf("rollback: %w", err)
	}
	return target, nil
}
// #endregion rollback

// #region list-versions
// ListVersions returns the baseline versions of scenario, newest first.
func (s *Store) ListVersions(scenario string, limit int) ([]BaselineSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT v.version_id, v.scenario, v.parent_id, v.source, v.note, v.created_at,
		        a.version_id IS NOT NULL
		 FROM baseline_versions v
		 LEFT JOIN active_baselines a ON a.version_id = v.version_id
		 WHERE v.scenario = ?
		 ORDER BY v.created_at DESC, v.rowid DESC LIMIT ?`, scenario, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []BaselineSummary
	for rows.Next() {
		var rec BaselineSummary
		var parentID, source, note sql.NullString
		var createdStr string

		if err := rows.Scan(&rec.VersionID, &rec.Scenario, &parentID, &source, &note, &createdStr, &rec.Active); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.ParentID = parentID.String
		rec.Source = source.String
		rec.Note = note.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-versions

// #region list-scenarios
// ListScenarios returns every scenario with an active baseline, sorted.
func (s *Store) ListScenarios() ([]string, error) {
	rows, err := s.db.Query(`SELECT scenario FROM active_baselines ORDER BY scenario`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
// #endregion list-scenarios
