// Package journal persists game runs to SQLite: one row per run, one row
// per executed turn with the digest and snapshot at that point. The journal
// is append-only; replaying a journaled run against its recorded digests is
// how a session proves it was never edited.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/torvik/doomloop/internal/risk"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	seed           TEXT NOT NULL,
	engine_version TEXT NOT NULL,
	rivals_json    TEXT NOT NULL DEFAULT 'null',
	created_at     TEXT NOT NULL,
	finished_at    TEXT,
	final_digest   TEXT,
	final_turn     INTEGER,
	game_over      INTEGER NOT NULL DEFAULT 0,
	victory        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS turn_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           TEXT NOT NULL,
	turn             INTEGER NOT NULL,
	actions_json     TEXT NOT NULL,
	events_json      TEXT NOT NULL,
	choices_json     TEXT NOT NULL,
	papers_published INTEGER NOT NULL,
	doom_value       REAL NOT NULL,
	digest           TEXT NOT NULL,
	snapshot_json    TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	UNIQUE (run_id, turn),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS risk_history (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	turn   INTEGER NOT NULL,
	pool   TEXT NOT NULL,
	delta  REAL NOT NULL,
	source TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store manages the run journal in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
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

// #region create-run
// CreateRun registers a new game session and returns its record. rivalsJSON
// is stored opaquely so the replay side can reconstruct the rival roster;
// pass "" for a run without rivals.
func (s *Store) CreateRun(seed, engineVersion, rivalsJSON string) (RunRecord, error) {
	if rivalsJSON == "" {
		rivalsJSON = "null"
	}
	rec := RunRecord{
		RunID:         uuid.New().String(),
		Seed:          seed,
		EngineVersion: engineVersion,
		RivalsJSON:    rivalsJSON,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, seed, engine_version, rivals_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Seed, rec.EngineVersion, rec.RivalsJSON, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}
// #endregion create-run

// #region append-turn
// AppendTurn writes one executed turn. Turns are unique per (run, number);
// writing the same turn twice is an error, since the journal is append-only.
func (s *Store) AppendTurn(rec TurnRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	actionsJSON, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	eventsJSON, err := json.Marshal(rec.ResolvedEvents)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	choicesJSON, err := json.Marshal(rec.Choices)
	if err != nil {
		return fmt.Errorf("marshal choices: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO turn_log (run_id, turn, actions_json, events_json, choices_json, papers_published, doom_value, digest, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Turn, string(actionsJSON), string(eventsJSON), string(choicesJSON),
		rec.PapersPublished, rec.DoomValue, rec.Digest, rec.SnapshotJSON,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append turn %d: %w", rec.Turn, err)
	}
	return nil
}
// #endregion append-turn

// #region finish-run
// FinishRun closes out a run with its terminal outcome.
func (s *Store) FinishRun(runID, finalDigest string, finalTurn int, gameOver, victory bool) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, final_digest = ?, final_turn = ?, game_over = ?, victory = ?
		 WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), finalDigest, finalTurn,
		boolInt(gameOver), boolInt(victory), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}
// #endregion finish-run

// #region get-run
// GetRun retrieves a run by id.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, seed, engine_version, rivals_json, created_at, finished_at, final_digest, final_turn, game_over, victory
		 FROM runs WHERE run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// LatestRun retrieves the most recently created run.
func (s *Store) LatestRun() (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, seed, engine_version, rivals_json, created_at, finished_at, final_digest, final_turn, game_over, victory
		 FROM runs ORDER BY rowid DESC LIMIT 1`,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("latest run: %w", err)
	}
	return rec, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seed, engine_version, rivals_json, created_at, finished_at, final_digest, final_turn, game_over, victory
		 FROM runs ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-runs

// #region turn-log
// TurnLog returns a run's turns in play order.
func (s *Store) TurnLog(runID string) ([]TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, turn, actions_json, events_json, choices_json, papers_published, doom_value, digest, snapshot_json, created_at
		 FROM turn_log WHERE run_id = ? ORDER BY turn ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("turn log: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var actionsJSON, eventsJSON, choicesJSON, createdStr string
		if err := rows.Scan(&rec.RunID, &rec.Turn, &actionsJSON, &eventsJSON, &choicesJSON,
			&rec.PapersPublished, &rec.DoomValue, &rec.Digest, &rec.SnapshotJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if err := json.Unmarshal([]byte(actionsJSON), &rec.Actions); err != nil {
			return nil, fmt.Errorf("unmarshal actions: %w", err)
		}
		if err := json.Unmarshal([]byte(eventsJSON), &rec.ResolvedEvents); err != nil {
			return nil, fmt.Errorf("unmarshal events: %w", err)
		}
		if err := json.Unmarshal([]byte(choicesJSON), &rec.Choices); err != nil {
			return nil, fmt.Errorf("unmarshal choices: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion turn-log

// #region risk-history
// AppendRiskHistory writes risk audit rows for a run. Entries carry their
// own turn number so a whole turn's additions land in one call.
func (s *Store) AppendRiskHistory(runID string, entries []risk.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(
			`INSERT INTO risk_history (run_id, turn, pool, delta, source) VALUES (?, ?, ?, ?, ?)`,
			runID, e.Turn, string(e.Pool), e.Delta, e.Source,
		)
		if err != nil {
			return fmt.Errorf("insert risk entry: %w", err)
		}
	}
	return tx.Commit()
}

// RiskHistory returns a run's risk audit rows in insertion order.
func (s *Store) RiskHistory(runID string) ([]risk.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT turn, pool, delta, source FROM risk_history WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("risk history: %w", err)
	}
	defer rows.Close()

	var entries []risk.HistoryEntry
	for rows.Next() {
		var e risk.HistoryEntry
		var pool string
		if err := rows.Scan(&e.Turn, &pool, &e.Delta, &e.Source); err != nil {
			return nil, fmt.Errorf("scan risk entry: %w", err)
		}
		e.Pool = risk.Pool(pool)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion risk-history

// #region scan-helpers

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var createdStr string
	var finishedStr, finalDigest sql.NullString
	var finalTurn sql.NullInt64
	var gameOver, victory int

	err := row.Scan(&rec.RunID, &rec.Seed, &rec.EngineVersion, &rec.RivalsJSON, &createdStr,
		&finishedStr, &finalDigest, &finalTurn, &gameOver, &victory)
	if err != nil {
		return RunRecord{}, err
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if finishedStr.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr.String)
	}
	if finalDigest.Valid {
		rec.FinalDigest = finalDigest.String
	}
	if finalTurn.Valid {
		rec.FinalTurn = int(finalTurn.Int64)
	}
	rec.GameOver = gameOver != 0
	rec.Victory = victory != 0
	return rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion scan-helpers
