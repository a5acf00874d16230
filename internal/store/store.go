package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StateRunning is the state of a run that has not finished.
const StateRunning = "running"

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	config_json   TEXT,
	state         TEXT NOT NULL,
	best_valid    REAL NOT NULL DEFAULT 0,
	epochs        INTEGER NOT NULL DEFAULT 0,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
);

CREATE TABLE IF NOT EXISTS epochs (
	epoch_id      TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	epoch         INTEGER NOT NULL,
	train_json    TEXT NOT NULL,
	valid_json    TEXT NOT NULL,
	valid_acc     REAL NOT NULL,
	patience      INTEGER NOT NULL,
	conf_size     INTEGER NOT NULL,
	conf_matrix   BLOB,
	created_at    TEXT NOT NULL,
	UNIQUE (run_id, epoch),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	dialog_id     TEXT NOT NULL,
	turn_index    INTEGER NOT NULL,
	text          TEXT NOT NULL,
	action        TEXT NOT NULL,
	prob          REAL NOT NULL,
	response      TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store keeps training run history and the live turn log in SQLite.
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
	// pragmas are per connection
	db.SetMaxOpenConns(1)
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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the turn logger.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region runs
// CreateRun starts a new run in the running state.
func (s *Store) CreateRun(configJSON string) (Run, error) {
	run := Run{
		RunID:      uuid.New().String(),
		ConfigJSON: configJSON,
		State:      StateRunning,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, config_json, state, started_at) VALUES (?, ?, ?, ?)`,
		run.RunID, nullIfEmpty(configJSON), run.State, run.StartedAt.Format(timeFormat),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run finished with its stop state.
func (s *Store) FinishRun(runID, state string, bestValid float64) error {
	res, err := s.db.Exec(
		`UPDATE runs SET state = ?, best_valid = ?, finished_at = ? WHERE run_id = ?`,
		state, bestValid, time.Now().UTC().Format(timeFormat), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, config_json, state, best_valid, epochs, started_at, finished_at
		 FROM runs WHERE run_id = ?`, runID,
	)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, config_json, state, best_valid, epochs, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var cfg, finished sql.NullString
	var started string
	if err := sc.Scan(&run.RunID, &cfg, &run.State, &run.BestValidAccuracy, &run.Epochs, &started, &finished); err != nil {
		return Run{}, err
	}
	run.ConfigJSON = cfg.String
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return run, nil
}

// #endregion runs

// #region epochs
// RecordEpoch inserts an epoch snapshot and bumps the run's epoch count
// atomically.
func (s *Store) RecordEpoch(rec EpochRecord) error {
	if rec.EpochID == "" {
		rec.EpochID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	trainJSON, err := sonic.MarshalString(rec.Train)
	if err != nil {
		return fmt.Errorf("marshal train report: %w", err)
	}
	validJSON, err := sonic.MarshalString(rec.Valid)
	if err != nil {
		return fmt.Errorf("marshal valid report: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO epochs (epoch_id, run_id, epoch, train_json, valid_json, valid_acc, patience, conf_size, conf_matrix, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.EpochID, rec.RunID, rec.Epoch, trainJSON, validJSON, rec.Valid.ActionAccuracy,
		rec.Patience, len(rec.ConfMatrix), encodeMatrix(rec.ConfMatrix), rec.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert epoch: %w", err)
	}
	_, err = tx.Exec(`UPDATE runs SET epochs = epochs + 1 WHERE run_id = ?`, rec.RunID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return tx.Commit()
}

// ListEpochs returns a run's epochs in order.
func (s *Store) ListEpochs(runID string) ([]EpochRecord, error) {
	rows, err := s.db.Query(
		`SELECT epoch_id, run_id, epoch, train_json, valid_json, patience, conf_size, conf_matrix, created_at
		 FROM epochs WHERE run_id = ? ORDER BY epoch ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list epochs: %w", err)
	}
	defer rows.Close()

	var recs []EpochRecord
	for rows.Next() {
		rec, err := scanEpoch(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// BestEpoch returns the epoch with the highest validation accuracy; the
// earliest wins ties.
func (s *Store) BestEpoch(runID string) (EpochRecord, error) {
	row := s.db.QueryRow(
		`SELECT epoch_id, run_id, epoch, train_json, valid_json, patience, conf_size, conf_matrix, created_at
		 FROM epochs WHERE run_id = ? ORDER BY valid_acc DESC, epoch ASC LIMIT 1`, runID,
	)
	rec, err := scanEpoch(row)
	if err != nil {
		return EpochRecord{}, fmt.Errorf("best epoch %s: %w", runID, err)
	}
	return rec, nil
}

func scanEpoch(sc scanner) (EpochRecord, error) {
	var rec EpochRecord
	var trainJSON, validJSON, created string
	var size int
	var blob []byte
	if err := sc.Scan(&rec.EpochID, &rec.RunID, &rec.Epoch, &trainJSON, &validJSON, &rec.Patience, &size, &blob, &created); err != nil {
		return EpochRecord{}, fmt.Errorf("scan epoch: %w", err)
	}
	if err := sonic.UnmarshalString(trainJSON, &rec.Train); err != nil {
		return EpochRecord{}, fmt.Errorf("unmarshal train report: %w", err)
	}
	if err := sonic.UnmarshalString(validJSON, &rec.Valid); err != nil {
		return EpochRecord{}, fmt.Errorf("unmarshal valid report: %w", err)
	}
	rec.ConfMatrix = decodeMatrix(blob, size)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return rec, nil
}

// #endregion epochs

// #region turn-log
// DialogTurns returns the logged turns of one dialog in order.
func (s *Store) DialogTurns(dialogID string) ([]Turn, error) {
	rows, err := s.db.Query(
		`SELECT dialog_id, turn_index, text, action, prob, response, created_at
		 FROM turn_log WHERE dialog_id = ? ORDER BY turn_index ASC, id ASC`, dialogID,
	)
	if err != nil {
		return nil, fmt.Errorf("dialog turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var resp sql.NullString
		var created string
		if err := rows.Scan(&t.DialogID, &t.TurnIndex, &t.Text, &t.Action, &t.Prob, &resp, &created); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Response = resp.String
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// #endregion turn-log

// #region matrix-encoding
func encodeMatrix(m [][]int) []byte {
	n := len(m)
	buf := make([]byte, n*n*4)
	for i, row := range m {
		for j := 0; j < n && j < len(row); j++ {
			binary.LittleEndian.PutUint32(buf[(i*n+j)*4:], uint32(row[j]))
		}
	}
	return buf
}

func decodeMatrix(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			off := (i*n + j) * 4
			if off+4 <= len(b) {
				m[i][j] = int(binary.LittleEndian.Uint32(b[off:]))
			}
		}
	}
	return m
}

// #endregion matrix-encoding

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
