package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region turn-entry
// TurnEntry is a single row in the turn_log table.
type TurnEntry struct {
	DialogID  string
	TurnIndex int
	Text      string
	Action    string
	Prob      float32
	Response  string
	CreatedAt time.Time
}

// #endregion turn-entry

// #region log-turn
// LogTurn writes a live decision to the turn_log table.
func LogTurn(db *sql.DB, entry TurnEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO turn_log (dialog_id, turn_index, text, action, prob, response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.DialogID,
		entry.TurnIndex,
		entry.Text,
		entry.Action,
		entry.Prob,
		nullIfEmpty(entry.Response),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}

// #endregion log-turn

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
