package store

import (
	"time"

	"github.com/danielpatrickdp/gobot/internal/eval"
)

// #region run
// Run is one invocation of the training loop.
type Run struct {
	RunID             string
	ConfigJSON        string
	State             string // "running" until finished, then the stop state
	BestValidAccuracy float64
	Epochs            int
	StartedAt         time.Time
	FinishedAt        time.Time // zero while running
}

// #endregion run

// #region epoch
// EpochRecord is the metrics snapshot taken after one training epoch.
type EpochRecord struct {
	EpochID    string
	RunID      string
	Epoch      int
	Train      eval.Report
	Valid      eval.Report
	Patience   int
	ConfMatrix [][]int // [predicted][true] from the training pass
	CreatedAt  time.Time
}

// #endregion epoch

// #region turn
// Turn is one live decision read back from the turn log.
type Turn struct {
	DialogID  string
	TurnIndex int
	Text      string
	Action    string
	Prob      float32
	Response  string
	CreatedAt time.Time
}

// #endregion turn
