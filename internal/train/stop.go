package train

// #region stop-state
// StopState is the training loop's termination state.
type StopState int

const (
	Running StopState = iota
	PatienceExhausted
	MaxEpochsReached
)

func (s StopState) String() string {
	switch s {
	case Running:
		return "running"
	case PatienceExhausted:
		return "patience_exhausted"
	case MaxEpochsReached:
		return "max_epochs_reached"
	default:
		return "unknown"
	}
}

// #endregion stop-state

// #region early-stopper
// EarlyStopper tracks validation accuracy across epochs. An epoch that does
// not beat the best accuracy costs one unit of patience; matching or beating
// it restores full patience.
type EarlyStopper struct {
	max      int
	patience int
	best     float64
}

// NewEarlyStopper starts with full patience and a best accuracy of zero.
func NewEarlyStopper(patience int) *EarlyStopper {
	return &EarlyStopper{max: patience, patience: patience}
}

// Observe records one epoch's validation accuracy.
func (e *EarlyStopper) Observe(acc float64) StopState {
	if acc < e.best {
		e.patience--
	} else {
		e.patience = e.max
		e.best = acc
	}
	if e.patience < 1 {
		return PatienceExhausted
	}
	return Running
}

// Best is the highest accuracy observed.
func (e *EarlyStopper) Best() float64 { return e.best }

// Patience is the remaining patience.
func (e *EarlyStopper) Patience() int { return e.patience }

// #endregion early-stopper
