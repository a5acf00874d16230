package policy

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/network"
	"github.com/danielpatrickdp/gobot/internal/tracker"
)

// #region dialog-state
// DialogState owns everything that lives for exactly one dialog: tracker
// contents, the last database result, the previous-action memory and the
// network's recurrent state.
type DialogState struct {
	tracker    tracker.Tracker
	net        network.Network
	db         corpus.DBResult
	prevAction []float32
}

// NewDialogState returns a state with zero previous-action memory of length
// numActions and an unknown database result.
func NewDialogState(tr tracker.Tracker, net network.Network, numActions int) *DialogState {
	return &DialogState{
		tracker:    tr,
		net:        net,
		prevAction: make([]float32, numActions),
	}
}

// Reset starts a new dialog.
func (s *DialogState) Reset(ctx context.Context) error {
	s.tracker.ResetState()
	s.db = nil
	clear(s.prevAction)
	if err := s.net.ResetState(ctx); err != nil {
		return fmt.Errorf("reset network state: %w", err)
	}
	return nil
}

// #endregion dialog-state

// #region previous-action
// ApplyTeacherForcedAction sets the previous-action memory to one-hot at i.
func (s *DialogState) ApplyTeacherForcedAction(i int) error {
	if i < 0 || i >= len(s.prevAction) {
		return fmt.Errorf("teacher force %d: %w", i, ErrActionOutOfRange)
	}
	clear(s.prevAction)
	s.prevAction[i] = 1
	return nil
}

// ApplyPredictedAction stores a prediction as the previous-action memory:
// the distribution itself when asDistribution, else one-hot at its arg-max.
func (s *DialogState) ApplyPredictedAction(probs []float32, asDistribution bool) error {
	if len(probs) != len(s.prevAction) {
		return fmt.Errorf("apply prediction: got %d probabilities, want %d: %w",
			len(probs), len(s.prevAction), ErrFeatureSize)
	}
	if asDistribution {
		copy(s.prevAction, probs)
		return nil
	}
	return s.ApplyTeacherForcedAction(argmax(probs))
}

// PrevAction returns a copy of the previous-action memory.
func (s *DialogState) PrevAction() []float32 {
	return append([]float32(nil), s.prevAction...)
}

// #endregion previous-action

// #region db-result
// UpdateDBResult replaces the stored result only when the turn carries one.
func (s *DialogState) UpdateDBResult(r corpus.DBResult) {
	if r.Known() {
		s.db = r.Clone()
	}
}

// DBResult returns the stored result; nil when nothing was queried yet.
func (s *DialogState) DBResult() corpus.DBResult {
	return s.db
}

// Tracker returns the dialog's slot tracker.
func (s *DialogState) Tracker() tracker.Tracker {
	return s.tracker
}

// #endregion db-result

// argmax returns the first index holding the maximum value, or -1 for an
// empty slice.
func argmax(v []float32) int {
	best := -1
	for i, x := range v {
		if best < 0 || x > v[best] {
			best = i
		}
	}
	return best
}
