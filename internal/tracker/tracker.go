package tracker

import "slices"

// #region interface

// Tracker accumulates slot values across the turns of one dialog.
type Tracker interface {
	// UpdateState records slot values; unknown slot names are ignored.
	UpdateState(slots map[string]string)
	// Features returns the numeric state features for the current turn.
	Features() []float32
	// NumFeatures is the fixed length of Features().
	NumFeatures() int
	// State returns the latest value per slot. The map is a copy.
	State() map[string]string
	// ResetState forgets everything seen in the current dialog.
	ResetState()
}

// #endregion interface

// #region default-tracker

type slotValue struct {
	slot  string
	value string
}

// DefaultTracker keeps the ordered history of slot assignments and exposes
// one binary "slot is filled" feature per configured slot name.
type DefaultTracker struct {
	slotNames []string
	known     map[string]int
	history   []slotValue
	features  []float32
}

var _ Tracker = (*DefaultTracker)(nil)

// NewDefaultTracker creates a tracker over the given slot names.
func NewDefaultTracker(slotNames []string) *DefaultTracker {
	t := &DefaultTracker{
		slotNames: append([]string(nil), slotNames...),
		known:     make(map[string]int, len(slotNames)),
	}
	for i, s := range t.slotNames {
		t.known[s] = i
	}
	t.ResetState()
	return t
}

// SlotNames returns the configured slot names in feature order.
func (t *DefaultTracker) SlotNames() []string {
	return append([]string(nil), t.slotNames...)
}

// UpdateState implements Tracker.
func (t *DefaultTracker) UpdateState(slots map[string]string) {
	// map iteration order is random; sort by feature position so history is deterministic
	ordered := make([]slotValue, 0, len(slots))
	for slot, value := range slots {
		if _, ok := t.known[slot]; ok {
			ordered = append(ordered, slotValue{slot: slot, value: value})
		}
	}
	slices.SortFunc(ordered, func(a, b slotValue) int {
		return t.known[a.slot] - t.known[b.slot]
	})
	t.history = append(t.history, ordered...)
	t.features = t.binaryFeatures()
}

// Features implements Tracker.
func (t *DefaultTracker) Features() []float32 {
	return append([]float32(nil), t.features...)
}

// NumFeatures implements Tracker.
func (t *DefaultTracker) NumFeatures() int {
	return len(t.slotNames)
}

// State implements Tracker.
func (t *DefaultTracker) State() map[string]string {
	lasts := make(map[string]string)
	for _, sv := range t.history {
		lasts[sv.slot] = sv.value
	}
	return lasts
}

// ResetState implements Tracker.
func (t *DefaultTracker) ResetState() {
	t.history = nil
	t.features = make([]float32, len(t.slotNames))
}

func (t *DefaultTracker) binaryFeatures() []float32 {
	feats := make([]float32, len(t.slotNames))
	for _, sv := range t.history {
		feats[t.known[sv.slot]] = 1
	}
	return feats
}

// #endregion default-tracker
