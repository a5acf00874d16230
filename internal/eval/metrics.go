package eval

import "fmt"

// #region dialog-metrics
// DialogMetrics accumulates per-turn action predictions over one pass.
// ConfMatrix is indexed [predicted][true].
type DialogMetrics struct {
	NumActions     int
	Dialogs        int
	Examples       int
	CorrectDialogs int
	TrainLoss      float64
	ConfMatrix     [][]int
}

// NewDialogMetrics creates zeroed metrics over numActions actions.
func NewDialogMetrics(numActions int) *DialogMetrics {
	m := &DialogMetrics{NumActions: numActions}
	m.Reset()
	return m
}

// Reset zeroes all counters.
func (m *DialogMetrics) Reset() {
	m.Dialogs = 0
	m.Examples = 0
	m.CorrectDialogs = 0
	m.TrainLoss = 0
	m.ConfMatrix = make([][]int, m.NumActions)
	for i := range m.ConfMatrix {
		m.ConfMatrix[i] = make([]int, m.NumActions)
	}
}

// AddDialog records one dialog's predicted and true action ids. loss is the
// dialog loss returned by the network; it is added once per turn.
func (m *DialogMetrics) AddDialog(preds, trues []int, loss float64) error {
	if len(preds) != len(trues) {
		return fmt.Errorf("add dialog: %d predictions for %d turns", len(preds), len(trues))
	}
	for i := range trues {
		if !m.valid(preds[i]) || !m.valid(trues[i]) {
			return fmt.Errorf("add dialog: turn %d: action pair (%d, %d) out of range [0, %d)",
				i, preds[i], trues[i], m.NumActions)
		}
	}

	m.Dialogs++
	allCorrect := true
	for i := range trues {
		m.Examples++
		m.TrainLoss += loss
		m.ConfMatrix[preds[i]][trues[i]]++
		if preds[i] != trues[i] {
			allCorrect = false
		}
	}
	if allCorrect {
		m.CorrectDialogs++
	}
	return nil
}

func (m *DialogMetrics) valid(a int) bool {
	return a >= 0 && a < m.NumActions
}

// #endregion dialog-metrics

// #region accuracy
// ActionAccuracy is the confusion-matrix trace over the example count.
func (m *DialogMetrics) ActionAccuracy() float64 {
	if m.Examples == 0 {
		return 0
	}
	var correct int
	for i := 0; i < m.NumActions; i++ {
		correct += m.ConfMatrix[i][i]
	}
	return float64(correct) / float64(m.Examples)
}

// DialogAccuracy is the fraction of dialogs with every turn predicted correctly.
func (m *DialogMetrics) DialogAccuracy() float64 {
	if m.Dialogs == 0 {
		return 0
	}
	return float64(m.CorrectDialogs) / float64(m.Dialogs)
}

// Report snapshots the current counters.
func (m *DialogMetrics) Report() Report {
	r := Report{
		Examples:       m.Examples,
		Dialogs:        m.Dialogs,
		ActionAccuracy: m.ActionAccuracy(),
		DialogAccuracy: m.DialogAccuracy(),
	}
	if m.Examples > 0 {
		r.Loss = m.TrainLoss / float64(m.Examples)
	}
	return r
}

// #endregion accuracy
