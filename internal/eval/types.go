package eval

import "fmt"

// #region eval-metric
// EvalMetric captures a single named metric value.
type EvalMetric struct {
	Name  string
	Value float64
}

// #endregion eval-metric

// #region report
// Report is a point-in-time summary of DialogMetrics.
type Report struct {
	Examples       int     `json:"examples"`
	Dialogs        int     `json:"dialogs"`
	Loss           float64 `json:"loss"` // mean per example; 0 for evaluation passes
	ActionAccuracy float64 `json:"action_accuracy"`
	DialogAccuracy float64 `json:"dialog_accuracy"`
}

// Metrics flattens the report into named values (for logging and storage).
func (r Report) Metrics() []EvalMetric {
	return []EvalMetric{
		{Name: "examples", Value: float64(r.Examples)},
		{Name: "dialogs", Value: float64(r.Dialogs)},
		{Name: "loss", Value: r.Loss},
		{Name: "action_accuracy", Value: r.ActionAccuracy},
		{Name: "dialog_accuracy", Value: r.DialogAccuracy},
	}
}

// String formats the report the way epoch logs print it.
func (r Report) String() string {
	return fmt.Sprintf("examples=%d dialogs=%d loss=%.4f action_accuracy=%.4f dialog_accuracy=%.4f",
		r.Examples, r.Dialogs, r.Loss, r.ActionAccuracy, r.DialogAccuracy)
}

// #endregion report
