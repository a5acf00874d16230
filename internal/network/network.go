// Package network defines the contract with the sequential action-selection
// model and a gRPC client for the service that hosts it.
package network

import "context"

// TrainResult is the outcome of one training step over a dialog.
type TrainResult struct {
	Loss        float32
	Predictions []int
}

// Network scores actions for a dialog turn by turn. Implementations carry
// recurrent state across Infer calls until ResetState.
type Network interface {
	// Train runs one step over a whole dialog. All three slices are
	// indexed by turn.
	Train(ctx context.Context, features [][]float32, actions []int, masks [][]float32) (TrainResult, error)
	// Infer returns a probability distribution over actions for one turn.
	Infer(ctx context.Context, features []float32, mask []float32) ([]float32, error)
	ResetState(ctx context.Context) error
	Save(ctx context.Context) error
	TrainEnabled() bool
	Close() error
}

// Shape is the fixed input/output geometry the model was built with.
type Shape struct {
	ObsSize    int
	ActionSize int
}
