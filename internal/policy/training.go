package policy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/eval"
	"github.com/danielpatrickdp/gobot/internal/network"
)

// #region example
// Example is one dialog encoded for a training step; slices are indexed by turn.
type Example struct {
	Features [][]float32
	Actions  []int
	Masks    [][]float32
}

// PrepareDialog resets state and encodes every turn of d with the gold
// action teacher-forced into the previous-action memory.
func (b *Bot) PrepareDialog(ctx context.Context, d corpus.Dialog) (Example, error) {
	if err := b.Reset(ctx); err != nil {
		return Example{}, err
	}
	ex := Example{
		Features: make([][]float32, 0, len(d.Turns)),
		Actions:  make([]int, 0, len(d.Turns)),
		Masks:    make([][]float32, 0, len(d.Turns)),
	}
	for i, turn := range d.Turns {
		feats, err := b.features.Encode(ctx, turn.Context.Text, turn.Context.DBResult)
		if err != nil {
			return Example{}, fmt.Errorf("dialog %s turn %d: %w", d.ID, i, err)
		}
		b.state.UpdateDBResult(turn.Context.DBResult)

		action, err := b.codec.Encode(turn.Response.Act)
		if err != nil {
			return Example{}, fmt.Errorf("dialog %s turn %d: %w", d.ID, i, err)
		}
		if err := b.state.ApplyTeacherForcedAction(action); err != nil {
			return Example{}, fmt.Errorf("dialog %s turn %d: %w", d.ID, i, err)
		}

		ex.Features = append(ex.Features, feats)
		ex.Actions = append(ex.Actions, action)
		ex.Masks = append(ex.Masks, b.mask.Mask())
	}
	return ex, nil
}

// #endregion example

// #region train-step
// TrainDialog encodes d and submits it to the network's train step.
func (b *Bot) TrainDialog(ctx context.Context, d corpus.Dialog) (network.TrainResult, []int, error) {
	if !b.cfg.Train {
		return network.TrainResult{}, nil, ErrTrainingDisabled
	}
	ex, err := b.PrepareDialog(ctx, d)
	if err != nil {
		return network.TrainResult{}, nil, err
	}
	res, err := b.net.Train(ctx, ex.Features, ex.Actions, ex.Masks)
	if err != nil {
		return network.TrainResult{}, nil, fmt.Errorf("train dialog %s: %w", d.ID, err)
	}
	if b.cfg.Debug {
		b.log.Debug("dialog trained",
			zap.String("dialog", d.ID),
			zap.Int("turns", len(ex.Actions)),
			zap.Float32("loss", res.Loss),
		)
	}
	return res, ex.Actions, nil
}

// TrainOnBatch runs one training step per dialog of batch and accumulates
// loss and predictions into m, which may be nil.
func (b *Bot) TrainOnBatch(ctx context.Context, batch corpus.Batch, m *eval.DialogMetrics) error {
	for _, d := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, actions, err := b.TrainDialog(ctx, d)
		if err != nil {
			return err
		}
		if m == nil {
			continue
		}
		if err := m.AddDialog(res.Predictions, actions, float64(res.Loss)); err != nil {
			return fmt.Errorf("dialog %s: %w", d.ID, err)
		}
	}
	return nil
}

// #endregion train-step
