package policy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/corpus"
)

// TurnResult is the bot's decision for one turn.
type TurnResult struct {
	Action int
	Label  string
	Probs  []float32
	Text   string
}

// #region infer
// InferDialog resets state and runs every context through the bot. A
// context carrying PrevRespAct has that action teacher-forced first.
func (b *Bot) InferDialog(ctx context.Context, contexts []corpus.Context) ([]TurnResult, error) {
	if err := b.Reset(ctx); err != nil {
		return nil, err
	}
	results := make([]TurnResult, 0, len(contexts))
	for i, c := range contexts {
		res, err := b.step(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// InferBatch runs InferDialog for each dialog in order.
func (b *Bot) InferBatch(ctx context.Context, batch corpus.Batch) ([][]TurnResult, error) {
	out := make([][]TurnResult, 0, len(batch))
	for _, d := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := b.InferDialog(ctx, d.Contexts())
		if err != nil {
			return nil, fmt.Errorf("dialog %s: %w", d.ID, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// Respond answers one live utterance, keeping state from earlier calls
// until the next Reset.
func (b *Bot) Respond(ctx context.Context, text string, db corpus.DBResult) (TurnResult, error) {
	return b.step(ctx, corpus.Context{Text: text, DBResult: db})
}

// #endregion infer

// #region step
func (b *Bot) step(ctx context.Context, c corpus.Context) (TurnResult, error) {
	if c.PrevRespAct != "" {
		prev, err := b.codec.Encode(c.PrevRespAct)
		if err != nil {
			return TurnResult{}, err
		}
		if err := b.state.ApplyTeacherForcedAction(prev); err != nil {
			return TurnResult{}, err
		}
	}

	feats, err := b.features.Encode(ctx, c.Text, c.DBResult)
	if err != nil {
		return TurnResult{}, err
	}
	mask := b.mask.Mask()

	probs, err := b.net.Infer(ctx, feats, mask)
	if err != nil {
		return TurnResult{}, fmt.Errorf("infer: %w", err)
	}
	if len(probs) != b.codec.Len() {
		return TurnResult{}, fmt.Errorf("infer: got %d probabilities, want %d: %w",
			len(probs), b.codec.Len(), ErrFeatureSize)
	}
	pred := argmax(probs)

	b.state.UpdateDBResult(c.DBResult)
	if err := b.state.ApplyPredictedAction(probs, b.cfg.UseProbabilities); err != nil {
		return TurnResult{}, err
	}

	text, err := b.decoder.Decode(pred)
	if err != nil {
		return TurnResult{}, err
	}
	label, _ := b.codec.Label(pred)
	if b.cfg.Debug {
		b.log.Debug("action predicted",
			zap.String("action", label),
			zap.Float32("prob", probs[pred]),
			zap.Float32s("mask", mask),
		)
	}
	return TurnResult{Action: pred, Label: label, Probs: probs, Text: text}, nil
}

// #endregion step
