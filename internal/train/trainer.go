// Package train runs the epoch loop over a dialog corpus: teacher-forced
// training steps, evaluation passes and patience-based early stopping.
package train

import (
	"context"
	"fmt"
	"iter"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/eval"
	"github.com/danielpatrickdp/gobot/internal/policy"
	"github.com/danielpatrickdp/gobot/internal/store"
)

// #region config
// Config controls the epoch loop.
type Config struct {
	NumEpochs   int  `json:"num_epochs" toml:"num_epochs"`
	ValPatience int  `json:"val_patience" toml:"val_patience"`
	BatchSize   int  `json:"batch_size" toml:"batch_size"`
	Shuffle     bool `json:"shuffle" toml:"shuffle"`
}

// DefaultConfig returns single-dialog, unshuffled batches.
func DefaultConfig() Config {
	return Config{NumEpochs: 200, ValPatience: 10, BatchSize: 1}
}

// Validate rejects non-positive counts.
func (c Config) Validate() error {
	switch {
	case c.NumEpochs < 1:
		return &policy.ConfigError{Field: "train.num_epochs", Reason: "must be at least 1"}
	case c.ValPatience < 1:
		return &policy.ConfigError{Field: "train.val_patience", Reason: "must be at least 1"}
	case c.BatchSize < 1:
		return &policy.ConfigError{Field: "train.batch_size", Reason: "must be at least 1"}
	}
	return nil
}

// #endregion config

// #region interfaces
// Source yields dialog batches per split.
type Source interface {
	Batches(batchSize int, split string, shuffle bool) iter.Seq[corpus.Batch]
}

// Recorder persists run history. *store.Store implements it.
type Recorder interface {
	CreateRun(configJSON string) (store.Run, error)
	RecordEpoch(rec store.EpochRecord) error
	FinishRun(runID, state string, bestValid float64) error
}

// #endregion interfaces

// #region trainer
// Summary describes a finished training run.
type Summary struct {
	RunID             string
	Epochs            int
	State             StopState
	BestValidAccuracy float64
	LastTrain         eval.Report
	LastValid         eval.Report
}

// Trainer drives a Bot through the epoch loop.
type Trainer struct {
	bot  *policy.Bot
	data Source
	cfg  Config
	rec  Recorder
	log  *zap.Logger
}

// NewTrainer fails with policy.ErrTrainingDisabled when the bot is not
// trainable and with a *policy.ConfigError when its network is not.
func NewTrainer(bot *policy.Bot, data Source, cfg Config) (*Trainer, error) {
	if !bot.TrainEnabled() {
		return nil, policy.ErrTrainingDisabled
	}
	if !bot.Network().TrainEnabled() {
		return nil, &policy.ConfigError{
			Field:  "network.train_now",
			Reason: "bot is trainable but its network is not; enable training on the network",
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{bot: bot, data: data, cfg: cfg, log: bot.Logger()}, nil
}

// WithRecorder records every epoch into rec.
func (t *Trainer) WithRecorder(rec Recorder) *Trainer {
	t.rec = rec
	return t
}

// #endregion trainer

// #region train
// Train runs epochs until patience runs out or NumEpochs is reached, then
// saves the network. An error aborts the loop without saving.
func (t *Trainer) Train(ctx context.Context) (Summary, error) {
	var sum Summary
	if t.rec != nil {
		cfgJSON, err := sonic.MarshalString(t.cfg)
		if err != nil {
			return sum, fmt.Errorf("marshal train config: %w", err)
		}
		run, err := t.rec.CreateRun(cfgJSON)
		if err != nil {
			return sum, err
		}
		sum.RunID = run.RunID
	}

	t.log.Info("training started",
		zap.String("run_id", sum.RunID),
		zap.Int("num_epochs", t.cfg.NumEpochs),
		zap.Int("val_patience", t.cfg.ValPatience),
	)

	stopper := NewEarlyStopper(t.cfg.ValPatience)
	state := Running
	metrics := eval.NewDialogMetrics(t.bot.NumActions())
	for epoch := 1; epoch <= t.cfg.NumEpochs && state == Running; epoch++ {
		metrics.Reset()
		for batch := range t.data.Batches(t.cfg.BatchSize, corpus.SplitTrain, t.cfg.Shuffle) {
			if err := t.bot.TrainOnBatch(ctx, batch, metrics); err != nil {
				return sum, fmt.Errorf("epoch %d: %w", epoch, err)
			}
		}
		t.log.Info("epoch trained", zap.Int("epoch", epoch), zap.Stringer("train", metrics.Report()))

		trainEval, err := t.Evaluate(ctx, t.data.Batches(1, corpus.SplitTrain, false))
		if err != nil {
			return sum, fmt.Errorf("epoch %d: evaluate train: %w", epoch, err)
		}
		validEval, err := t.Evaluate(ctx, t.data.Batches(1, corpus.SplitValid, false))
		if err != nil {
			return sum, fmt.Errorf("epoch %d: evaluate valid: %w", epoch, err)
		}
		sum.LastTrain, sum.LastValid = trainEval.Report(), validEval.Report()
		sum.Epochs = epoch

		before := stopper.Patience()
		state = stopper.Observe(sum.LastValid.ActionAccuracy)
		t.log.Info("epoch evaluated",
			zap.Int("epoch", epoch),
			zap.Stringer("train", sum.LastTrain),
			zap.Stringer("valid", sum.LastValid),
		)
		if stopper.Patience() != before {
			t.log.Info("patience changed", zap.Int("patience", stopper.Patience()))
		}

		if t.rec != nil {
			err := t.rec.RecordEpoch(store.EpochRecord{
				RunID:      sum.RunID,
				Epoch:      epoch,
				Train:      sum.LastTrain,
				Valid:      sum.LastValid,
				Patience:   stopper.Patience(),
				ConfMatrix: metrics.ConfMatrix,
			})
			if err != nil {
				return sum, fmt.Errorf("epoch %d: %w", epoch, err)
			}
		}
	}
	if state == Running {
		state = MaxEpochsReached
	}
	sum.State = state
	sum.BestValidAccuracy = stopper.Best()
	t.log.Info("training stopped", zap.Stringer("state", state), zap.Int("epochs", sum.Epochs))

	if err := t.bot.Save(ctx); err != nil {
		return sum, err
	}
	if t.rec != nil {
		if err := t.rec.FinishRun(sum.RunID, state.String(), sum.BestValidAccuracy); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// #endregion train

// #region evaluate
// Evaluate runs inference over batches with ground-truth previous actions
// and scores predicted action ids against the gold ones.
func (t *Trainer) Evaluate(ctx context.Context, batches iter.Seq[corpus.Batch]) (*eval.DialogMetrics, error) {
	return Evaluate(ctx, t.bot, batches)
}

// Evaluate scores bot on batches without requiring a trainable bot.
func Evaluate(ctx context.Context, bot *policy.Bot, batches iter.Seq[corpus.Batch]) (*eval.DialogMetrics, error) {
	m := eval.NewDialogMetrics(bot.NumActions())
	for batch := range batches {
		results, err := bot.InferBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for i, d := range batch {
			preds := make([]int, len(results[i]))
			trues := make([]int, len(d.Turns))
			for j, r := range results[i] {
				preds[j] = r.Action
			}
			for j, turn := range d.Turns {
				a, err := bot.Codec().Encode(turn.Response.Act)
				if err != nil {
					return nil, fmt.Errorf("dialog %s turn %d: %w", d.ID, j, err)
				}
				trues[j] = a
			}
			if err := m.AddDialog(preds, trues, 0); err != nil {
				return nil, fmt.Errorf("dialog %s: %w", d.ID, err)
			}
		}
	}
	return m, nil
}

// #endregion evaluate
