package policy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/nlp"
)

// #region sizes

// FeatureSizes is the length of each segment of the fused feature vector.
// Segment order: bow, embedding, intent, tracker, context flags, previous action.
type FeatureSizes struct {
	Bow        int
	Embedding  int
	Intent     int
	Tracker    int
	Context    int
	PrevAction int
}

// Total is the fused vector length.
func (s FeatureSizes) Total() int {
	return s.Bow + s.Embedding + s.Intent + s.Tracker + s.Context + s.PrevAction
}

// #endregion sizes

// #region encoder

// FeatureEncoder fuses per-turn features into one fixed-length vector.
type FeatureEncoder struct {
	tokenizer nlp.Tokenizer
	bow       nlp.BowEncoder
	vocab     *nlp.Vocabulary
	embedder  nlp.Embedder
	intents   nlp.IntentClassifier
	slots     nlp.SlotFiller
	state     *DialogState
	sizes     FeatureSizes
	log       *zap.Logger
	debug     bool
}

// NewFeatureEncoder fixes the segment sizes from the collaborators. Sizes
// reported by optional collaborators are read once here.
func NewFeatureEncoder(deps Deps, state *DialogState, numActions int, log *zap.Logger, debug bool) *FeatureEncoder {
	e := &FeatureEncoder{
		tokenizer: deps.Tokenizer,
		bow:       deps.Bow,
		vocab:     deps.Vocab,
		embedder:  deps.Embedder,
		intents:   deps.Intents,
		slots:     deps.Slots,
		state:     state,
		log:       log,
		debug:     debug,
	}
	e.sizes = FeatureSizes{
		Bow:        deps.Vocab.Len(),
		Tracker:    deps.Tracker.NumFeatures(),
		Context:    2,
		PrevAction: numActions,
	}
	if deps.Embedder != nil {
		e.sizes.Embedding = deps.Embedder.Dim()
	}
	if deps.Intents != nil {
		e.sizes.Intent = deps.Intents.NumClasses()
	}
	return e
}

// Sizes returns the per-segment layout.
func (e *FeatureEncoder) Sizes() FeatureSizes {
	return e.sizes
}

// Size returns the fused vector length.
func (e *FeatureEncoder) Size() int {
	return e.sizes.Total()
}

// #endregion encoder

// #region encode

// Encode builds the feature vector for one user utterance. db is the turn's
// own database result; the stored result is read before it is applied.
// Slot values found in text are pushed into the tracker.
func (e *FeatureEncoder) Encode(ctx context.Context, text string, db corpus.DBResult) ([]float32, error) {
	normalized := nlp.Normalize(e.tokenizer, text)

	bow := e.bow.Encode(normalized, e.vocab)
	if err := checkSize("bow", bow, e.sizes.Bow); err != nil {
		return nil, err
	}

	var emb []float32
	if e.embedder != nil {
		var err error
		if emb, err = e.embedder.Embed(ctx, normalized); err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		if err := checkSize("embedding", emb, e.sizes.Embedding); err != nil {
			return nil, err
		}
	}

	var intent []float32
	if e.intents != nil {
		var err error
		if intent, err = e.intents.PredictProba(ctx, normalized); err != nil {
			return nil, fmt.Errorf("predict intent: %w", err)
		}
		if err := checkSize("intent", intent, e.sizes.Intent); err != nil {
			return nil, err
		}
	}

	tr := e.state.Tracker()
	if e.slots != nil {
		slots, err := e.slots.FillSlots(ctx, normalized)
		if err != nil {
			return nil, fmt.Errorf("fill slots: %w", err)
		}
		tr.UpdateState(slots)
		if e.debug {
			e.log.Debug("slots filled", zap.Any("slots", slots))
		}
	}
	trFeats := tr.Features()
	if err := checkSize("tracker", trFeats, e.sizes.Tracker); err != nil {
		return nil, err
	}

	ctxFeats := []float32{flag(db.IsEmpty()), flag(e.state.DBResult().IsEmpty())}
	prev := e.state.PrevAction()
	if err := checkSize("previous action", prev, e.sizes.PrevAction); err != nil {
		return nil, err
	}

	out := make([]float32, 0, e.sizes.Total())
	out = append(out, bow...)
	out = append(out, emb...)
	out = append(out, intent...)
	out = append(out, trFeats...)
	out = append(out, ctxFeats...)
	out = append(out, prev...)

	if e.debug {
		e.log.Debug("features encoded",
			zap.String("text", normalized),
			zap.Int("bow", len(bow)),
			zap.Int("embedding", len(emb)),
			zap.Int("intent", len(intent)),
			zap.Int("tracker", len(trFeats)),
			zap.Float32s("context", ctxFeats),
			zap.Int("total", len(out)),
		)
		if len(intent) > 0 {
			e.log.Debug("predicted intent", zap.Int("class", argmax(intent)))
		}
	}
	return out, nil
}

func checkSize(segment string, v []float32, want int) error {
	if len(v) != want {
		return fmt.Errorf("%s segment: got %d, want %d: %w", segment, len(v), want, ErrFeatureSize)
	}
	return nil
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// #endregion encode
