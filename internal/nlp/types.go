package nlp

import "context"

// #region tokenizer-interface

// Tokenizer splits raw user text into tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// #endregion tokenizer-interface

// #region bow-interface

// BowEncoder maps normalized text to a fixed-length count vector over vocab.
type BowEncoder interface {
	Encode(normalized string, vocab *Vocabulary) []float32
}

// #endregion bow-interface

// #region optional-collaborators

// Embedder produces a mean-pooled embedding of normalized text.
// Optional: a nil Embedder contributes a zero-length feature segment.
type Embedder interface {
	Dim() int
	Embed(ctx context.Context, normalized string) ([]float32, error)
}

// IntentClassifier returns a probability distribution over intents.
// Optional: a nil IntentClassifier contributes a zero-length feature segment.
type IntentClassifier interface {
	NumClasses() int
	PredictProba(ctx context.Context, normalized string) ([]float32, error)
}

// SlotFiller extracts slot values from normalized text.
// Optional: a nil SlotFiller leaves the tracker untouched.
type SlotFiller interface {
	FillSlots(ctx context.Context, normalized string) (map[string]string, error)
	Shutdown() error
}

// #endregion optional-collaborators
