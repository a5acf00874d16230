package nlp

import "strings"

// #region bag-of-words

// BagOfWords counts vocabulary tokens in space-separated normalized text.
// Out-of-vocabulary tokens are ignored.
type BagOfWords struct{}

// Encode implements BowEncoder.
func (BagOfWords) Encode(normalized string, vocab *Vocabulary) []float32 {
	bow := make([]float32, vocab.Len())
	for _, tok := range strings.Fields(normalized) {
		if i := vocab.Index(tok); i >= 0 {
			bow[i]++
		}
	}
	return bow
}

// #endregion bag-of-words
