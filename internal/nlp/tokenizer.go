package nlp

import (
	"strings"
	"unicode"
)

// #region simple-tokenizer

// SimpleTokenizer lowercases text and splits it into word and punctuation
// tokens. Apostrophes stay inside words ("don't" is one token).
type SimpleTokenizer struct{}

// Tokenize implements Tokenizer.
func (SimpleTokenizer) Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '_':
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// #endregion simple-tokenizer

// #region normalize

// Normalize tokenizes text and joins the tokens with single spaces.
func Normalize(t Tokenizer, text string) string {
	return strings.TrimSpace(strings.Join(t.Tokenize(text), " "))
}

// #endregion normalize
