package nlp

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// #region vocabulary

// Vocabulary is a fixed, ordered token list with reverse lookup.
type Vocabulary struct {
	toID  map[string]int
	toStr []string
}

// NewVocabulary builds a vocabulary from tokens in order. Duplicates keep
// their first position.
func NewVocabulary(tokens []string) *Vocabulary {
	v := &Vocabulary{toID: make(map[string]int, len(tokens))}
	for _, t := range tokens {
		v.add(t)
	}
	return v
}

func (v *Vocabulary) add(token string) {
	if _, ok := v.toID[token]; ok {
		return
	}
	v.toID[token] = len(v.toStr)
	v.toStr = append(v.toStr, token)
}

// Index returns the position of token, or -1 if it is not in the vocabulary.
func (v *Vocabulary) Index(token string) int {
	if id, ok := v.toID[token]; ok {
		return id
	}
	return -1
}

// Token returns the token at position i.
func (v *Vocabulary) Token(i int) string {
	return v.toStr[i]
}

// Len returns the vocabulary size.
func (v *Vocabulary) Len() int {
	return len(v.toStr)
}

// #endregion vocabulary

// #region load

// LoadVocabulary reads one token per line. Lines of the form "token\tcount"
// are accepted; only the first field is used. Blank lines are skipped.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary %s: %w", path, err)
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		token, _, _ := strings.Cut(line, "\t")
		tokens = append(tokens, token)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return NewVocabulary(tokens), nil
}

// #endregion load
