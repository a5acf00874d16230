package nlp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTokenizer(t *testing.T) {
	tok := SimpleTokenizer{}

	t.Run("words and punctuation", func(t *testing.T) {
		got := tok.Tokenize("I want Italian food, please!")
		want := []string{"i", "want", "italian", "food", ",", "please", "!"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("apostrophes stay in words", func(t *testing.T) {
		assert.Equal(t, []string{"don't", "care"}, tok.Tokenize("Don't  care"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, tok.Tokenize(""))
		assert.Empty(t, tok.Tokenize("   \t\n"))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cheap restaurant in the north", Normalize(SimpleTokenizer{}, "  Cheap   restaurant in the NORTH "))
	assert.Equal(t, "", Normalize(SimpleTokenizer{}, ""))
}

func TestVocabulary(t *testing.T) {
	v := NewVocabulary([]string{"a", "b", "a", "c"})

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 0, v.Index("a"))
	assert.Equal(t, 2, v.Index("c"))
	assert.Equal(t, -1, v.Index("zzz"))
	assert.Equal(t, "b", v.Token(1))
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("food\t12\nitalian\t3\n\ncheap\n"), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 1, v.Index("italian"))
	assert.Equal(t, 2, v.Index("cheap"))

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestBagOfWords(t *testing.T) {
	v := NewVocabulary([]string{"italian", "food", "cheap"})

	got := BagOfWords{}.Encode("i want italian food food", v)
	if diff := cmp.Diff([]float32{1, 2, 0}, got); diff != "" {
		t.Errorf("bow mismatch (-want +got):\n%s", diff)
	}

	empty := BagOfWords{}.Encode("", v)
	assert.Len(t, empty, v.Len())
}
