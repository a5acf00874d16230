package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trainJSON = `[
  {"id": "d1", "turns": [
    {"context": {"text": "hi"}, "response": {"text": "Hello!", "act": "welcomemsg"}},
    {"context": {"text": "italian food", "db_result": {"name": "roma", "food": "italian"}},
     "response": {"text": "Roma serves italian food.", "act": "inform_food"}},
    {"context": {"text": "thanks", "db_result": {}}, "response": {"text": "Bye", "act": "bye"}}
  ]},
  {"id": "d2", "turns": [
    {"context": {"text": "hello", "prev_resp_act": "custom"}, "response": {"text": "Hello!", "act": "welcomemsg"}}
  ]}
]`

func dialogs(ids ...string) []Dialog {
	out := make([]Dialog, len(ids))
	for i, id := range ids {
		out[i] = Dialog{ID: id}
	}
	return out
}

func TestDBResult(t *testing.T) {
	var unknown DBResult
	assert.False(t, unknown.Known())
	assert.False(t, unknown.IsEmpty())
	assert.Nil(t, unknown.Clone())

	empty := DBResult{}
	assert.True(t, empty.Known())
	assert.True(t, empty.IsEmpty())

	full := DBResult{"x": 1}
	assert.True(t, full.Known())
	assert.False(t, full.IsEmpty())

	c := full.Clone()
	c["x"] = 2
	assert.Equal(t, 1, full["x"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.json")
	require.NoError(t, os.WriteFile(path, []byte(trainJSON), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	d1 := ds[0]
	require.Len(t, d1.Turns, 3)
	assert.Nil(t, d1.Turns[0].Context.DBResult, "absent db_result must stay unknown")
	assert.Equal(t, "roma", d1.Turns[1].Context.DBResult["name"])
	assert.True(t, d1.Turns[2].Context.DBResult.IsEmpty(), "{} must decode to an empty result")

	assert.Empty(t, d1.Turns[0].Context.PrevRespAct)
	assert.Equal(t, "welcomemsg", d1.Turns[1].Context.PrevRespAct)
	assert.Equal(t, "inform_food", d1.Turns[2].Context.PrevRespAct)
	assert.Equal(t, "custom", ds[1].Turns[0].Context.PrevRespAct)

	assert.Equal(t, []string{"hi", "italian food", "thanks"}, func() []string {
		var texts []string
		for _, c := range d1.Contexts() {
			texts = append(texts, c.Text)
		}
		return texts
	}())
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "a list"`), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	t.Run("optional splits", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "train.json"), []byte(trainJSON), 0o644))

		ds, err := LoadDir(dir)
		require.NoError(t, err)
		assert.Len(t, ds.Split(SplitTrain), 2)
		assert.Empty(t, ds.Split(SplitValid))
		assert.Empty(t, ds.Split(SplitTest))
	})

	t.Run("train required", func(t *testing.T) {
		_, err := LoadDir(t.TempDir())
		assert.Error(t, err)
	})
}

func TestBatches(t *testing.T) {
	ds := NewDataset(dialogs("a", "b", "c", "d", "e"), nil, nil)

	t.Run("batch size one keeps order", func(t *testing.T) {
		var ids []string
		for b := range ds.Batches(1, SplitTrain, false) {
			require.Len(t, b, 1)
			ids = append(ids, b[0].ID)
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	})

	t.Run("short last batch", func(t *testing.T) {
		var sizes []int
		for b := range ds.Batches(2, SplitTrain, false) {
			sizes = append(sizes, len(b))
		}
		assert.Equal(t, []int{2, 2, 1}, sizes)
	})

	t.Run("shuffle is a permutation", func(t *testing.T) {
		seen := map[string]int{}
		for b := range ds.WithSeed(7).Batches(1, SplitTrain, true) {
			seen[b[0].ID]++
		}
		assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1}, seen)
	})

	t.Run("early break", func(t *testing.T) {
		n := 0
		for range ds.Batches(1, SplitTrain, false) {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("unknown split", func(t *testing.T) {
		for range ds.Batches(1, "nope", false) {
			t.Fatal("expected no batches")
		}
	})
}
