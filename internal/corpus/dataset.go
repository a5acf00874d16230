package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"
)

// #region splits

// Split names understood by Dataset.
const (
	SplitTrain = "train"
	SplitValid = "valid"
	SplitTest  = "test"
)

// #endregion splits

// #region dataset

// Dataset holds the dialogs of every split.
type Dataset struct {
	splits map[string][]Dialog
	seed   uint64
}

// NewDataset builds a dataset from in-memory splits.
func NewDataset(train, valid, test []Dialog) *Dataset {
	return &Dataset{
		splits: map[string][]Dialog{
			SplitTrain: train,
			SplitValid: valid,
			SplitTest:  test,
		},
	}
}

// WithSeed sets the seed used when shuffling.
func (d *Dataset) WithSeed(seed uint64) *Dataset {
	d.seed = seed
	return d
}

// Split returns the dialogs of a split (nil for unknown splits).
func (d *Dataset) Split(name string) []Dialog {
	return d.splits[name]
}

// Batches yields consecutive groups of batchSize dialogs from split. The
// last batch may be shorter. Shuffling permutes dialogs, never turns.
func (d *Dataset) Batches(batchSize int, split string, shuffle bool) iter.Seq[Batch] {
	dialogs := d.splits[split]
	if batchSize < 1 {
		batchSize = 1
	}
	order := make([]int, len(dialogs))
	for i := range order {
		order[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewPCG(d.seed, uint64(len(dialogs))))
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		d.seed++
	}

	return func(yield func(Batch) bool) {
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			batch := make(Batch, 0, end-start)
			for _, i := range order[start:end] {
				batch = append(batch, dialogs[i])
			}
			if !yield(batch) {
				return
			}
		}
	}
}

// #endregion dataset

// #region loader

// LoadDir reads train.json, valid.json and test.json from dir concurrently.
// train.json is required; the other splits default to empty.
func LoadDir(dir string) (*Dataset, error) {
	names := []string{SplitTrain, SplitValid, SplitTest}
	loaded := make([][]Dialog, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			path := filepath.Join(dir, name+".json")
			dialogs, err := LoadFile(path)
			if err != nil {
				if name != SplitTrain && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			loaded[i] = dialogs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewDataset(loaded[0], loaded[1], loaded[2]), nil
}

// LoadFile reads a JSON array of dialogs and fills each missing
// prev_resp_act from the previous turn's response act.
func LoadFile(path string) ([]Dialog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	var dialogs []Dialog
	if err := sonic.Unmarshal(data, &dialogs); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	for i := range dialogs {
		fillPrevActs(&dialogs[i])
	}
	return dialogs, nil
}

func fillPrevActs(d *Dialog) {
	for i := 1; i < len(d.Turns); i++ {
		if d.Turns[i].Context.PrevRespAct == "" {
			d.Turns[i].Context.PrevRespAct = d.Turns[i-1].Response.Act
		}
	}
}

// #endregion loader
