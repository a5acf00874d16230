package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/gobot/internal/network"
	"github.com/danielpatrickdp/gobot/internal/nlp"
	"github.com/danielpatrickdp/gobot/internal/templates"
	"github.com/danielpatrickdp/gobot/internal/tracker"
)

// #region fake-network
type fakeNet struct {
	probs    []float32
	trainNow bool
	resets   int
	saves    int
	closed   bool

	inferFeats [][]float32
	inferMasks [][]float32
	trainFeats [][][]float32
	trainActs  [][]int
}

func (f *fakeNet) Train(_ context.Context, features [][]float32, actions []int, masks [][]float32) (network.TrainResult, error) {
	f.trainFeats = append(f.trainFeats, features)
	f.trainActs = append(f.trainActs, actions)
	return network.TrainResult{Loss: 0.25, Predictions: append([]int(nil), actions...)}, nil
}

func (f *fakeNet) Infer(_ context.Context, features []float32, mask []float32) ([]float32, error) {
	f.inferFeats = append(f.inferFeats, features)
	f.inferMasks = append(f.inferMasks, mask)
	return append([]float32(nil), f.probs...), nil
}

func (f *fakeNet) ResetState(context.Context) error { f.resets++; return nil }
func (f *fakeNet) Save(context.Context) error       { f.saves++; return nil }
func (f *fakeNet) TrainEnabled() bool               { return f.trainNow }
func (f *fakeNet) Close() error                     { f.closed = true; return nil }

type shapedNet struct {
	*fakeNet
	shape network.Shape
}

func (s shapedNet) Shape() network.Shape { return s.shape }

// #endregion fake-network

// #region fake-nlp
type fakeEmbedder struct{ dim int }

func (f fakeEmbedder) Dim() int { return f.dim }
func (f fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, f.dim)
	v[0] = float32(len(text))
	return v, nil
}

type fakeIntents struct{ probs []float32 }

func (f fakeIntents) NumClasses() int { return len(f.probs) }
func (f fakeIntents) PredictProba(context.Context, string) ([]float32, error) {
	return f.probs, nil
}

// fakeSlots fills "food" whenever the text names a known cuisine.
type fakeSlots struct{ shutdown bool }

func (f *fakeSlots) FillSlots(_ context.Context, text string) (map[string]string, error) {
	for _, food := range []string{"italian", "thai"} {
		if containsWord(text, food) {
			return map[string]string{"food": food}, nil
		}
	}
	return map[string]string{}, nil
}

func (f *fakeSlots) Shutdown() error { f.shutdown = true; return nil }

type failingEmbedder struct{}

func (failingEmbedder) Dim() int { return 2 }
func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("sidecar down")
}

func containsWord(text, w string) bool {
	for _, tok := range (nlp.SimpleTokenizer{}).Tokenize(text) {
		if tok == w {
			return true
		}
	}
	return false
}

// #endregion fake-nlp

// #region fixtures
var testVocab = []string{"hello", "italian", "food", "cheap", "thanks"}

func testTemplates(t *testing.T) *templates.Store {
	t.Helper()
	s, err := templates.NewStore([]templates.Template{
		templates.NewTemplate("api_call", "api_call #food #area", ""),
		templates.NewTemplate("greet", "hello, what can I help you with?", ""),
		templates.NewTemplate("inform_food", "#name serves #food food", "sorry, I have no match"),
	})
	require.NoError(t, err)
	return s
}

func testDeps(t *testing.T, net network.Network) Deps {
	t.Helper()
	return Deps{
		Vocab:     nlp.NewVocabulary(testVocab),
		Tracker:   tracker.NewDefaultTracker([]string{"food", "area", "name"}),
		Templates: testTemplates(t),
		Network:   net,
	}
}

func newTestBot(t *testing.T, net network.Network, cfg Config, mutate ...func(*Deps)) *Bot {
	t.Helper()
	deps := testDeps(t, net)
	for _, m := range mutate {
		m(&deps)
	}
	b, err := NewBot(deps, cfg)
	require.NoError(t, err)
	return b
}

// #endregion fixtures
