package store

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/gobot/internal/eval"
	"github.com/danielpatrickdp/gobot/internal/logging"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// #region run-tests
func TestCreateAndFinishRun(t *testing.T) {
	s := tempDB(t)

	run, err := s.CreateRun(`{"num_epochs":3}`)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}

	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.State != StateRunning || !got.FinishedAt.IsZero() {
		t.Fatalf("expected running run, got %+v", got)
	}

	if err := s.FinishRun(run.RunID, "patience_exhausted", 0.8); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	got, _ = s.GetRun(run.RunID)
	if got.State != "patience_exhausted" {
		t.Fatalf("expected patience_exhausted, got %s", got.State)
	}
	if got.BestValidAccuracy != 0.8 {
		t.Fatalf("expected best 0.8, got %f", got.BestValidAccuracy)
	}
	if got.FinishedAt.IsZero() {
		t.Fatal("expected finished_at to be set")
	}
	if got.ConfigJSON != `{"num_epochs":3}` {
		t.Fatalf("config not preserved: %s", got.ConfigJSON)
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	s := tempDB(t)
	if err := s.FinishRun("nope", "max_epochs_reached", 0); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestListRuns(t *testing.T) {
	s := tempDB(t)
	for i := 0; i < 3; i++ {
		if _, err := s.CreateRun(""); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}
	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Fatal("expected newest run first")
	}
}

// #endregion run-tests

// #region epoch-tests
func TestRecordAndListEpochs(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("")

	accs := []float64{0.5, 0.7, 0.7}
	for i, acc := range accs {
		err := s.RecordEpoch(EpochRecord{
			RunID:      run.RunID,
			Epoch:      i + 1,
			Train:      eval.Report{Examples: 10, Dialogs: 2, Loss: 0.3, ActionAccuracy: 0.9},
			Valid:      eval.Report{Examples: 4, Dialogs: 1, ActionAccuracy: acc},
			Patience:   2,
			ConfMatrix: [][]int{{3, 1}, {0, 6}},
		})
		if err != nil {
			t.Fatalf("RecordEpoch %d: %v", i, err)
		}
	}

	epochs, err := s.ListEpochs(run.RunID)
	if err != nil {
		t.Fatalf("ListEpochs: %v", err)
	}
	if len(epochs) != 3 {
		t.Fatalf("expected 3 epochs, got %d", len(epochs))
	}
	if epochs[0].Epoch != 1 || epochs[2].Epoch != 3 {
		t.Fatalf("epochs out of order: %d..%d", epochs[0].Epoch, epochs[2].Epoch)
	}
	if epochs[1].Train.Examples != 10 || epochs[1].Valid.ActionAccuracy != 0.7 {
		t.Fatalf("reports not round-tripped: %+v", epochs[1])
	}
	if epochs[0].ConfMatrix[0][1] != 1 || epochs[0].ConfMatrix[1][1] != 6 {
		t.Fatalf("confusion matrix not round-tripped: %v", epochs[0].ConfMatrix)
	}

	got, _ := s.GetRun(run.RunID)
	if got.Epochs != 3 {
		t.Fatalf("expected run epoch count 3, got %d", got.Epochs)
	}

	best, err := s.BestEpoch(run.RunID)
	if err != nil {
		t.Fatalf("BestEpoch: %v", err)
	}
	if best.Epoch != 2 {
		t.Fatalf("expected earliest best epoch 2, got %d", best.Epoch)
	}
}

func TestRecordEpoch_UnknownRun(t *testing.T) {
	s := tempDB(t)
	err := s.RecordEpoch(EpochRecord{RunID: "missing", Epoch: 1})
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestBestEpoch_NoEpochs(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("")
	if _, err := s.BestEpoch(run.RunID); err == nil {
		t.Fatal("expected error for run without epochs")
	}
}

func TestMatrixEncoding(t *testing.T) {
	m := [][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	got := decodeMatrix(encodeMatrix(m), 3)
	for i := range m {
		for j := range m[i] {
			if got[i][j] != m[i][j] {
				t.Fatalf("cell [%d][%d]: expected %d, got %d", i, j, m[i][j], got[i][j])
			}
		}
	}
	if decodeMatrix(nil, 0) != nil {
		t.Fatal("expected nil matrix for size 0")
	}
}

// #endregion epoch-tests

// #region turn-log-tests
func TestDialogTurns(t *testing.T) {
	s := tempDB(t)
	for i, act := range []string{"greet", "api_call"} {
		err := logging.LogTurn(s.DB(), logging.TurnEntry{DialogID: "d-1", TurnIndex: i, Text: "t", Action: act, Prob: 0.5})
		if err != nil {
			t.Fatalf("LogTurn: %v", err)
		}
	}
	if err := logging.LogTurn(s.DB(), logging.TurnEntry{DialogID: "d-2", Text: "x", Action: "greet"}); err != nil {
		t.Fatalf("LogTurn: %v", err)
	}

	turns, err := s.DialogTurns("d-1")
	if err != nil {
		t.Fatalf("DialogTurns: %v", err)
	}
	if len(turns) != 2 || turns[1].Action != "api_call" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if turns[0].Response != "" {
		t.Fatalf("expected empty response, got %q", turns[0].Response)
	}
}

// #endregion turn-log-tests
