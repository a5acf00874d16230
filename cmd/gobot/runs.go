package main

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/gobot/internal/store"
)

var (
	runsLast int
	runsID   string
	runsJSON bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect training run history",
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("no run store configured")
	}
	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if runsID != "" {
		return runDetailMode(st, runsID, runsJSON)
	}
	return runListMode(st, runsLast, runsJSON)
}

// #region list-mode
type runRow struct {
	RunID     string  `json:"run_id"`
	State     string  `json:"state"`
	Epochs    int     `json:"epochs"`
	BestValid float64 `json:"best_valid"`
	StartedAt string  `json:"started_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}
	rows := make([]runRow, len(runs))
	for i, r := range runs {
		rows[i] = runRow{
			RunID:     r.RunID,
			State:     r.State,
			Epochs:    r.Epochs,
			BestValid: r.BestValidAccuracy,
			StartedAt: r.StartedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-36s  %-18s  %6s  %10s  %s\n", "Run", "State", "Epochs", "Best Valid", "Started")
	fmt.Printf("%-36s+-%-18s+-%6s+-%10s+-%s\n",
		"------------------------------------", "------------------", "------", "----------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-36s  %-18s  %6d  %10.4f  %s\n", r.RunID, r.State, r.Epochs, r.BestValid, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode
type epochRow struct {
	Epoch     int     `json:"epoch"`
	TrainLoss float64 `json:"train_loss"`
	TrainAcc  float64 `json:"train_acc"`
	ValidAcc  float64 `json:"valid_acc"`
	ValidDlg  float64 `json:"valid_dialog_acc"`
	Patience  int     `json:"patience"`
	Best      bool    `json:"best"`
}

func runDetailMode(st *store.Store, runID string, jsonOut bool) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	epochs, err := st.ListEpochs(runID)
	if err != nil {
		return err
	}
	bestEpoch := 0
	if len(epochs) > 0 {
		best, err := st.BestEpoch(runID)
		if err != nil {
			return err
		}
		bestEpoch = best.Epoch
	}

	rows := make([]epochRow, len(epochs))
	for i, e := range epochs {
		rows[i] = epochRow{
			Epoch:     e.Epoch,
			TrainLoss: e.Train.Loss,
			TrainAcc:  e.Train.ActionAccuracy,
			ValidAcc:  e.Valid.ActionAccuracy,
			ValidDlg:  e.Valid.DialogAccuracy,
			Patience:  e.Patience,
			Best:      e.Epoch == bestEpoch,
		}
	}
	if jsonOut {
		return printJSON(map[string]any{"run": run.RunID, "state": run.State, "epochs": rows})
	}

	fmt.Printf("Run %s  state=%s  best_valid=%.4f\n\n", run.RunID, run.State, run.BestValidAccuracy)
	fmt.Printf("%5s  %10s  %9s  %9s  %10s  %8s\n", "Epoch", "Train Loss", "Train Acc", "Valid Acc", "Valid Dlg", "Patience")
	for _, r := range rows {
		mark := ""
		if r.Best {
			mark = "  *"
		}
		fmt.Printf("%5d  %10.4f  %9.4f  %9.4f  %10.4f  %8d%s\n",
			r.Epoch, r.TrainLoss, r.TrainAcc, r.ValidAcc, r.ValidDlg, r.Patience, mark)
	}
	return nil
}

// #endregion detail-mode

func printJSON(v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
