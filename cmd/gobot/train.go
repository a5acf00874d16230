package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/train"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the policy model on the corpus",
	Long: `Runs the epoch loop over the train split with teacher forcing, evaluates
on train and valid after every epoch and stops when validation accuracy
runs out of patience or the epoch limit is reached. The model is saved on
either stop. Epoch metrics are recorded in the run store.`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		return err
	}
	data.WithSeed(cfg.Corpus.Seed)

	bot, closeBot, err := buildBot(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer closeBot()

	trainer, err := train.NewTrainer(bot, data, cfg.Train)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		trainer.WithRecorder(st)
	}

	sum, err := trainer.Train(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("stopped: %s after %d epochs\n", sum.State, sum.Epochs)
	fmt.Printf("  best valid action accuracy: %.4f\n", sum.BestValidAccuracy)
	fmt.Printf("  last train: %s\n", sum.LastTrain)
	fmt.Printf("  last valid: %s\n", sum.LastValid)
	if sum.RunID != "" {
		fmt.Printf("  run: %s\n", sum.RunID)
	}
	return nil
}
