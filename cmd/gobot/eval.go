package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/train"
)

var evalSplit string

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the policy model on a corpus split",
	RunE:  runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	switch evalSplit {
	case corpus.SplitTrain, corpus.SplitValid, corpus.SplitTest:
	default:
		return fmt.Errorf("unknown split %q", evalSplit)
	}

	data, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		return err
	}
	bot, closeBot, err := buildBot(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeBot()

	m, err := train.Evaluate(ctx, bot, data.Batches(1, evalSplit, false))
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", evalSplit, m.Report())

	actions := bot.Codec()
	fmt.Printf("\n%-24s  %8s  %8s\n", "Action", "Support", "Correct")
	for i := 0; i < actions.Len(); i++ {
		label, _ := actions.Label(i)
		support := 0
		for p := 0; p < actions.Len(); p++ {
			support += m.ConfMatrix[p][i]
		}
		if support == 0 {
			continue
		}
		fmt.Printf("%-24s  %8d  %8d\n", label, support, m.ConfMatrix[i][i])
	}
	return nil
}
