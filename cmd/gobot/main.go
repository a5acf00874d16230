package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/config"
	"github.com/danielpatrickdp/gobot/internal/logging"
)

var (
	// Global flags
	configPath string
	debug      bool

	cfg    config.Config
	logger *zap.Logger
)

// #region root
var rootCmd = &cobra.Command{
	Use:   "gobot",
	Short: "gobot - goal-oriented dialog policy controller",
	Long: `gobot turns user utterances into templated system responses.

Features from the NLP sidecar, the slot tracker and database results are
fused per turn and scored by the policy model service; the chosen action
is rendered from its template.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cmd == runsCmd {
			// run history needs only the store and log sections
			cfg, err = config.Read(configPath)
		} else {
			cfg, err = config.Load(configPath)
		}
		if err != nil {
			return err
		}
		if debug {
			cfg.Bot.Debug = true
			cfg.Log.Level = "debug"
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gobot.toml", "path to TOML config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable per-turn debug logging")

	evalCmd.Flags().StringVar(&evalSplit, "split", "test", "corpus split to evaluate (train, valid, test)")
	runsCmd.Flags().IntVar(&runsLast, "last", 20, "show N most recent runs")
	runsCmd.Flags().StringVar(&runsID, "run", "", "show epochs of one run")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON instead of table")

	rootCmd.AddCommand(trainCmd, evalCmd, chatCmd, runsCmd)
}

// #endregion root

// #region main
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main
