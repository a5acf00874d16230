package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/corpus"
	"github.com/danielpatrickdp/gobot/internal/logging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot interactively",
	Long: `Starts a read-eval-print loop. Commands:
  /reset        start a new dialog
  /db {json}    attach a database result to the next utterance
  quit | exit   leave`,
	RunE: runChat,
}

// #region chat
func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	bot, closeBot, err := buildBot(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeBot()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	if err := bot.Reset(ctx); err != nil {
		return err
	}
	dialogID := uuid.New().String()
	turnNum := 0
	var pendingDB corpus.DBResult

	fmt.Println("gobot ready.")
	fmt.Printf("  Policy: %s | Actions: %d | Features: %d\n", cfg.Network.Addr, bot.NumActions(), bot.FeatureSize())
	fmt.Println("Type an utterance (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "/reset":
			if err := bot.Reset(ctx); err != nil {
				return err
			}
			dialogID = uuid.New().String()
			turnNum = 0
			pendingDB = nil
			fmt.Println("[new dialog]")
			continue
		case strings.HasPrefix(line, "/db"):
			var db corpus.DBResult
			if err := sonic.UnmarshalString(strings.TrimSpace(strings.TrimPrefix(line, "/db")), &db); err != nil {
				fmt.Printf("bad db result: %v\n", err)
				continue
			}
			if db == nil {
				db = corpus.DBResult{}
			}
			pendingDB = db
			continue
		}

		res, err := bot.Respond(ctx, line, pendingDB)
		pendingDB = nil
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("respond failed", zap.Error(err))
			continue
		}
		fmt.Printf("\n%s\n\n", res.Text)
		fmt.Printf("[turn-%d] action=%s prob=%.4f\n", turnNum, res.Label, res.Probs[res.Action])

		if st != nil {
			err := logging.LogTurn(st.DB(), logging.TurnEntry{
				DialogID:  dialogID,
				TurnIndex: turnNum,
				Text:      line,
				Action:    res.Label,
				Prob:      res.Probs[res.Action],
				Response:  res.Text,
			})
			if err != nil {
				logger.Warn("turn log failed", zap.Error(err))
			}
		}
		turnNum++
	}
	return scanner.Err()
}

// #endregion chat
