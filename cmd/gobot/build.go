package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/codec"
	"github.com/danielpatrickdp/gobot/internal/config"
	"github.com/danielpatrickdp/gobot/internal/network"
	"github.com/danielpatrickdp/gobot/internal/nlp"
	"github.com/danielpatrickdp/gobot/internal/policy"
	"github.com/danielpatrickdp/gobot/internal/store"
	"github.com/danielpatrickdp/gobot/internal/templates"
	"github.com/danielpatrickdp/gobot/internal/tracker"
)

// #region build-bot
// buildBot loads the template set and vocabulary, connects to the model
// services and wires a Bot. The returned close func releases everything.
func buildBot(ctx context.Context, cfg config.Config, log *zap.Logger, trainable bool) (*policy.Bot, func() error, error) {
	tmpls, err := templates.Load(cfg.Bot.TemplatePath)
	if err != nil {
		return nil, nil, err
	}
	vocab, err := nlp.LoadVocabulary(cfg.Bot.VocabPath)
	if err != nil {
		return nil, nil, err
	}

	net, err := network.NewClient(ctx, cfg.Network.Addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connect policy service at %s: %w", cfg.Network.Addr, err)
	}
	deps := policy.Deps{
		Vocab:     vocab,
		Tracker:   tracker.NewDefaultTracker(cfg.Bot.Slots),
		Templates: tmpls,
		Network:   net,
	}

	var sidecar *codec.CodecClient
	if cfg.NLP.Enabled() {
		sidecar, err = codec.NewCodecClient(cfg.NLP.Addr, codec.Options{
			EmbeddingDim:  cfg.NLP.EmbeddingDim,
			IntentClasses: cfg.NLP.IntentClasses,
		})
		if err != nil {
			net.Close()
			return nil, nil, fmt.Errorf("connect nlp service at %s: %w", cfg.NLP.Addr, err)
		}
		if cfg.NLP.UseEmbedder {
			deps.Embedder = sidecar
		}
		if cfg.NLP.UseIntents {
			deps.Intents = sidecar
		}
		if cfg.NLP.UseSlotFiller {
			deps.Slots = sidecar
		}
	}

	bot, err := policy.NewBot(deps, policy.Config{
		Train:            trainable,
		UseActionMask:    cfg.Bot.UseActionMask,
		UseProbabilities: cfg.Bot.UseProbabilities,
		Debug:            cfg.Bot.Debug,
		Logger:           log,
	})
	if err != nil {
		net.Close()
		if sidecar != nil {
			sidecar.Close()
		}
		return nil, nil, err
	}

	closeFn := func() error {
		err := bot.Shutdown()
		// the slot filler owns the sidecar connection when it is wired
		if sidecar != nil && deps.Slots == nil {
			err = errors.Join(err, sidecar.Close())
		}
		return err
	}
	return bot, closeFn, nil
}

// #endregion build-bot

// #region open-store
// openStore opens the run history database, or returns nil when disabled.
func openStore(cfg config.Config) (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}

// #endregion open-store
