// Package policy implements the dialog-management core: feature fusion,
// action masking, the action codec, per-dialog state and the turn loops
// that drive an external action-selection network.
package policy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/network"
	"github.com/danielpatrickdp/gobot/internal/nlp"
)

// #region bot
// Bot ties the dialog components to one network. A Bot is not safe for
// concurrent use.
type Bot struct {
	cfg      Config
	net      network.Network
	slots    nlp.SlotFiller
	codec    *ActionCodec
	state    *DialogState
	features *FeatureEncoder
	mask     *MaskBuilder
	decoder  *ResponseDecoder
	log      *zap.Logger
}

// shaped is implemented by networks that know their input/output geometry.
type shaped interface {
	Shape() network.Shape
}

// NewBot wires deps into a Bot. Tokenizer and Bow default to the simple
// implementations; Vocab, Tracker, Templates and Network are required.
func NewBot(deps Deps, cfg Config) (*Bot, error) {
	switch {
	case deps.Vocab == nil:
		return nil, &ConfigError{Field: "vocab", Reason: "required"}
	case deps.Tracker == nil:
		return nil, &ConfigError{Field: "tracker", Reason: "required"}
	case deps.Templates == nil:
		return nil, &ConfigError{Field: "templates", Reason: "required"}
	case deps.Network == nil:
		return nil, &ConfigError{Field: "network", Reason: "required"}
	}
	if deps.Tokenizer == nil {
		deps.Tokenizer = nlp.SimpleTokenizer{}
	}
	if deps.Bow == nil {
		deps.Bow = nlp.BagOfWords{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	codec := NewActionCodec(deps.Templates)
	state := NewDialogState(deps.Tracker, deps.Network, codec.Len())
	b := &Bot{
		cfg:      cfg,
		net:      deps.Network,
		slots:    deps.Slots,
		codec:    codec,
		state:    state,
		features: NewFeatureEncoder(deps, state, codec.Len(), log, cfg.Debug),
		mask:     NewMaskBuilder(codec, state, cfg.UseActionMask),
		decoder:  NewResponseDecoder(codec, state),
		log:      log,
	}

	if s, ok := deps.Network.(shaped); ok {
		shape := s.Shape()
		if shape.ObsSize != b.FeatureSize() {
			return nil, &ConfigError{Field: "network.obs_size",
				Reason: fmt.Sprintf("network expects %d features, bot produces %d", shape.ObsSize, b.FeatureSize())}
		}
		if shape.ActionSize != codec.Len() {
			return nil, &ConfigError{Field: "network.action_size",
				Reason: fmt.Sprintf("network has %d actions, template set has %d", shape.ActionSize, codec.Len())}
		}
	}

	log.Info("bot ready",
		zap.Int("actions", codec.Len()),
		zap.Int("features", b.FeatureSize()),
		zap.Bool("train", cfg.Train),
		zap.Bool("action_mask", cfg.UseActionMask),
	)
	return b, nil
}

// #endregion bot

// #region accessors
func (b *Bot) FeatureSize() int           { return b.features.Size() }
func (b *Bot) FeatureSizes() FeatureSizes { return b.features.Sizes() }
func (b *Bot) NumActions() int            { return b.codec.Len() }
func (b *Bot) Codec() *ActionCodec        { return b.codec }
func (b *Bot) State() *DialogState        { return b.state }
func (b *Bot) Network() network.Network   { return b.net }
func (b *Bot) Logger() *zap.Logger        { return b.log }
func (b *Bot) Config() Config             { return b.cfg }

// TrainEnabled reports the bot's own train flag.
func (b *Bot) TrainEnabled() bool { return b.cfg.Train }

// #endregion accessors

// #region lifecycle
// Reset starts a new dialog.
func (b *Bot) Reset(ctx context.Context) error {
	return b.state.Reset(ctx)
}

// Save persists the network.
func (b *Bot) Save(ctx context.Context) error {
	if err := b.net.Save(ctx); err != nil {
		return fmt.Errorf("save network: %w", err)
	}
	return nil
}

// Shutdown releases the network and the slot filler.
func (b *Bot) Shutdown() error {
	var errs []error
	if err := b.net.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close network: %w", err))
	}
	if b.slots != nil {
		if err := b.slots.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown slot filler: %w", err))
		}
	}
	return errors.Join(errs...)
}

// #endregion lifecycle
