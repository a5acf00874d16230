package policy

import (
	"go.uber.org/zap"

	"github.com/danielpatrickdp/gobot/internal/network"
	"github.com/danielpatrickdp/gobot/internal/nlp"
	"github.com/danielpatrickdp/gobot/internal/templates"
	"github.com/danielpatrickdp/gobot/internal/tracker"
)

// #region config
// Config holds the bot's behavioural switches.
type Config struct {
	// Train marks the bot as trainable; trainers refuse bots without it.
	Train bool
	// UseActionMask zeroes actions whose template slots are unknown.
	UseActionMask bool
	// UseProbabilities keeps the full predicted distribution as the
	// previous-action memory instead of a one-hot arg-max.
	UseProbabilities bool
	// Debug enables per-turn debug logging.
	Debug  bool
	Logger *zap.Logger
}

// DefaultConfig returns an inference-only configuration with masking on.
func DefaultConfig() Config {
	return Config{UseActionMask: true}
}

// #endregion config

// #region deps
// Deps are the collaborators a Bot is built from. Embedder, Intents and
// Slots are optional; nil contributes an empty feature segment.
type Deps struct {
	Tokenizer nlp.Tokenizer
	Bow       nlp.BowEncoder
	Vocab     *nlp.Vocabulary
	Embedder  nlp.Embedder
	Intents   nlp.IntentClassifier
	Slots     nlp.SlotFiller
	Tracker   tracker.Tracker
	Templates *templates.Store
	Network   network.Network
}

// #endregion deps
