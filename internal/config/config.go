package config

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/danielpatrickdp/gobot/internal/logging"
	"github.com/danielpatrickdp/gobot/internal/train"
)

// #region sections

// BotConfig selects the template set, vocabulary and tracked slots.
type BotConfig struct {
	TemplatePath     string   `toml:"template_path"`
	VocabPath        string   `toml:"vocab_path"`
	Slots            []string `toml:"slots"`
	UseActionMask    bool     `toml:"use_action_mask"`
	UseProbabilities bool     `toml:"use_probabilities"`
	Debug            bool     `toml:"debug"`
}

// NLPConfig describes the NLP sidecar. Each model can be switched off, in
// which case its feature segment is empty.
type NLPConfig struct {
	Addr          string `toml:"addr"`
	UseEmbedder   bool   `toml:"use_embedder"`
	EmbeddingDim  int    `toml:"embedding_dim"`
	UseIntents    bool   `toml:"use_intents"`
	IntentClasses int    `toml:"intent_classes"`
	UseSlotFiller bool   `toml:"use_slot_filler"`
}

// Enabled reports whether any sidecar model is in use.
func (c NLPConfig) Enabled() bool {
	return c.UseEmbedder || c.UseIntents || c.UseSlotFiller
}

// NetworkConfig locates the policy model service.
type NetworkConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig locates the run history database. An empty path disables it.
type StoreConfig struct {
	Path string `toml:"path"`
}

// CorpusConfig locates the dialog corpus.
type CorpusConfig struct {
	Dir  string `toml:"dir"`
	Seed uint64 `toml:"seed"`
}

// #endregion sections

// #region config

// Config holds all configuration values.
type Config struct {
	Bot     BotConfig      `toml:"bot"`
	Train   train.Config   `toml:"train"`
	NLP     NLPConfig      `toml:"nlp"`
	Network NetworkConfig  `toml:"network"`
	Store   StoreConfig    `toml:"store"`
	Log     logging.Config `toml:"log"`
	Corpus  CorpusConfig   `toml:"corpus"`
}

// Default returns a configuration that only needs template and vocabulary
// paths filled in.
func Default() Config {
	return Config{
		Bot:     BotConfig{UseActionMask: true},
		Train:   train.DefaultConfig(),
		NLP:     NLPConfig{Addr: "localhost:50051"},
		Network: NetworkConfig{Addr: "localhost:50052"},
		Store:   StoreConfig{Path: "gobot.db"},
		Log:     logging.DefaultConfig(),
		Corpus:  CorpusConfig{Dir: "data"},
	}
}

// #endregion config

// #region validate

// Validate checks bot configuration.
func (c *BotConfig) Validate() error {
	if strings.TrimSpace(c.TemplatePath) == "" {
		return errors.New("template_path is required")
	}
	if strings.TrimSpace(c.VocabPath) == "" {
		return errors.New("vocab_path is required")
	}
	seen := make(map[string]bool, len(c.Slots))
	for _, s := range c.Slots {
		if s == "" {
			return errors.New("slot names must be non-empty")
		}
		if seen[s] {
			return errors.Errorf("duplicate slot %q", s)
		}
		seen[s] = true
	}
	return nil
}

// Validate checks sidecar configuration.
func (c *NLPConfig) Validate() error {
	if c.Enabled() && strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required when a model is enabled")
	}
	if c.UseEmbedder && c.EmbeddingDim < 1 {
		return errors.New("embedding_dim must be positive")
	}
	if c.UseIntents && c.IntentClasses < 1 {
		return errors.New("intent_classes must be positive")
	}
	return nil
}

// Validate checks network configuration.
func (c *NetworkConfig) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	return nil
}

// Validate checks all configuration fields.
func (c *Config) Validate() error {
	if err := c.Bot.Validate(); err != nil {
		return errors.Wrap(err, "bot")
	}
	if err := c.Train.Validate(); err != nil {
		return errors.Wrap(err, "train")
	}
	if err := c.NLP.Validate(); err != nil {
		return errors.Wrap(err, "nlp")
	}
	if err := c.Network.Validate(); err != nil {
		return errors.Wrap(err, "network")
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Wrap(err, "log")
	}
	return nil
}

// #endregion validate

// #region load

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path uses defaults only.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}

// Read is Load without validation, for commands that only need a few
// sections.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config file")
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "parse config file")
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides service addresses and the database path from
// GOBOT_POLICY_ADDR, GOBOT_NLP_ADDR and GOBOT_DB.
func (c *Config) ApplyEnv() {
	c.Network.Addr = envOr("GOBOT_POLICY_ADDR", c.Network.Addr)
	c.NLP.Addr = envOr("GOBOT_NLP_ADDR", c.NLP.Addr)
	c.Store.Path = envOr("GOBOT_DB", c.Store.Path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load
