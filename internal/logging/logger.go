package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// #region config
// Config controls the process logger. An empty Path logs to stderr only.
type Config struct {
	Path         string `toml:"path"`
	RotationTime string `toml:"rotation_time"`
	MaxAge       string `toml:"max_age"`
	Pattern      string `toml:"pattern"`
	Level        string `toml:"level"`
	Format       string `toml:"format"` // console or json
}

// DefaultConfig logs info and above to the console only.
func DefaultConfig() Config {
	return Config{
		RotationTime: "24h",
		MaxAge:       "168h",
		Pattern:      "gobot-%Y-%m-%d.log",
		Level:        "info",
		Format:       "console",
	}
}

// Validate checks durations, level and format.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.RotationTime); err != nil {
		return errors.Wrap(err, "rotation_time is invalid")
	}
	if _, err := time.ParseDuration(c.MaxAge); err != nil {
		return errors.Wrap(err, "max_age is invalid")
	}
	if strings.TrimSpace(c.Path) != "" && strings.TrimSpace(c.Pattern) == "" {
		return errors.New("pattern is required when path is set")
	}
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return errors.Errorf("invalid level: %s", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "console", "json":
	default:
		return errors.Errorf("invalid format: %s", c.Format)
	}
	return nil
}

// #endregion config

// #region new
// New builds a zap logger writing to stderr and, when Path is set, to a
// time-rotated file.
func New(cfg Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := zapcore.ParseLevel(cfg.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)}
	if strings.TrimSpace(cfg.Path) != "" {
		w, err := fileWriter(cfg)
		if err != nil {
			return nil, fmt.Errorf("configure file logger: %w", err)
		}
		// files always get JSON so they stay machine-readable
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func fileWriter(cfg Config) (*rotatelogs.RotateLogs, error) {
	rotation, _ := time.ParseDuration(cfg.RotationTime)
	maxAge, _ := time.ParseDuration(cfg.MaxAge)
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, err
	}
	return rotatelogs.New(
		filepath.Join(cfg.Path, cfg.Pattern),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
}

// #endregion new
