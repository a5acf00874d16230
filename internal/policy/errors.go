package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction is returned when an action label is not in the template set.
	ErrUnknownAction = errors.New("unknown action")
	// ErrActionOutOfRange is returned for an action index outside [0, n_actions).
	ErrActionOutOfRange = errors.New("action index out of range")
	// ErrFeatureSize is returned when a feature segment has the wrong length.
	ErrFeatureSize = errors.New("feature segment size mismatch")
	// ErrTrainingDisabled is returned when training is requested on a bot
	// built without its train flag.
	ErrTrainingDisabled = errors.New("training disabled")
)

// ConfigError reports an inconsistent bot configuration detected at construction.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}
