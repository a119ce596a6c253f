// Package policy wraps the trained decision function behind a small
// interface so the strategy driver never sees model internals.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Action is one of the three trade intents the policy can emit. Values match
// the class indices the model was trained with.
type Action int

const (
	Buy         Action = 0
	SellOrShort Action = 1
	Hold        Action = 2
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "buy"
	case SellOrShort:
		return "sell_or_short"
	case Hold:
		return "hold"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ErrArtifactMissing indicates the serialized policy could not be loaded.
// Strategy construction treats this as fatal.
var ErrArtifactMissing = errors.New("policy artifact missing")

// Policy maps an observation window to an action. Implementations must be
// deterministic in inference.
type Policy interface {
	Predict(obs []float32) (Action, error)
	Name() string
	Close() error
}

// Params carries everything a policy constructor might need.
type Params struct {
	ModelPath  string
	ObsSize    int // window size × feature count
	WindowSize int
	// Momentum thresholds operate on scaled feature values.
	VelocityThreshold float64
}

// Build returns a policy implementation matching the configured mode.
func Build(mode string, params Params) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "short_rl", "onnx":
		return NewONNXPolicy(params.ModelPath, params.ObsSize)
	case "momentum":
		return NewMomentumPolicy(params.VelocityThreshold), nil
	default:
		return nil, fmt.Errorf("unknown policy mode %q", mode)
	}
}
