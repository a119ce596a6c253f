package policy

import "shortbot-go/internal/feature"

// MomentumPolicy is a model-free variant that reads the scaled velocity and
// acceleration columns of the latest row in the window. It exists so the
// pipeline can run without a trained artifact and as a baseline to compare
// the learned policy against.
type MomentumPolicy struct {
	threshold float64
}

// NewMomentumPolicy builds the baseline with the given velocity threshold
// (in scaled units). Non-positive thresholds get a conservative default.
func NewMomentumPolicy(threshold float64) *MomentumPolicy {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &MomentumPolicy{threshold: threshold}
}

// Predict goes long when scaled velocity and acceleration agree upward,
// short when they agree downward, and holds otherwise.
func (p *MomentumPolicy) Predict(obs []float32) (Action, error) {
	width := feature.FeatureCount()
	if len(obs) < width {
		return Hold, nil
	}
	last := obs[len(obs)-width:]
	velocity := float64(last[8])
	acceleration := float64(last[9])

	switch {
	case velocity > p.threshold && acceleration > 0:
		return Buy, nil
	case velocity < -p.threshold && acceleration < 0:
		return SellOrShort, nil
	default:
		return Hold, nil
	}
}

func (p *MomentumPolicy) Name() string { return "momentum" }

func (p *MomentumPolicy) Close() error { return nil }
