package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrArtifactMissing indicates the scaler artifact could not be loaded.
// Strategy construction treats this as fatal.
var ErrArtifactMissing = errors.New("scaler artifact missing")

// ModelColumns is the fixed column order the scaler and the policy expect.
var ModelColumns = []string{
	"close", "high", "low", "volume",
	"macd", "rsi", "cci", "adx", "velocity", "acceleration",
}

// Scaler is a per-column affine transform fit offline and shipped as a JSON
// artifact alongside the policy.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// LoadScaler reads and validates the scaler artifact.
func LoadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scaler) validate() error {
	if len(s.Columns) != len(ModelColumns) {
		return fmt.Errorf("scaler has %d columns, want %d", len(s.Columns), len(ModelColumns))
	}
	for i, col := range s.Columns {
		if col != ModelColumns[i] {
			return fmt.Errorf("scaler column %d is %q, want %q", i, col, ModelColumns[i])
		}
	}
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return fmt.Errorf("scaler mean/scale length mismatch")
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("scaler column %q has zero scale", s.Columns[i])
		}
	}
	return nil
}

// Transform applies the affine transform column-wise, returning one scaled
// vector per input row in ModelColumns order.
func (s *Scaler) Transform(rows []Row) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		raw := [...]float64{
			r.Close, r.High, r.Low, r.Volume,
			r.MACD, r.RSI, r.CCI, r.ADX, r.Velocity, r.Acceleration,
		}
		scaled := make([]float64, len(raw))
		for j, v := range raw {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out
}

// FeatureCount is the width of a scaled row.
func FeatureCount() int { return len(ModelColumns) }
