package feature

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeScaler(t *testing.T, s Scaler) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal scaler: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scaler.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write scaler: %v", err)
	}
	return path
}

func identityScaler() Scaler {
	n := len(ModelColumns)
	s := Scaler{Columns: append([]string{}, ModelColumns...), Mean: make([]float64, n), Scale: make([]float64, n)}
	for i := range s.Scale {
		s.Scale[i] = 1
	}
	return s
}

func TestLoadScalerMissingFile(t *testing.T) {
	_, err := LoadScaler(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
}

func TestLoadScalerRejectsColumnMismatch(t *testing.T) {
	s := identityScaler()
	s.Columns[0] = "not-close"
	if _, err := LoadScaler(writeScaler(t, s)); err == nil {
		t.Fatalf("expected column mismatch error")
	}
}

func TestLoadScalerRejectsZeroScale(t *testing.T) {
	s := identityScaler()
	s.Scale[3] = 0
	if _, err := LoadScaler(writeScaler(t, s)); err == nil {
		t.Fatalf("expected zero scale error")
	}
}

func TestTransformAffine(t *testing.T) {
	s := identityScaler()
	for i := range s.Mean {
		s.Mean[i] = 10
		s.Scale[i] = 2
	}
	loaded, err := LoadScaler(writeScaler(t, s))
	if err != nil {
		t.Fatalf("LoadScaler returned error: %v", err)
	}

	rows := []Row{{Close: 12, High: 14, Low: 10, Volume: 30}}
	scaled := loaded.Transform(rows)
	if len(scaled) != 1 || len(scaled[0]) != FeatureCount() {
		t.Fatalf("unexpected scaled shape")
	}
	if math.Abs(scaled[0][0]-1) > 1e-12 { // (12-10)/2
		t.Fatalf("close scaled wrong: %v", scaled[0][0])
	}
	if math.Abs(scaled[0][1]-2) > 1e-12 { // (14-10)/2
		t.Fatalf("high scaled wrong: %v", scaled[0][1])
	}
	if math.Abs(scaled[0][2]-0) > 1e-12 { // (10-10)/2
		t.Fatalf("low scaled wrong: %v", scaled[0][2])
	}
	if math.Abs(scaled[0][3]-10) > 1e-12 { // (30-10)/2
		t.Fatalf("volume scaled wrong: %v", scaled[0][3])
	}
}
