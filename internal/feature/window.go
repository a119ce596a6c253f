package feature

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory is returned when a window is requested before
// enough closed candles exist. The caller skips the decision step.
var ErrInsufficientHistory = errors.New("insufficient history for window")

// ExtractLatest flattens the most recent windowSize scaled rows into one
// row-major observation vector. Pure function, no side effects.
func ExtractLatest(scaled [][]float64, windowSize int) ([]float32, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if len(scaled) < windowSize {
		return nil, fmt.Errorf("%w: have %d rows, need %d", ErrInsufficientHistory, len(scaled), windowSize)
	}

	tail := scaled[len(scaled)-windowSize:]
	out := make([]float32, 0, windowSize*len(tail[0]))
	for _, row := range tail {
		for _, v := range row {
			out = append(out, float32(v))
		}
	}
	return out, nil
}
