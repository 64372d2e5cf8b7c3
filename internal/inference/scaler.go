// Package inference wraps the trained sequence model and its scale
// transforms behind a single predict call.
package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

// MinMaxScaler is a fitted per-feature min-max scale transform. It is fit at
// training time and immutable here; Transform and Inverse are deterministic
// pure functions.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// LoadScaler reads a scaler artifact exported at training time.
func LoadScaler(path string) (*MinMaxScaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scaler artifact: %w", err)
	}

	var s MinMaxScaler
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding scaler artifact %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scaler artifact %s: %w", path, err)
	}
	return &s, nil
}

// Dim returns the number of features the scaler was fit on.
func (s *MinMaxScaler) Dim() int {
	return len(s.Min)
}

func (s *MinMaxScaler) validate() error {
	if len(s.Min) == 0 {
		return fmt.Errorf("empty scaler")
	}
	if len(s.Min) != len(s.Max) {
		return fmt.Errorf("min/max dimension mismatch: %d vs %d", len(s.Min), len(s.Max))
	}
	return nil
}

// Transform scales a feature vector into [0, 1] space. A feature whose fitted
// range is zero maps to 0, matching the training-time transform.
func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Min) {
		return nil, fmt.Errorf("feature count %d does not match scaler dimension %d", len(features), len(s.Min))
	}

	out := make([]float64, len(features))
	for i, v := range features {
		span := s.Max[i] - s.Min[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - s.Min[i]) / span
	}
	return out, nil
}

// Inverse maps a scaled scalar back to real units using the first (and for
// the target scaler, only) fitted feature range.
func (s *MinMaxScaler) Inverse(scaled float64) float64 {
	return scaled*(s.Max[0]-s.Min[0]) + s.Min[0]
}
