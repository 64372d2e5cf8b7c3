package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler_Transform(t *testing.T) {
	scaler := &MinMaxScaler{
		Min: []float64{0, 10, 5},
		Max: []float64{100, 20, 5},
	}

	out, err := scaler.Transform([]float64{50, 15, 5})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out[0], 1e-9)
	assert.InDelta(t, 0.5, out[1], 1e-9)
	// Zero-span feature maps to 0, matching the training-time transform.
	assert.Zero(t, out[2])
}

func TestMinMaxScaler_TransformDimensionMismatch(t *testing.T) {
	scaler := &MinMaxScaler{Min: []float64{0, 0}, Max: []float64{1, 1}}

	_, err := scaler.Transform([]float64{0.5})
	assert.Error(t, err)
}

func TestMinMaxScaler_Inverse(t *testing.T) {
	scaler := &MinMaxScaler{Min: []float64{10}, Max: []float64{50}}

	assert.InDelta(t, 30.0, scaler.Inverse(0.5), 1e-9)
	assert.InDelta(t, 10.0, scaler.Inverse(0), 1e-9)
	assert.InDelta(t, 50.0, scaler.Inverse(1), 1e-9)
}

func TestMinMaxScaler_TransformInverseRoundTrip(t *testing.T) {
	scaler := &MinMaxScaler{Min: []float64{12}, Max: []float64{84}}

	scaled, err := scaler.Transform([]float64{33})
	require.NoError(t, err)
	assert.InDelta(t, 33.0, scaler.Inverse(scaled[0]), 1e-9)
}

func TestLoadScaler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"min":[0,10],"max":[100,20]}`), 0o600))

	scaler, err := LoadScaler(path)
	require.NoError(t, err)
	assert.Equal(t, 2, scaler.Dim())
}

func TestLoadScaler_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "not json"},
		{name: "empty scaler", content: `{"min":[],"max":[]}`},
		{name: "dimension mismatch", content: `{"min":[0],"max":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := LoadScaler(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadScaler_MissingFile(t *testing.T) {
	_, err := LoadScaler(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
