package inference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamroute/jamroute/internal/history"
)

func testFeatureScaler() *MinMaxScaler {
	return &MinMaxScaler{
		Min: []float64{0, 0, 0, 0, 0, 0, 0, 0},
		Max: []float64{120, 120, 3600, 23, 6, 1, 1, 1},
	}
}

func testTargetScaler() *MinMaxScaler {
	return &MinMaxScaler{Min: []float64{0}, Max: []float64{120}}
}

func testWindow(size int) history.Window {
	base := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	observations := make([]history.Observation, size)
	for i := range observations {
		observations[i] = history.Observation{
			BottleneckID:  "CMS_Junction",
			Timestamp:     base.Add(time.Duration(i) * 10 * time.Minute),
			CurrentSpeed:  20 + float64(i),
			FreeFlowSpeed: 55,
			DelaySeconds:  300,
			Hour:          7,
			DayOfWeek:     2,
			IsRushHour:    true,
			IsHotspot:     true,
		}
	}
	return history.Window{BottleneckID: "CMS_Junction", Observations: observations}
}

func TestNewAdapter_Validation(t *testing.T) {
	model, err := NewLSTMFromWeights(zeroArtifact(len(FeatureOrder), 4))
	require.NoError(t, err)

	t.Run("nil model", func(t *testing.T) {
		_, err := NewAdapter(nil, testFeatureScaler(), testTargetScaler(), 6)
		assert.ErrorIs(t, err, ErrInference)
	})

	t.Run("feature scaler dimension mismatch", func(t *testing.T) {
		bad := &MinMaxScaler{Min: []float64{0}, Max: []float64{1}}
		_, err := NewAdapter(model, bad, testTargetScaler(), 6)
		assert.ErrorIs(t, err, ErrInference)
	})

	t.Run("model input size mismatch", func(t *testing.T) {
		narrow, err := NewLSTMFromWeights(zeroArtifact(3, 4))
		require.NoError(t, err)
		_, err = NewAdapter(narrow, testFeatureScaler(), testTargetScaler(), 6)
		assert.ErrorIs(t, err, ErrInference)
	})

	t.Run("valid", func(t *testing.T) {
		adapter, err := NewAdapter(model, testFeatureScaler(), testTargetScaler(), 6)
		require.NoError(t, err)
		assert.NotNil(t, adapter)
	})
}

func TestAdapter_Predict(t *testing.T) {
	artifact := zeroArtifact(len(FeatureOrder), 4)
	artifact.DenseBias = []float64{0.5}
	model, err := NewLSTMFromWeights(artifact)
	require.NoError(t, err)

	adapter, err := NewAdapter(model, testFeatureScaler(), testTargetScaler(), 6)
	require.NoError(t, err)

	got, err := adapter.Predict(testWindow(6))
	require.NoError(t, err)

	// Zero weights leave the normalized output at the dense bias; the
	// target scaler maps 0.5 back to 60 minutes.
	assert.InDelta(t, 60.0, got, 1e-9)
}

func TestAdapter_Predict_Deterministic(t *testing.T) {
	model, err := NewLSTMFromWeights(zeroArtifact(len(FeatureOrder), 4))
	require.NoError(t, err)
	adapter, err := NewAdapter(model, testFeatureScaler(), testTargetScaler(), 6)
	require.NoError(t, err)

	window := testWindow(6)
	first, err := adapter.Predict(window)
	require.NoError(t, err)
	second, err := adapter.Predict(window)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAdapter_Predict_WrongWindowSize(t *testing.T) {
	model, err := NewLSTMFromWeights(zeroArtifact(len(FeatureOrder), 4))
	require.NoError(t, err)
	adapter, err := NewAdapter(model, testFeatureScaler(), testTargetScaler(), 6)
	require.NoError(t, err)

	_, err = adapter.Predict(testWindow(5))
	assert.ErrorIs(t, err, ErrInference)

	_, err = adapter.Predict(testWindow(7))
	assert.ErrorIs(t, err, ErrInference)
}

func TestProjectFeatures_Order(t *testing.T) {
	obs := history.Observation{
		CurrentSpeed:  18.5,
		FreeFlowSpeed: 55,
		DelaySeconds:  420,
		Hour:          7,
		DayOfWeek:     2,
		IsRushHour:    true,
		IsWeekend:     false,
		IsHotspot:     true,
	}

	got := projectFeatures(obs)

	require.Len(t, got, len(FeatureOrder))
	assert.Equal(t, []float64{18.5, 55, 420, 7, 2, 1, 0, 1}, got)
}
