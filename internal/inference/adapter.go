package inference

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jamroute/jamroute/internal/history"
)

// ErrInference marks any failure between feature projection and inverse
// target scaling. It is surfaced to the caller as a server-side failure and
// never silently replaced with a fabricated number.
var ErrInference = errors.New("inference failed")

// FeatureOrder is the fixed ordered feature list the model was trained on.
// The order is part of the model contract: reordering silently corrupts
// predictions, so projection is the only place observations become vectors.
var FeatureOrder = []string{
	"current_speed",
	"free_flow_speed",
	"delay_seconds",
	"hour",
	"day_of_week",
	"is_rush_hour",
	"is_weekend",
	"is_hotspot",
}

// Predictor is the capability the pipeline consumes: a deterministic
// single-step inference over a feature window, returning travel time in real
// units.
type Predictor interface {
	Predict(window history.Window) (float64, error)
}

// Adapter binds the trained model and the two fitted scale transforms behind
// the Predictor contract.
type Adapter struct {
	model         *LSTM
	featureScaler *MinMaxScaler
	targetScaler  *MinMaxScaler
	windowSize    int
}

// NewAdapter creates an Adapter, verifying the scaler and model agree on the
// feature dimension up front.
func NewAdapter(model *LSTM, featureScaler, targetScaler *MinMaxScaler, windowSize int) (*Adapter, error) {
	if model == nil || featureScaler == nil || targetScaler == nil {
		return nil, fmt.Errorf("%w: adapter requires model and both scalers", ErrInference)
	}
	if featureScaler.Dim() != len(FeatureOrder) {
		return nil, fmt.Errorf("%w: feature scaler has dimension %d, want %d", ErrInference, featureScaler.Dim(), len(FeatureOrder))
	}
	if model.InputSize() != len(FeatureOrder) {
		return nil, fmt.Errorf("%w: model expects %d features, want %d", ErrInference, model.InputSize(), len(FeatureOrder))
	}
	if windowSize <= 0 {
		windowSize = 6
	}
	return &Adapter{
		model:         model,
		featureScaler: featureScaler,
		targetScaler:  targetScaler,
		windowSize:    windowSize,
	}, nil
}

// Predict projects the window onto the fixed feature order, applies the
// feature scale transform, runs the model, and maps the output back to real
// units via the inverse target transform.
func (a *Adapter) Predict(window history.Window) (float64, error) {
	if window.Len() != a.windowSize {
		return 0, fmt.Errorf("%w: window for %s has %d observations, model expects %d",
			ErrInference, window.BottleneckID, window.Len(), a.windowSize)
	}

	// One row per timestep, chronological, training feature order.
	sequence := mat.NewDense(a.windowSize, len(FeatureOrder), nil)
	for i, obs := range window.Observations {
		scaled, err := a.featureScaler.Transform(projectFeatures(obs))
		if err != nil {
			return 0, fmt.Errorf("%w: scaling %s window row %d: %v", ErrInference, window.BottleneckID, i, err)
		}
		sequence.SetRow(i, scaled)
	}

	normalized, err := a.model.Forward(sequence)
	if err != nil {
		return 0, fmt.Errorf("%w: model forward for %s (window=%d features=%d): %v",
			ErrInference, window.BottleneckID, a.windowSize, len(FeatureOrder), err)
	}

	return a.targetScaler.Inverse(normalized), nil
}

// projectFeatures maps an observation onto FeatureOrder.
func projectFeatures(obs history.Observation) []float64 {
	return []float64{
		obs.CurrentSpeed,
		obs.FreeFlowSpeed,
		obs.DelaySeconds,
		float64(obs.Hour),
		float64(obs.DayOfWeek),
		boolFeature(obs.IsRushHour),
		boolFeature(obs.IsWeekend),
		boolFeature(obs.IsHotspot),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
