package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// lstmArtifact is the JSON export of the trained model's weights. Shapes
// follow the Keras convention: kernel (F x 4H), recurrent kernel (H x 4H),
// bias (4H), gates ordered input, forget, cell, output; dense head (H x 1).
type lstmArtifact struct {
	InputSize       int         `json:"input_size"`
	HiddenSize      int         `json:"hidden_size"`
	Kernel          [][]float64 `json:"kernel"`
	RecurrentKernel [][]float64 `json:"recurrent_kernel"`
	Bias            []float64   `json:"bias"`
	DenseKernel     [][]float64 `json:"dense_kernel"`
	DenseBias       []float64   `json:"dense_bias"`
}

// LSTM is a single-layer LSTM with a scalar dense head, holding the weights
// of the trained sequence model. Inference is deterministic: identical input
// always produces identical output.
type LSTM struct {
	inputSize  int
	hiddenSize int

	kernel    *mat.Dense // F x 4H
	recurrent *mat.Dense // H x 4H
	bias      *mat.Dense // 1 x 4H

	denseKernel *mat.Dense // H x 1
	denseBias   float64
}

// LoadLSTM reads a model weight artifact exported at training time.
func LoadLSTM(path string) (*LSTM, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var artifact lstmArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decoding model artifact %s: %w", path, err)
	}

	return NewLSTMFromWeights(artifact)
}

// NewLSTMFromWeights builds an LSTM from decoded weights, validating every
// shape against the declared sizes. A shape mismatch here is the same silent
// corruption risk as a wrong feature order, so it fails loudly.
func NewLSTMFromWeights(artifact lstmArtifact) (*LSTM, error) {
	f, h := artifact.InputSize, artifact.HiddenSize
	if f <= 0 || h <= 0 {
		return nil, fmt.Errorf("model artifact: invalid sizes input=%d hidden=%d", f, h)
	}

	kernel, err := denseFromRows(artifact.Kernel, f, 4*h, "kernel")
	if err != nil {
		return nil, err
	}
	recurrent, err := denseFromRows(artifact.RecurrentKernel, h, 4*h, "recurrent_kernel")
	if err != nil {
		return nil, err
	}
	if len(artifact.Bias) != 4*h {
		return nil, fmt.Errorf("model artifact: bias length %d, want %d", len(artifact.Bias), 4*h)
	}
	denseKernel, err := denseFromRows(artifact.DenseKernel, h, 1, "dense_kernel")
	if err != nil {
		return nil, err
	}
	if len(artifact.DenseBias) != 1 {
		return nil, fmt.Errorf("model artifact: dense_bias length %d, want 1", len(artifact.DenseBias))
	}

	return &LSTM{
		inputSize:   f,
		hiddenSize:  h,
		kernel:      kernel,
		recurrent:   recurrent,
		bias:        mat.NewDense(1, 4*h, artifact.Bias),
		denseKernel: denseKernel,
		denseBias:   artifact.DenseBias[0],
	}, nil
}

// InputSize returns the feature count the model expects per timestep.
func (m *LSTM) InputSize() int {
	return m.inputSize
}

// Forward runs single-step inference over a (steps x features) sequence and
// returns the scalar output in the model's normalized target space.
func (m *LSTM) Forward(sequence *mat.Dense) (float64, error) {
	steps, features := sequence.Dims()
	if features != m.inputSize {
		return 0, fmt.Errorf("sequence has %d features, model expects %d", features, m.inputSize)
	}
	if steps == 0 {
		return 0, fmt.Errorf("empty sequence")
	}

	h := mat.NewDense(1, m.hiddenSize, nil)
	c := mat.NewDense(1, m.hiddenSize, nil)

	gates := mat.NewDense(1, 4*m.hiddenSize, nil)
	rec := mat.NewDense(1, 4*m.hiddenSize, nil)

	for t := 0; t < steps; t++ {
		x := sequence.RowView(t).T() // 1 x F

		gates.Mul(x, m.kernel)
		rec.Mul(h, m.recurrent)
		gates.Add(gates, rec)
		gates.Add(gates, m.bias)

		for j := 0; j < m.hiddenSize; j++ {
			i := sigmoid(gates.At(0, j))
			fg := sigmoid(gates.At(0, m.hiddenSize+j))
			cc := math.Tanh(gates.At(0, 2*m.hiddenSize+j))
			o := sigmoid(gates.At(0, 3*m.hiddenSize+j))

			cell := fg*c.At(0, j) + i*cc
			c.Set(0, j, cell)
			h.Set(0, j, o*math.Tanh(cell))
		}
	}

	var out mat.Dense
	out.Mul(h, m.denseKernel)
	return out.At(0, 0) + m.denseBias, nil
}

// denseFromRows converts a row-major nested slice into a Dense, checking
// shape.
func denseFromRows(rows [][]float64, wantRows, wantCols int, name string) (*mat.Dense, error) {
	if len(rows) != wantRows {
		return nil, fmt.Errorf("model artifact: %s has %d rows, want %d", name, len(rows), wantRows)
	}

	data := make([]float64, 0, wantRows*wantCols)
	for i, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("model artifact: %s row %d has %d cols, want %d", name, i, len(row), wantCols)
		}
		data = append(data, row...)
	}

	return mat.NewDense(wantRows, wantCols, data), nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
