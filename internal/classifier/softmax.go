package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// SoftmaxModel is a multinomial logistic regression:
// softmax(Coefficients · x + Intercepts).
type SoftmaxModel struct {
	Features     []string    `json:"feature_names"`
	Labels       []string    `json:"classes"`
	Coefficients [][]float64 `json:"coefficients"` // [class][feature]
	Intercepts   []float64   `json:"intercepts"`   // [class]
}

// LoadSoftmaxModel reads a JSON model artifact and checks its shapes.
func LoadSoftmaxModel(path string) (*SoftmaxModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m SoftmaxModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &m, nil
}

func (m *SoftmaxModel) validate() error {
	if err := checkSchema(m.Features, m.Labels); err != nil {
		return err
	}
	if len(m.Coefficients) != len(m.Labels) {
		return fmt.Errorf("%d coefficient rows for %d classes", len(m.Coefficients), len(m.Labels))
	}
	for i, row := range m.Coefficients {
		if len(row) != len(m.Features) {
			return fmt.Errorf("coefficient row %d has %d weights, expected %d", i, len(row), len(m.Features))
		}
	}
	if len(m.Intercepts) != len(m.Labels) {
		return fmt.Errorf("%d intercepts for %d classes", len(m.Intercepts), len(m.Labels))
	}
	return nil
}

func (m *SoftmaxModel) FeatureNames() []string { return m.Features }

func (m *SoftmaxModel) Classes() []string { return m.Labels }

// PredictProba returns the class distribution for one sample.
func (m *SoftmaxModel) PredictProba(_ context.Context, features []float32) ([]float64, error) {
	if err := checkInput(features, len(m.Features)); err != nil {
		return nil, err
	}

	logits := make([]float64, len(m.Labels))
	maxLogit := math.Inf(-1)
	for k, row := range m.Coefficients {
		z := m.Intercepts[k]
		for j, x := range features {
			if x != 0 {
				z += row[j] * float64(x)
			}
		}
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	// shift by the max logit so exp never overflows
	var sum float64
	for k, z := range logits {
		logits[k] = math.Exp(z - maxLogit)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits, nil
}

func (m *SoftmaxModel) Close() error { return nil }
