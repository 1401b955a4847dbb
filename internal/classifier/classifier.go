// Package classifier holds the trained disease model behind a small contract:
// a fixed ordered feature schema in, one probability per class label out.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

// Supported model artifact formats.
const (
	FormatJSON = "json"
	FormatONNX = "onnx"
)

// ErrShape is returned when a feature vector does not match the model schema.
var ErrShape = errors.New("feature vector shape mismatch")

// Classifier is a trained model mapping a binary symptom vector to a
// probability distribution over disease labels.
type Classifier interface {
	// FeatureNames is the ordered input schema.
	FeatureNames() []string
	// Classes is the ordered label enumeration; PredictProba returns one probability per entry.
	Classes() []string
	PredictProba(ctx context.Context, features []float32) ([]float64, error)
	Close() error
}

// Options locates a model artifact on disk.
type Options struct {
	Format string
	Path   string
	// MetaPath and LibraryPath are only read for ONNX models.
	MetaPath    string
	LibraryPath string
}

// Open loads the model described by opts.
func Open(opts Options) (Classifier, error) {
	switch opts.Format {
	case FormatJSON:
		return LoadSoftmaxModel(opts.Path)
	case FormatONNX:
		return OpenOnnxModel(opts.Path, opts.MetaPath, opts.LibraryPath)
	default:
		return nil, fmt.Errorf("unsupported model format %q", opts.Format)
	}
}

func checkInput(features []float32, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: got %d features, model expects %d", ErrShape, len(features), want)
	}
	return nil
}

func checkOutput(probs []float64, want int) error {
	if len(probs) != want {
		return fmt.Errorf("%w: got %d probabilities for %d classes", ErrShape, len(probs), want)
	}
	return nil
}

func checkSchema(features, classes []string) error {
	if len(features) == 0 {
		return errors.New("model has no feature names")
	}
	if len(classes) == 0 {
		return errors.New("model has no classes")
	}
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, dup := seen[f]; dup {
			return fmt.Errorf("duplicate feature name %q", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}
