package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxMeta is the JSON sidecar describing an exported ONNX classifier.
type OnnxMeta struct {
	FeatureNames []string `json:"feature_names"`
	Classes      []string `json:"classes"`
	InputName    string   `json:"input_name"`
	OutputName   string   `json:"output_name"`
}

// OnnxModel runs an exported classifier through ONNX Runtime. The session is
// bound to fixed input/output tensors, so Run calls are serialised.
type OnnxModel struct {
	meta    OnnxMeta
	mu      sync.Mutex
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	session *ort.AdvancedSession
}

func loadOnnxMeta(path string) (OnnxMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OnnxMeta{}, fmt.Errorf("read model meta: %w", err)
	}
	var meta OnnxMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return OnnxMeta{}, fmt.Errorf("parse model meta: %w", err)
	}
	if meta.InputName == "" {
		meta.InputName = "float_input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "probabilities"
	}
	if err := checkSchema(meta.FeatureNames, meta.Classes); err != nil {
		return OnnxMeta{}, fmt.Errorf("invalid model meta %s: %w", path, err)
	}
	return meta, nil
}

// OpenOnnxModel initialises the ONNX Runtime environment and creates a session for modelPath.
func OpenOnnxModel(modelPath, metaPath, libraryPath string) (*OnnxModel, error) {
	meta, err := loadOnnxMeta(metaPath)
	if err != nil {
		return nil, err
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(meta.FeatureNames))))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(meta.Classes))))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(modelPath,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &OnnxModel{meta: meta, input: input, output: output, session: session}, nil
}

func (m *OnnxModel) FeatureNames() []string { return m.meta.FeatureNames }

func (m *OnnxModel) Classes() []string { return m.meta.Classes }

func (m *OnnxModel) PredictProba(_ context.Context, features []float32) ([]float64, error) {
	if err := checkInput(features, len(m.meta.FeatureNames)); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, errors.New("onnx model is closed")
	}
	copy(m.input.GetData(), features)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}

	raw := m.output.GetData()
	probs := make([]float64, len(raw))
	for i, p := range raw {
		probs[i] = float64(p)
	}
	if err := checkOutput(probs, len(m.meta.Classes)); err != nil {
		return nil, err
	}
	return probs, nil
}

// Close releases the session, its tensors and the runtime environment.
func (m *OnnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	errs := []error{m.session.Destroy(), m.input.Destroy(), m.output.Destroy()}
	m.session = nil
	errs = append(errs, ort.DestroyEnvironment())
	return errors.Join(errs...)
}
