package policy

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const actionClasses = 3

var ortInit sync.Once

func initializeORT() error {
	var err error
	ortInit.Do(func() {
		libPath := "/usr/lib/libonnxruntime.so"
		switch runtime.GOOS {
		case "windows":
			libPath = "onnxruntime.dll"
		case "darwin":
			libPath = "libonnxruntime.dylib"
		}
		ort.SetSharedLibraryPath(libPath)
		err = ort.InitializeEnvironment()
	})
	return err
}

// ONNXPolicy runs the exported trading policy through onnxruntime with
// preallocated input/output tensors. Inference is synchronous and must only
// be called from the single decision-loop goroutine.
type ONNXPolicy struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	obsSize int
}

// NewONNXPolicy loads the model artifact and builds the inference session.
// A missing file is ErrArtifactMissing so callers can abort startup.
func NewONNXPolicy(modelPath string, obsSize int) (*ONNXPolicy, error) {
	if obsSize <= 0 {
		return nil, fmt.Errorf("observation size must be positive, got %d", obsSize)
	}
	if _, err := os.Stat(modelPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, modelPath)
		}
		return nil, fmt.Errorf("stat model: %w", err)
	}
	if err := initializeORT(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputShape := ort.NewShape(1, int64(obsSize))
	inputTensor, err := ort.NewTensor(inputShape, make([]float32, obsSize))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, actionClasses)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ONNXPolicy{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		obsSize: obsSize,
	}, nil
}

// Predict copies the observation into the input tensor, runs the session,
// and returns the argmax class.
func (p *ONNXPolicy) Predict(obs []float32) (Action, error) {
	if len(obs) != p.obsSize {
		return Hold, fmt.Errorf("observation has %d values, want %d", len(obs), p.obsSize)
	}
	copy(p.input.GetData(), obs)
	if err := p.session.Run(); err != nil {
		return Hold, fmt.Errorf("inference failed: %w", err)
	}

	logits := p.output.GetData()
	best := 0
	for i := 1; i < actionClasses && i < len(logits); i++ {
		if logits[i] > logits[best] {
			best = i
		}
	}
	return Action(best), nil
}

func (p *ONNXPolicy) Name() string { return "short_rl" }

// Close releases the session and tensors.
func (p *ONNXPolicy) Close() error {
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	if p.input != nil {
		p.input.Destroy()
		p.input = nil
	}
	if p.output != nil {
		p.output.Destroy()
		p.output = nil
	}
	return nil
}
