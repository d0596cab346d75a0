// Package inference - Thin session layer over the ONNX Runtime.
package inference

import (
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

var initOnce sync.Once

// InitRuntime initializes the shared ONNX Runtime environment. Safe to call
// more than once; only the first call takes effect. An empty libPath leaves
// the library default in place.
func InitRuntime(libPath string) error {
	var err error
	initOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		err = ort.InitializeEnvironment()
	})
	return err
}

// Session represents a model session from the onnxruntime with fixed-shape
// input and output tensors.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// NewSession loads an ONNX model and allocates its input and output tensors.
//
// Arguments:
//   - modelPath: Path to the .onnx model file.
//   - inputName, outputName: The model's tensor names.
//   - inputShape, outputShape: The fixed tensor shapes (batch first).
//
// Returns:
//   - *Session: The ready-to-run session.
//   - error: An error if tensor allocation or session creation fails.
func NewSession(modelPath, inputName, outputName string, inputShape, outputShape []int64) (*Session, error) {
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(inputShape...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(outputShape...))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "failed to create output tensor")
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrapf(err, "failed to create session for %s", modelPath)
	}

	return &Session{
		Session: session,
		Input:   input,
		Output:  output,
	}, nil
}

// Run executes the model on the current input tensor contents.
func (s *Session) Run() error {
	return s.Session.Run()
}

// Close releases the resources associated with the Session.
func (s *Session) Close() {
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	if s.Session != nil {
		s.Session.Destroy()
		s.Session = nil
	}
}
