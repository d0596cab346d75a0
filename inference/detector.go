package inference

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"

	imgs "github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/model"
	"github.com/edgeml-ai/go-edgecv/models/postprocess"
	"github.com/edgeml-ai/go-edgecv/models/preprocess"
	"github.com/edgeml-ai/go-edgecv/models/yolov5"
)

// Config configures a detector instance.
type Config struct {
	// ModelPath is the path to the YOLOv5 ONNX model file.
	ModelPath string
	// InputSize is the square input side length (default 640).
	InputSize int
	// NumClasses is the model's class count (default 80).
	NumClasses int
	// ConfidenceThreshold filters detections below this confidence level.
	ConfidenceThreshold float32
	// IoUThreshold controls Non-Maximum Suppression overlap.
	IoUThreshold float32
	// InputName and OutputName are the model tensor names.
	InputName  string
	OutputName string
}

// DefaultConfig returns a detector configuration with the standard YOLOv5
// export parameters.
func DefaultConfig() Config {
	return Config{
		InputSize:           640,
		NumClasses:          80,
		ConfidenceThreshold: 0.25,
		IoUThreshold:        0.45,
		InputName:           "images",
		OutputName:          "output",
	}
}

// Detector runs the full preprocess/infer/postprocess pipeline for a YOLOv5
// model. The underlying session owns fixed tensors, so a Detector serializes
// its runs; the pre/post stages themselves are pure.
type Detector struct {
	model   *yolov5.YOLOv5
	session *Session
	config  Config

	mu sync.Mutex
}

// candidateCount returns the number of boxes a YOLOv5 export emits for a
// square input: three anchors per cell over the 8, 16 and 32 stride grids.
func candidateCount(size int) int {
	s8 := size / 8
	s16 := size / 16
	s32 := size / 32
	return 3 * (s8*s8 + s16*s16 + s32*s32)
}

// NewDetector loads the model and prepares a detection session.
//
// Arguments:
//   - cfg: The detector configuration; zero fields take DefaultConfig values.
//
// Returns:
//   - *Detector: The ready detector.
//   - error: An error if the model or session cannot be created.
func NewDetector(cfg Config) (*Detector, error) {
	def := DefaultConfig()
	if cfg.InputSize == 0 {
		cfg.InputSize = def.InputSize
	}
	if cfg.NumClasses == 0 {
		cfg.NumClasses = def.NumClasses
	}
	if cfg.InputName == "" {
		cfg.InputName = def.InputName
	}
	if cfg.OutputName == "" {
		cfg.OutputName = def.OutputName
	}

	// The 8/16/32 stride grids only tile evenly when the input side is a
	// multiple of 32; other sizes produce a candidate count no export emits.
	if cfg.InputSize <= 0 || cfg.InputSize%32 != 0 {
		return nil, errors.Wrapf(imgs.ErrInvalidInput,
			"input size must be a positive multiple of 32, got %d", cfg.InputSize)
	}

	m, err := yolov5.NewModel(model.NewModelArgs{
		Name:       model.ModelNameYOLOv5,
		Path:       cfg.ModelPath,
		InputSize:  cfg.InputSize,
		NumClasses: cfg.NumClasses,
	})
	if err != nil {
		return nil, err
	}

	size := int64(cfg.InputSize)
	session, err := NewSession(
		cfg.ModelPath,
		cfg.InputName,
		cfg.OutputName,
		[]int64{1, 3, size, size},
		[]int64{1, int64(candidateCount(cfg.InputSize)), int64(5 + cfg.NumClasses)},
	)
	if err != nil {
		return nil, err
	}

	return &Detector{model: m, session: session, config: cfg}, nil
}

// Predict runs detection on a decoded image and returns the final
// detections in original image coordinates.
//
// Arguments:
//   - ctx: Checked before the (non-interruptible) inference run starts.
//   - img: The image to detect objects in.
//
// Returns:
//   - The surviving detections, descending by confidence.
//   - error: Preprocessing, inference or postprocessing failure.
func (d *Detector) Predict(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta, err := d.model.Preprocessor().PreprocessDecoded(img)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dst := d.session.Input.GetData()
	if len(dst) != len(meta.Data) {
		return nil, errors.Wrapf(imgs.ErrInvalidInput,
			"input tensor holds %d floats, preprocessor produced %d", len(dst), len(meta.Data))
	}
	copy(dst, meta.Data)

	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "model inference failed")
	}

	return d.model.PostProcess(
		d.session.Output.GetData(),
		meta,
		d.config.ConfidenceThreshold,
		d.config.IoUThreshold,
	)
}

// PredictFrame runs detection on a decoded frame through the direct tensor
// fill fast path. The frame is resized straight into the fixed input tensor
// with PrepareInput, skipping the allocating preprocessor, which suits
// streaming sources producing many frames per second.
//
// Arguments:
//   - ctx: Checked before the (non-interruptible) inference run starts.
//   - img: The decoded frame.
//
// Returns:
//   - The surviving detections, descending by confidence.
//   - error: Tensor fill, inference or postprocessing failure.
func (d *Detector) PredictFrame(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.Wrapf(imgs.ErrInvalidInput,
			"frame has zero extent: %dx%d", bounds.Dx(), bounds.Dy())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := PrepareInput(img, d.session.Input, d.config.InputSize); err != nil {
		return nil, err
	}
	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "model inference failed")
	}

	// PrepareInput uses a direct resize, so the transform inverts with
	// per-axis scale factors and no padding.
	meta := &preprocess.Result{
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		ScaleX:         float64(d.config.InputSize) / float64(bounds.Dx()),
		ScaleY:         float64(d.config.InputSize) / float64(bounds.Dy()),
	}
	return d.model.PostProcess(
		d.session.Output.GetData(),
		meta,
		d.config.ConfidenceThreshold,
		d.config.IoUThreshold,
	)
}

// Close releases the session resources.
func (d *Detector) Close() {
	d.session.Close()
}
