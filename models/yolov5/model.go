// Package yolov5 - YOLOv5 detection model.
package yolov5

import (
	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/model"
	"github.com/edgeml-ai/go-edgecv/models/preprocess"
)

const (
	// DefaultInputSize is the input side length YOLOv5 is exported with.
	DefaultInputSize = 640
	// DefaultNumClasses is the COCO class count.
	DefaultNumClasses = 80
)

// Options is the options for the YOLOv5 model.
type Options struct {
	Name       model.Name   `json:"name" yaml:"name"`
	Family     model.Family `json:"family" yaml:"family"`
	Path       string       `json:"path" yaml:"path"`
	InputSize  int          `json:"input_size" yaml:"input_size"`
	NumClasses int          `json:"num_classes" yaml:"num_classes"`
}

// YOLOv5 is the instance of the YOLOv5 model.
type YOLOv5 struct {
	options Options
	pre     *preprocess.Preprocessor
}

// NewModel creates a new YOLOv5 model.
//
// Arguments:
//   - args: The arguments for creating a new model. Zero InputSize and
//     NumClasses default to the standard 640 / 80 export.
//
// Returns:
//   - The model.
//   - An error if the arguments are invalid.
func NewModel(args model.NewModelArgs) (*YOLOv5, error) {
	if args.InputSize == 0 {
		args.InputSize = DefaultInputSize
	}
	if args.NumClasses == 0 {
		args.NumClasses = DefaultNumClasses
	}
	if args.InputSize < 0 {
		return nil, errors.Wrapf(images.ErrInvalidInput, "input size must be positive, got %d", args.InputSize)
	}
	if args.NumClasses < 0 {
		return nil, errors.Wrapf(images.ErrInvalidInput, "class count must be positive, got %d", args.NumClasses)
	}

	pre, err := preprocess.NewPreprocessor(preprocess.YOLOv5Config(args.InputSize))
	if err != nil {
		return nil, err
	}

	return &YOLOv5{
		options: Options{
			Name:       model.ModelNameYOLOv5,
			Family:     model.ModelFamilyYOLO,
			Path:       args.Path,
			InputSize:  args.InputSize,
			NumClasses: args.NumClasses,
		},
		pre: pre,
	}, nil
}

// Options returns the base description of the model.
func (m *YOLOv5) Options() model.BaseModel {
	return model.BaseModel{
		Name:      m.options.Name,
		Family:    m.options.Family,
		Path:      m.options.Path,
		InputSize: m.options.InputSize,
	}
}

// PreProcess converts an encoded image into the model's input tensor.
//
// Arguments:
//   - img: The encoded input image.
//
// Returns:
//   - The [1,3,S,S] tensor plus resize metadata for PostProcess.
//   - An error wrapping images.ErrInvalidInput for malformed images.
func (m *YOLOv5) PreProcess(img *images.Image) (*preprocess.Result, error) {
	return m.pre.Preprocess(img)
}

// Preprocessor exposes the model's configured preprocessor.
func (m *YOLOv5) Preprocessor() *preprocess.Preprocessor {
	return m.pre
}
