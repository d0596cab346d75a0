// Package models - registry for models.
package models

import (
	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/model"
	"github.com/edgeml-ai/go-edgecv/models/resnet"
	"github.com/edgeml-ai/go-edgecv/models/yolov5"
)

// NewModel creates a new model instance based on the specified model name,
// routing to the model-specific constructors.
//
// Arguments:
//   - args: Configuration parameters specifying the model type and location.
//
// Returns:
//   - model.Model: A configured model instance.
//   - error: An error if the model name is unsupported or validation fails.
func NewModel(args model.NewModelArgs) (model.Model, error) {
	switch args.Name {
	case model.ModelNameYOLOv5:
		return yolov5.NewModel(args)
	case model.ModelNameResNet18:
		return resnet.NewModel(args)
	default:
		return nil, errors.Wrapf(images.ErrInvalidInput, "unsupported model name: %s", args.Name)
	}
}
