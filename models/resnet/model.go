// Package resnet - ResNet18 classification model.
package resnet

import (
	"github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/model"
	"github.com/edgeml-ai/go-edgecv/models/preprocess"
)

// ResNet18 is the instance of the ResNet18 model.
type ResNet18 struct {
	path string
	pre  *preprocess.Preprocessor
}

// NewModel creates a new ResNet18 model.
func NewModel(args model.NewModelArgs) (*ResNet18, error) {
	pre, err := preprocess.NewPreprocessor(preprocess.ResNet18Config())
	if err != nil {
		return nil, err
	}
	return &ResNet18{path: args.Path, pre: pre}, nil
}

// Options returns the base description of the model.
func (m *ResNet18) Options() model.BaseModel {
	return model.BaseModel{
		Name:      model.ModelNameResNet18,
		Family:    model.ModelFamilyImageNet,
		Path:      m.path,
		InputSize: 224,
	}
}

// PreProcess converts an encoded image into the model's ImageNet-normalized
// input tensor.
func (m *ResNet18) PreProcess(img *images.Image) (*preprocess.Result, error) {
	return m.pre.Preprocess(img)
}

// Preprocessor exposes the model's configured preprocessor.
func (m *ResNet18) Preprocessor() *preprocess.Preprocessor {
	return m.pre
}
