// Package model - Shared definitions for model identities and configuration.
package model

import (
	"github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/preprocess"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyYOLO is the YOLO detector family.
	ModelFamilyYOLO Family = "yolo"
	// ModelFamilyImageNet is the ImageNet classifier family.
	ModelFamilyImageNet Family = "imagenet"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv5 is the name of the YOLOv5 model.
	ModelNameYOLOv5 Name = "yolov5"
	// ModelNameResNet18 is the name of the ResNet18 model.
	ModelNameResNet18 Name = "resnet18"
)

// BaseModel describes a model artifact and its fixed input geometry.
type BaseModel struct {
	Name      Name
	Family    Family
	Path      string
	InputSize int
}

// Model is the common surface of all models. Output decoding is
// model-specific and lives on the concrete types.
type Model interface {
	Options() BaseModel
	PreProcess(img *images.Image) (*preprocess.Result, error)
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name       Name   `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	InputSize  int    `json:"input_size" yaml:"input_size"`
	NumClasses int    `json:"num_classes" yaml:"num_classes"`
}
