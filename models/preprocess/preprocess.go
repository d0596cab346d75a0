// Package preprocess - Image preprocessing for model inference inputs.
package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
)

// NormalizationType defines how pixel values are normalized.
type NormalizationType int

const (
	// NormalizeNone keeps pixel values as 0-255.
	NormalizeNone NormalizationType = iota
	// NormalizeZeroToOne scales pixel values to [0, 1].
	NormalizeZeroToOne
	// NormalizeStandardize scales to [0, 1] and then applies per-channel
	// mean subtraction and division by the standard deviation.
	NormalizeStandardize
)

// Config defines preprocessing for a specific model.
type Config struct {
	// Name of the model for debugging purposes.
	Name string
	// InputWidth is the expected width of the model input.
	InputWidth int
	// InputHeight is the expected height of the model input.
	InputHeight int
	// InputChannels is the number of channels (1 for grayscale, 3 for RGB).
	InputChannels int
	// Normalization defines how to normalize pixel values.
	Normalization NormalizationType
	// Mean values per channel, on the [0,1] scale (if NormalizeStandardize).
	Mean []float32
	// Std values per channel, on the [0,1] scale (if NormalizeStandardize).
	Std []float32
	// KeepAspectRatio if true, maintains aspect ratio with letterbox padding.
	KeepAspectRatio bool
	// PadColor is the color used for letterbox padding (default black).
	PadColor color.Color
}

// Result contains the preprocessed tensor data and the metadata needed to
// map model output coordinates back onto the original image.
type Result struct {
	// Data is the preprocessed float32 tensor in NCHW layout.
	Data []float32
	// Shape is the tensor shape [1, C, H, W].
	Shape []int64
	// OriginalWidth is the source image width before preprocessing.
	OriginalWidth int
	// OriginalHeight is the source image height before preprocessing.
	OriginalHeight int
	// ScaleX is input width / original width (letterbox: the uniform scale).
	ScaleX float64
	// ScaleY is input height / original height (letterbox: the uniform scale).
	ScaleY float64
	// PadLeft is the left letterbox padding in input pixels.
	PadLeft int
	// PadTop is the top letterbox padding in input pixels.
	PadTop int
}

// Preprocessor converts images into model input tensors. It holds no mutable
// state and is safe for concurrent use.
type Preprocessor struct {
	config Config
}

// NewPreprocessor creates a preprocessor with the given configuration.
//
// Arguments:
//   - config: The model-specific preprocessing configuration.
//
// Returns:
//   - *Preprocessor: A configured preprocessor instance.
//   - error: An error if the configuration is invalid.
func NewPreprocessor(config Config) (*Preprocessor, error) {
	if config.InputWidth <= 0 || config.InputHeight <= 0 {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"target dimensions must be positive, got %dx%d", config.InputWidth, config.InputHeight)
	}
	if config.InputChannels != 1 && config.InputChannels != 3 {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"unsupported channel count %d", config.InputChannels)
	}
	if config.Normalization == NormalizeStandardize {
		if len(config.Mean) != config.InputChannels || len(config.Std) != config.InputChannels {
			return nil, errors.Wrapf(images.ErrInvalidInput,
				"standardization requires %d mean and std values", config.InputChannels)
		}
		for _, std := range config.Std {
			if std <= 0 {
				return nil, errors.Wrap(images.ErrInvalidInput,
					"standard deviation values must be positive")
			}
		}
	}
	if config.PadColor == nil {
		config.PadColor = color.Black
	}
	return &Preprocessor{config: config}, nil
}

// Config returns the preprocessing configuration.
func (p *Preprocessor) Config() Config {
	return p.config
}

// Preprocess decodes an encoded image and converts it into a model input
// tensor. It is a pure function of its arguments: a new tensor is allocated
// on every call and no state is retained.
//
// Arguments:
//   - img: The encoded input image.
//
// Returns:
//   - *Result: The tensor plus the resize metadata needed for postprocessing.
//   - error: An error wrapping images.ErrInvalidInput if the image is malformed.
func (p *Preprocessor) Preprocess(img *images.Image) (*Result, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}

	decoded, err := decodeImage(img)
	if err != nil {
		return nil, errors.Wrap(err, "image decoding failed")
	}

	return p.PreprocessDecoded(decoded)
}

// PreprocessDecoded converts an already-decoded image into a model input
// tensor. See Preprocess.
func (p *Preprocessor) PreprocessDecoded(img image.Image) (*Result, error) {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"image has zero extent: %dx%d", srcWidth, srcHeight)
	}

	resized, scaleX, scaleY, padLeft, padTop := p.resize(img)
	tensor := p.toTensor(resized)
	p.normalize(tensor)

	return &Result{
		Data: tensor,
		Shape: []int64{
			1, int64(p.config.InputChannels),
			int64(p.config.InputHeight), int64(p.config.InputWidth),
		},
		OriginalWidth:  srcWidth,
		OriginalHeight: srcHeight,
		ScaleX:         scaleX,
		ScaleY:         scaleY,
		PadLeft:        padLeft,
		PadTop:         padTop,
	}, nil
}

func validateImage(img *images.Image) error {
	if img == nil {
		return errors.Wrap(images.ErrInvalidInput, "image cannot be nil")
	}
	if len(img.Data) == 0 {
		return errors.Wrap(images.ErrInvalidInput, "image data cannot be empty")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.Wrapf(images.ErrInvalidInput,
			"image dimensions must be positive: %dx%d", img.Width, img.Height)
	}
	return nil
}

func decodeImage(img *images.Image) (image.Image, error) {
	reader := bytes.NewReader(img.Data)
	switch img.Format {
	case images.FormatJPEG:
		return jpeg.Decode(reader)
	case images.FormatPNG:
		return png.Decode(reader)
	default:
		decoded, _, err := image.Decode(reader)
		return decoded, err
	}
}

// resize scales the image to the configured input dimensions, either
// directly (per-axis scale factors) or letterboxed (uniform scale plus
// padding). The returned scale factors map original pixels to input pixels.
func (p *Preprocessor) resize(img image.Image) (image.Image, float64, float64, int, int) {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	scaleX := float64(p.config.InputWidth) / float64(srcWidth)
	scaleY := float64(p.config.InputHeight) / float64(srcHeight)

	if !p.config.KeepAspectRatio {
		resized := imaging.Resize(img, p.config.InputWidth, p.config.InputHeight, imaging.Lanczos)
		return resized, scaleX, scaleY, 0, 0
	}

	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	newWidth := int(float64(srcWidth) * scale)
	newHeight := int(float64(srcHeight) * scale)

	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)

	padLeft := (p.config.InputWidth - newWidth) / 2
	padTop := (p.config.InputHeight - newHeight) / 2

	letterboxed := image.NewRGBA(image.Rect(0, 0, p.config.InputWidth, p.config.InputHeight))
	draw.Draw(letterboxed, letterboxed.Bounds(), &image.Uniform{p.config.PadColor}, image.Point{}, draw.Src)
	draw.Draw(letterboxed, image.Rect(padLeft, padTop, padLeft+newWidth, padTop+newHeight),
		resized, image.Point{}, draw.Over)

	return letterboxed, scale, scale, padLeft, padTop
}

// toTensor converts the resized image into a CHW float32 tensor with a
// leading batch dimension of one. Values are raw 0-255 samples; normalize
// rescales them afterwards.
func (p *Preprocessor) toTensor(img image.Image) []float32 {
	width := p.config.InputWidth
	height := p.config.InputHeight
	channelSize := width * height

	tensor := make([]float32, p.config.InputChannels*channelSize)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			r8 := float32(r >> 8)
			g8 := float32(g >> 8)
			b8 := float32(b >> 8)

			i := y*width + x
			if p.config.InputChannels == 1 {
				tensor[i] = 0.299*r8 + 0.587*g8 + 0.114*b8
			} else {
				tensor[i] = r8
				tensor[channelSize+i] = g8
				tensor[2*channelSize+i] = b8
			}
		}
	}

	return tensor
}

func (p *Preprocessor) normalize(tensor []float32) {
	switch p.config.Normalization {
	case NormalizeZeroToOne:
		for i := range tensor {
			tensor[i] /= 255.0
		}
	case NormalizeStandardize:
		channelSize := p.config.InputWidth * p.config.InputHeight
		for c := 0; c < p.config.InputChannels; c++ {
			mean := p.config.Mean[c]
			std := p.config.Std[c]
			offset := c * channelSize
			for i := 0; i < channelSize; i++ {
				tensor[offset+i] = (tensor[offset+i]/255.0 - mean) / std
			}
		}
	}
}

// YOLOv5Config returns the preprocessing configuration for YOLOv5 detectors.
//
// The default mode is a direct (non-letterboxed) resize to size x size, so
// X and Y carry independent scale factors and postprocessing rescales each
// axis by original/resized.
//
// Arguments:
//   - size: The square input size the model was exported with (e.g. 640).
//
// Returns:
//   - Config: The YOLOv5 preprocessing configuration.
func YOLOv5Config(size int) Config {
	return Config{
		Name:            "yolov5",
		InputWidth:      size,
		InputHeight:     size,
		InputChannels:   3,
		Normalization:   NormalizeZeroToOne,
		KeepAspectRatio: false,
		PadColor:        color.RGBA{114, 114, 114, 255},
	}
}

// ResNet18Config returns the ImageNet preprocessing configuration for
// ResNet18 classifiers: 224x224, scaled to [0,1] and standardized with the
// ImageNet channel statistics.
func ResNet18Config() Config {
	return Config{
		Name:          "resnet18",
		InputWidth:    224,
		InputHeight:   224,
		InputChannels: 3,
		Normalization: NormalizeStandardize,
		Mean:          []float32{0.485, 0.456, 0.406},
		Std:           []float32{0.229, 0.224, 0.225},
	}
}
