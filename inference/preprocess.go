package inference

import (
	"image"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nfnt/resize"

	"github.com/edgeml-ai/go-edgecv/images"
)

// PrepareInput fills a detector input tensor directly from a decoded image,
// the fast path for streaming sources that already hold an image.Image.
// The image is resized to size x size (no letterboxing), split into CHW
// channel slabs and scaled to [0,1].
//
// Arguments:
//   - img: The image to prepare.
//   - dst: The destination tensor to populate.
//   - size: The model's square input side length.
//
// Returns:
//   - error: An error if the tensor is too small for the requested size.
func PrepareInput(img image.Image, dst *ort.Tensor[float32], size int) error {
	if size <= 0 {
		return errors.Wrapf(images.ErrInvalidInput, "input size must be positive, got %d", size)
	}
	data := dst.GetData()
	channelSize := size * size
	if len(data) < channelSize*3 {
		return errors.Wrapf(images.ErrInvalidInput,
			"destination tensor only holds %d floats, needs %d", len(data), channelSize*3)
	}
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	// Resize using the Lanczos3 kernel.
	img = resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
