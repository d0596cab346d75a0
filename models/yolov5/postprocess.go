// Package yolov5 - postprocess YOLOv5 model outputs.
package yolov5

import (
	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/postprocess"
	"github.com/edgeml-ai/go-edgecv/models/preprocess"
)

// PostProcess transforms raw YOLOv5 output into final detections by:
//   - Computing each candidate's confidence as objectness times its best
//     per-class score and dropping candidates below the threshold.
//   - Converting surviving boxes from center/size form in resized-image
//     coordinates to corner form in original-image pixels, inverting the
//     resize transform recorded in meta, and clipping to image bounds.
//   - Applying per-class greedy Non-Maximum Suppression.
//
// The raw output is laid out row-major, one candidate per row of
// 5+NumClasses values: cx, cy, w, h, objectness, then the class scores.
//
// Arguments:
//   - output: The raw detection tensor produced by the model.
//   - meta: The preprocessing metadata of the inference call.
//   - confThreshold: Minimum final confidence in [0, 1].
//   - iouThreshold: IoU above which same-class boxes are suppressed, in [0, 1].
//
// Returns:
//   - The surviving detections, descending by confidence. Empty when no
//     candidate clears the threshold.
//   - An error wrapping images.ErrInvalidInput for out-of-range thresholds
//     or an output length inconsistent with the detection layout.
func (m *YOLOv5) PostProcess(
	output []float32,
	meta *preprocess.Result,
	confThreshold, iouThreshold float32,
) ([]postprocess.Result, error) {
	if confThreshold < 0 || confThreshold > 1 {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"confidence threshold %f outside [0,1]", confThreshold)
	}
	if iouThreshold < 0 || iouThreshold > 1 {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"iou threshold %f outside [0,1]", iouThreshold)
	}
	if meta == nil {
		return nil, errors.Wrap(images.ErrInvalidInput, "missing preprocessing metadata")
	}
	if meta.ScaleX <= 0 || meta.ScaleY <= 0 {
		return nil, errors.Wrap(images.ErrInvalidInput, "non-positive scale factors")
	}

	rowSize := 5 + m.options.NumClasses
	if len(output)%rowSize != 0 {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"output length %d is not a multiple of row size %d", len(output), rowSize)
	}

	numRows := len(output) / rowSize
	results := make([]postprocess.Result, 0, numRows)

	origWidth := float32(meta.OriginalWidth)
	origHeight := float32(meta.OriginalHeight)
	padLeft := float32(meta.PadLeft)
	padTop := float32(meta.PadTop)
	scaleX := float32(meta.ScaleX)
	scaleY := float32(meta.ScaleY)

	for i := 0; i < numRows; i++ {
		offset := i * rowSize
		objectness := output[offset+4]

		classID := 0
		maxScore := float32(0)
		for j := 5; j < rowSize; j++ {
			if score := output[offset+j]; score > maxScore {
				maxScore = score
				classID = j - 5
			}
		}

		confidence := objectness * maxScore
		if confidence < confThreshold {
			continue
		}

		cx := output[offset+0]
		cy := output[offset+1]
		w := output[offset+2]
		h := output[offset+3]

		// Invert the resize transform: undo letterbox padding, then divide
		// by the per-axis scale back into original pixels.
		box := images.Rect{
			X1: (cx - w/2 - padLeft) / scaleX,
			Y1: (cy - h/2 - padTop) / scaleY,
			X2: (cx + w/2 - padLeft) / scaleX,
			Y2: (cy + h/2 - padTop) / scaleY,
		}.Clip(origWidth, origHeight)

		if box.Empty() {
			continue
		}

		results = append(results, postprocess.Result{
			Box:   box,
			Score: confidence,
			Class: classID,
		})
	}

	nms := postprocess.ApplyGreedyNMS(results, &postprocess.NMSConfig{
		IoUThreshold: iouThreshold,
		ClassAware:   true,
	})
	if nms == nil {
		return []postprocess.Result{}, nil
	}
	return nms, nil
}
