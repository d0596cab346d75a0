package yolov5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeml-ai/go-edgecv/images"
	"github.com/edgeml-ai/go-edgecv/models/model"
	"github.com/edgeml-ai/go-edgecv/models/preprocess"
)

// testNumClasses keeps the raw rows small enough to write by hand.
const testNumClasses = 3

func newTestModel(t *testing.T) *YOLOv5 {
	t.Helper()
	m, err := NewModel(model.NewModelArgs{NumClasses: testNumClasses})
	require.NoError(t, err, "Model creation should succeed")
	return m
}

// candidate builds one raw output row: cx, cy, w, h, objectness and one score
// per class.
func candidate(cx, cy, w, h, objectness float32, classScores ...float32) []float32 {
	row := []float32{cx, cy, w, h, objectness}
	return append(row, classScores...)
}

// identityMeta reports a source image already at model resolution, so box
// coordinates pass through unchanged.
func identityMeta(width, height int) *preprocess.Result {
	return &preprocess.Result{
		OriginalWidth:  width,
		OriginalHeight: height,
		ScaleX:         1,
		ScaleY:         1,
	}
}

// TestPostProcessSingleDetection validates confidence computation and the
// center-to-corner box conversion for a single candidate.
//
// This test ensures that a candidate's confidence is objectness times its
// best class score, that the winning class index is reported, and that the
// center/size box is converted to corner form.
//
// Arguments:
//   - t: Testing context for assertions and error reporting.
func TestPostProcessSingleDetection(t *testing.T) {
	m := newTestModel(t)

	// obj 0.9, best class 2 at 1.0 -> confidence 0.9
	output := candidate(320, 320, 100, 50, 0.9, 0.1, 0.2, 1.0)

	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, 0.45)
	require.NoError(t, err, "Valid output should postprocess without error")
	require.Len(t, results, 1, "One candidate above threshold should yield one detection")

	det := results[0]
	assert.InDelta(t, 0.9, det.Score, 1e-6, "Confidence should be objectness times best class score")
	assert.Equal(t, 2, det.Class, "The best-scoring class should be reported")
	assert.InDelta(t, 270, det.Box.X1, 1e-3, "X1 should be cx - w/2")
	assert.InDelta(t, 295, det.Box.Y1, 1e-3, "Y1 should be cy - h/2")
	assert.InDelta(t, 370, det.Box.X2, 1e-3, "X2 should be cx + w/2")
	assert.InDelta(t, 345, det.Box.Y2, 1e-3, "Y2 should be cy + h/2")
}

// TestPostProcessSuppressesOverlap validates that of two heavily overlapping
// same-class candidates only the higher-confidence one survives.
func TestPostProcessSuppressesOverlap(t *testing.T) {
	m := newTestModel(t)

	output := append(
		candidate(320, 320, 100, 100, 0.8, 1.0, 0, 0),
		candidate(325, 320, 100, 100, 0.9, 1.0, 0, 0)...,
	)

	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, 0.45)
	require.NoError(t, err)
	require.Len(t, results, 1, "Heavily overlapping same-class boxes should collapse to one")
	assert.InDelta(t, 0.9, results[0].Score, 1e-6, "The higher-confidence box should survive")
}

// TestPostProcessKeepsDifferentClasses validates that class-aware suppression
// keeps overlapping boxes of different classes.
func TestPostProcessKeepsDifferentClasses(t *testing.T) {
	m := newTestModel(t)

	output := append(
		candidate(320, 320, 100, 100, 0.9, 1.0, 0, 0),
		candidate(320, 320, 100, 100, 0.8, 0, 1.0, 0)...,
	)

	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, 0.45)
	require.NoError(t, err)
	require.Len(t, results, 2, "Different classes should never suppress each other")
	assert.Equal(t, 0, results[0].Class)
	assert.Equal(t, 1, results[1].Class)
}

// TestPostProcessEmptyResult validates that an output with no candidate above
// the threshold yields an empty result, not an error.
func TestPostProcessEmptyResult(t *testing.T) {
	m := newTestModel(t)

	output := append(
		candidate(320, 320, 100, 100, 0.1, 0.5, 0, 0),
		candidate(100, 100, 50, 50, 0.2, 0.3, 0, 0)...,
	)

	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, 0.45)
	require.NoError(t, err, "No detections is not an error condition")
	require.NotNil(t, results, "Result should be an empty slice, not nil")
	assert.Len(t, results, 0, "No candidate clears the threshold")
}

// TestPostProcessRescalesPerAxis validates the inversion of a direct
// (non-letterboxed) resize with independent per-axis scale factors.
//
// A 608x405 source resized to 640x640 stretches each axis by a different
// factor, so the box must be rescaled per axis back into source pixels.
//
// Arguments:
//   - t: Testing context for assertions and error reporting.
func TestPostProcessRescalesPerAxis(t *testing.T) {
	m := newTestModel(t)

	meta := &preprocess.Result{
		OriginalWidth:  608,
		OriginalHeight: 405,
		ScaleX:         640.0 / 608.0,
		ScaleY:         640.0 / 405.0,
	}

	// Box spanning 160..480 x 160..480 in resized coordinates
	output := candidate(320, 320, 320, 320, 0.9, 1.0, 0, 0)

	results, err := m.PostProcess(output, meta, 0.25, 0.45)
	require.NoError(t, err)
	require.Len(t, results, 1)

	box := results[0].Box
	assert.InDelta(t, 160.0*608.0/640.0, box.X1, 0.1, "X1 should be rescaled by the X factor")
	assert.InDelta(t, 480.0*608.0/640.0, box.X2, 0.1, "X2 should be rescaled by the X factor")
	assert.InDelta(t, 160.0*405.0/640.0, box.Y1, 0.1, "Y1 should be rescaled by the Y factor")
	assert.InDelta(t, 480.0*405.0/640.0, box.Y2, 0.1, "Y2 should be rescaled by the Y factor")
}

// TestPostProcessInvertsLetterbox validates padding removal for letterboxed
// inputs.
func TestPostProcessInvertsLetterbox(t *testing.T) {
	m := newTestModel(t)

	// 400x200 source letterboxed into 640x640: uniform scale 1.6, 160 pixels
	// of vertical padding.
	meta := &preprocess.Result{
		OriginalWidth:  400,
		OriginalHeight: 200,
		ScaleX:         1.6,
		ScaleY:         1.6,
		PadTop:         160,
	}

	// Box centered at (320, 320) in padded coordinates, 160x160
	output := candidate(320, 320, 160, 160, 0.9, 1.0, 0, 0)

	results, err := m.PostProcess(output, meta, 0.25, 0.45)
	require.NoError(t, err)
	require.Len(t, results, 1)

	box := results[0].Box
	assert.InDelta(t, (240.0-0.0)/1.6, box.X1, 0.1, "X1 should only be unscaled")
	assert.InDelta(t, (240.0-160.0)/1.6, box.Y1, 0.1, "Y1 should have the pad removed before unscaling")
	assert.InDelta(t, (400.0-0.0)/1.6, box.X2, 0.1)
	assert.InDelta(t, (400.0-160.0)/1.6, box.Y2, 0.1)
}

// TestPostProcessClipsToBounds validates that boxes extending past the image
// edge are clipped to the original dimensions.
func TestPostProcessClipsToBounds(t *testing.T) {
	m := newTestModel(t)

	// Box hanging past the right and bottom edges
	output := candidate(620, 620, 100, 100, 0.9, 1.0, 0, 0)

	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, 0.45)
	require.NoError(t, err)
	require.Len(t, results, 1)

	box := results[0].Box
	assert.InDelta(t, 570, box.X1, 1e-3)
	assert.InDelta(t, 640, box.X2, 1e-3, "X2 should be clipped to the image width")
	assert.InDelta(t, 640, box.Y2, 1e-3, "Y2 should be clipped to the image height")
}

// TestPostProcessDropsDegenerateBoxes validates that boxes entirely outside
// the image clip to zero area and are discarded.
func TestPostProcessDropsDegenerateBoxes(t *testing.T) {
	m := newTestModel(t)

	// Entirely past the right edge
	output := candidate(800, 320, 50, 50, 0.9, 1.0, 0, 0)

	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, 0.45)
	require.NoError(t, err)
	assert.Len(t, results, 0, "Boxes fully outside the image should be dropped")
}

// TestPostProcessValidation validates the rejection of malformed arguments.
//
// This test ensures that out-of-range thresholds, missing metadata and output
// lengths inconsistent with the row layout are all rejected with errors
// wrapping the shared invalid-input sentinel.
//
// Arguments:
//   - t: Testing context for assertions and error reporting.
func TestPostProcessValidation(t *testing.T) {
	m := newTestModel(t)
	validOutput := candidate(320, 320, 100, 100, 0.9, 1.0, 0, 0)
	validMeta := identityMeta(640, 640)

	testCases := []struct {
		name          string
		output        []float32
		meta          *preprocess.Result
		confThreshold float32
		iouThreshold  float32
		errorMsg      string
	}{
		{
			name:          "Negative confidence threshold",
			output:        validOutput,
			meta:          validMeta,
			confThreshold: -0.1,
			iouThreshold:  0.45,
			errorMsg:      "confidence threshold",
		},
		{
			name:          "Confidence threshold above one",
			output:        validOutput,
			meta:          validMeta,
			confThreshold: 1.5,
			iouThreshold:  0.45,
			errorMsg:      "confidence threshold",
		},
		{
			name:          "IoU threshold above one",
			output:        validOutput,
			meta:          validMeta,
			confThreshold: 0.25,
			iouThreshold:  1.1,
			errorMsg:      "iou threshold",
		},
		{
			name:          "Missing metadata",
			output:        validOutput,
			meta:          nil,
			confThreshold: 0.25,
			iouThreshold:  0.45,
			errorMsg:      "missing preprocessing metadata",
		},
		{
			name:          "Non-positive scale factors",
			output:        validOutput,
			meta:          &preprocess.Result{OriginalWidth: 640, OriginalHeight: 640},
			confThreshold: 0.25,
			iouThreshold:  0.45,
			errorMsg:      "non-positive scale factors",
		},
		{
			name:          "Truncated output",
			output:        validOutput[:len(validOutput)-1],
			meta:          validMeta,
			confThreshold: 0.25,
			iouThreshold:  0.45,
			errorMsg:      "not a multiple of row size",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := m.PostProcess(tc.output, tc.meta, tc.confThreshold, tc.iouThreshold)
			assert.Error(t, err, "Should return error for invalid input")
			assert.ErrorIs(t, err, images.ErrInvalidInput, "Error should wrap the invalid-input sentinel")
			assert.Contains(t, err.Error(), tc.errorMsg, "Error message should contain expected text")
			assert.Nil(t, results, "Should not return detections on error")
		})
	}
}

// TestPostProcessIdempotency validates that postprocessing is a pure function
// of its inputs.
func TestPostProcessIdempotency(t *testing.T) {
	m := newTestModel(t)

	output := append(
		candidate(320, 320, 100, 100, 0.8, 1.0, 0, 0),
		append(
			candidate(325, 320, 100, 100, 0.9, 1.0, 0, 0),
			candidate(100, 100, 50, 50, 0.7, 0, 1.0, 0)...,
		)...,
	)
	meta := identityMeta(640, 640)

	first, err := m.PostProcess(output, meta, 0.25, 0.45)
	require.NoError(t, err)

	second, err := m.PostProcess(output, meta, 0.25, 0.45)
	require.NoError(t, err)

	assert.Equal(t, first, second, "Identical inputs should produce identical detections")
}

// TestPostProcessPairwiseIoUBound validates the suppression invariant: no two
// surviving same-class boxes overlap by more than the IoU threshold.
func TestPostProcessPairwiseIoUBound(t *testing.T) {
	m := newTestModel(t)

	var output []float32
	// A cluster of shifted same-class boxes plus a distant one
	for _, cx := range []float32{300, 310, 320, 330, 500} {
		output = append(output, candidate(cx, 320, 100, 100, 0.9, 1.0, 0, 0)...)
	}

	iouThreshold := float32(0.45)
	results, err := m.PostProcess(output, identityMeta(640, 640), 0.25, iouThreshold)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if results[i].Class != results[j].Class {
				continue
			}
			iou := images.CalculateIoU(results[i].Box, results[j].Box)
			assert.LessOrEqual(t, iou, iouThreshold,
				"Surviving same-class boxes %d and %d should not exceed the IoU threshold", i, j)
		}
	}
}

// TestNewModelDefaults validates the default input size and class count.
func TestNewModelDefaults(t *testing.T) {
	m, err := NewModel(model.NewModelArgs{})
	require.NoError(t, err)
	assert.Equal(t, DefaultInputSize, m.Options().InputSize, "Zero input size should default to 640")

	_, err = NewModel(model.NewModelArgs{InputSize: -1})
	assert.ErrorIs(t, err, images.ErrInvalidInput, "Negative input size should be rejected")

	_, err = NewModel(model.NewModelArgs{NumClasses: -1})
	assert.ErrorIs(t, err, images.ErrInvalidInput, "Negative class count should be rejected")
}
