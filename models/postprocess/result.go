// Package postprocess - Postprocessing utilities for detection models.
package postprocess

import "github.com/edgeml-ai/go-edgecv/images"

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result, in original image pixel coordinates.
	Box images.Rect
	// The confidence score of the result.
	Score float32
	// The predicted class index of the result.
	Class int
}

// Split separates detections into parallel slices of boxes, scores and
// class ids, the shape callers consuming columnar output expect.
//
// Arguments:
//   - results: The detections to split.
//
// Returns:
//   - []images.Rect: The bounding boxes.
//   - []float32: The confidence scores.
//   - []int: The class ids.
func Split(results []Result) ([]images.Rect, []float32, []int) {
	boxes := make([]images.Rect, len(results))
	scores := make([]float32, len(results))
	classes := make([]int, len(results))
	for i, r := range results {
		boxes[i] = r.Box
		scores[i] = r.Score
		classes[i] = r.Class
	}
	return boxes, scores, classes
}
