// Package images - Image and bounding box primitives.
package images

import "github.com/pkg/errors"

// ErrInvalidInput is returned for malformed images, out-of-range thresholds
// and inconsistent tensor shapes anywhere in the pipeline. Callers can match
// it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Rect is a lightweight axis-aligned bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the box, or 0 for a degenerate box.
func (r Rect) Area() float32 {
	if r.X2 <= r.X1 || r.Y2 <= r.Y1 {
		return 0
	}
	return (r.X2 - r.X1) * (r.Y2 - r.Y1)
}

// Empty reports whether the box covers no pixels.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Clip constrains the box to the [0,width]x[0,height] pixel bounds.
func (r Rect) Clip(width, height float32) Rect {
	if r.X1 < 0 {
		r.X1 = 0
	}
	if r.Y1 < 0 {
		r.Y1 = 0
	}
	if r.X2 > width {
		r.X2 = width
	}
	if r.Y2 > height {
		r.Y2 = height
	}
	return r
}

// CalculateIoU computes the Intersection over Union of two boxes.
//
// IoU = Area of Intersection / Area of Union, a value in [0, 1]:
// 1.0 means the boxes coincide exactly, 0.0 means they do not overlap
// at all. Non-Maximum Suppression uses it to decide whether two
// detections describe the same object.
//
// The intersection's top-left corner is the maximum of the two top-left
// corners and its bottom-right corner is the minimum of the two
// bottom-right corners; a zero or negative extent means no overlap. The
// union follows from inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: The IoU score in [0, 1].
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
