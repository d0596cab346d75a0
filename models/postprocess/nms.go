// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/edgeml-ai/go-edgecv/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which a lower-confidence box is
	// suppressed.
	IoUThreshold float32
	// ClassAware if true suppresses only within the same class.
	ClassAware bool
}

// ApplyGreedyNMS performs greedy Non-Maximum Suppression.
//
// Detections are ordered by descending confidence (stable, so candidates
// with equal confidence keep their original relative order). The
// highest-confidence remaining detection is emitted and every remaining
// detection overlapping it by more than the IoU threshold is discarded;
// with ClassAware set, only detections of the same class are considered
// overlapping.
//
// Arguments:
//   - detections: Candidate detections in any order.
//   - config: NMS configuration.
//
// Returns:
//   - Filtered detections in descending confidence order. Nil when no
//     detections are provided.
func ApplyGreedyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}

	sorted := make([]Result, n)
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	filtered := make([]Result, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := sorted[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.ClassAware && anchor.Class != sorted[j].Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, sorted[j].Box) > config.IoUThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
