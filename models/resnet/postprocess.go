// Package resnet - postprocess ResNet18 classifier outputs.
package resnet

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
)

// Prediction is a single class probability from the classifier.
type Prediction struct {
	// Class is the predicted class index.
	Class int
	// Probability is the softmax probability in [0, 1].
	Probability float32
}

// PostProcess converts raw classifier logits into the top-k class
// probabilities, descending. Ties keep the lower class index first.
//
// Arguments:
//   - logits: The raw output vector, one logit per class.
//   - k: How many predictions to return, 1 <= k <= len(logits).
//
// Returns:
//   - The top-k predictions.
//   - An error wrapping images.ErrInvalidInput for empty logits or a k out
//     of range.
func (m *ResNet18) PostProcess(logits []float32, k int) ([]Prediction, error) {
	if len(logits) == 0 {
		return nil, errors.Wrap(images.ErrInvalidInput, "empty logits")
	}
	if k < 1 || k > len(logits) {
		return nil, errors.Wrapf(images.ErrInvalidInput,
			"k=%d outside [1,%d]", k, len(logits))
	}

	probs := Softmax(logits)

	predictions := make([]Prediction, len(probs))
	for i, p := range probs {
		predictions[i] = Prediction{Class: i, Probability: p}
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})

	return predictions[:k], nil
}

// Softmax normalizes logits into a probability distribution. The max logit
// is subtracted first for numerical stability.
func Softmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	probs := make([]float32, len(logits))
	var sum float32
	for i, l := range logits {
		probs[i] = math32.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
