package preprocess

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
)

// BatchPreprocess processes multiple images concurrently. Each image is an
// independent call; order of results matches order of inputs.
//
// Arguments:
//   - imgs: Slice of encoded images to preprocess.
//   - maxConcurrency: Maximum number of images processed at once.
//
// Returns:
//   - []*Result: One result per input image.
//   - error: The first preprocessing error encountered, if any.
func (p *Preprocessor) BatchPreprocess(imgs []*images.Image, maxConcurrency int) ([]*Result, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	results := make([]*Result, len(imgs))
	errs := make([]error, len(imgs))

	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, img := range imgs {
		wg.Add(1)
		go func(idx int, img *images.Image) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := p.Preprocess(img)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "failed to preprocess image %d", idx)
				return
			}
			results[idx] = result
		}(i, img)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
