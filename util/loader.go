// Package util - Filesystem helpers for feeding images into the pipeline.
package util

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/edgeml-ai/go-edgecv/images"
)

// ImageFile is an image read from disk, ready for preprocessing.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Image carries the encoded bytes, detected format and pixel dimensions.
	Image images.Image
}

// LoadDirectoryImageFiles reads all image files from a directory, sorted by
// file name. Non-image files and subdirectories are skipped. Dimensions are
// read from each file's header so the loaded images pass preprocessing
// validation as-is.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: One entry per image file found.
//   - error: Error if the directory or a file cannot be read, or a file's
//     image header cannot be decoded.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var loaded []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		var format images.ImageFormat
		switch strings.ToLower(filepath.Ext(file.Name())) {
		case ".jpg", ".jpeg":
			format = images.FormatJPEG
		case ".png":
			format = images.FormatPNG
		default:
			continue
		}

		path := filepath.Join(dir, file.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, readErr
		}

		cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(data))
		if cfgErr != nil {
			return nil, errors.Wrapf(cfgErr, "failed to read image header of %s", path)
		}

		loaded = append(loaded, ImageFile{
			Path: path,
			Image: images.Image{
				Format: format,
				Data:   data,
				Width:  cfg.Width,
				Height: cfg.Height,
			},
		})
	}

	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Path < loaded[j].Path
	})

	return loaded, nil
}
