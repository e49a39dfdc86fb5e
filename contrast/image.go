// Package contrast - Intensity image definition consumed and produced by the
// contrast enhancement pipeline.
package contrast

import "github.com/pkg/errors"

const (
	// GrayMax is the top of the intensity domain for 8-bit gray pipelines.
	GrayMax = 255
	// BrightnessMax is the top of the intensity domain for the normalized brightness
	// pipeline, where an HSB brightness in [0, 1] is scaled by 1000.
	BrightnessMax = 1000
	// WorkingSize is the square working resolution the enhancement pipeline was tuned at.
	WorkingSize = 512
)

// Image is a 2-D array of integer intensity samples in [0, Max], stored row-major.
type Image struct {
	// Width is the number of columns.
	Width int `json:"width" yaml:"width"`
	// Height is the number of rows.
	Height int `json:"height" yaml:"height"`
	// Max is the top of the intensity domain (GrayMax or BrightnessMax).
	Max int `json:"max" yaml:"max"`
	// Pix holds the samples, Pix[y*Width+x].
	Pix []int `json:"pix" yaml:"pix"`
}

// NewImage allocates a zeroed image.
//
// Arguments:
//   - width: Number of columns, must be positive.
//   - height: Number of rows, must be positive.
//   - max: Top of the intensity domain, must be positive.
//
// Returns:
//   - *Image: The allocated image.
//   - error: ErrInvalidImage for non-positive dimensions or domain.
//
// @example
// img, err := contrast.NewImage(512, 512, contrast.BrightnessMax)
func NewImage(width, height, max int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "dimensions must be positive, got %dx%d", width, height)
	}
	if max <= 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "intensity max must be positive, got %d", max)
	}
	return &Image{
		Width:  width,
		Height: height,
		Max:    max,
		Pix:    make([]int, width*height),
	}, nil
}

// FromSamples wraps an existing sample slice after validating it.
//
// Arguments:
//   - samples: Row-major samples, len(samples) must equal width*height.
//   - width: Number of columns.
//   - height: Number of rows.
//   - max: Top of the intensity domain.
//
// Returns:
//   - *Image: An image sharing the samples slice.
//   - error: ErrInvalidImage when the shape or sample range is wrong.
func FromSamples(samples []int, width, height, max int) (*Image, error) {
	img := &Image{Width: width, Height: height, Max: max, Pix: samples}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate checks the image shape and that every sample lies in [0, Max].
func (img *Image) Validate() error {
	if img == nil {
		return errors.Wrap(ErrInvalidImage, "image is nil")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.Wrapf(ErrInvalidImage, "dimensions must be positive, got %dx%d", img.Width, img.Height)
	}
	if img.Max <= 0 {
		return errors.Wrapf(ErrInvalidImage, "intensity max must be positive, got %d", img.Max)
	}
	if len(img.Pix) != img.Width*img.Height {
		return errors.Wrapf(ErrInvalidImage, "expected %d samples, got %d", img.Width*img.Height, len(img.Pix))
	}
	for i, v := range img.Pix {
		if v < 0 || v > img.Max {
			return errors.Wrapf(ErrInvalidImage, "sample %d at (%d,%d) outside [0,%d]",
				v, i%img.Width, i/img.Width, img.Max)
		}
	}
	return nil
}

// At returns the sample at column x, row y.
func (img *Image) At(x, y int) int {
	return img.Pix[y*img.Width+x]
}

// Set stores v at column x, row y.
func (img *Image) Set(x, y, v int) {
	img.Pix[y*img.Width+x] = v
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	pix := make([]int, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Width: img.Width, Height: img.Height, Max: img.Max, Pix: pix}
}
