package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ResampleFilter defines the resampling algorithm used for image scaling.
type ResampleFilter string

const (
	// NearestNeighborFilter samples the closest source pixel (fastest, blocky).
	NearestNeighborFilter ResampleFilter = "nearest"
	// BilinearFilter uses bilinear interpolation (fast, good quality).
	BilinearFilter ResampleFilter = "bilinear"
	// BicubicFilter uses bicubic interpolation (slower, better quality).
	BicubicFilter ResampleFilter = "bicubic"
	// LanczosFilter uses Lanczos resampling with a=3 (slowest, best quality).
	LanczosFilter ResampleFilter = "lanczos"
	// MitchellNetravaliFilter uses the Mitchell-Netravali cubic filter (balanced).
	MitchellNetravaliFilter ResampleFilter = "mitchell"
)

var interpolations = map[ResampleFilter]resize.InterpolationFunction{
	NearestNeighborFilter:   resize.NearestNeighbor,
	BilinearFilter:          resize.Bilinear,
	BicubicFilter:           resize.Bicubic,
	LanczosFilter:           resize.Lanczos3,
	MitchellNetravaliFilter: resize.MitchellNetravali,
}

// ParseResampleFilter resolves a filter name.
func ParseResampleFilter(name string) (ResampleFilter, error) {
	f := ResampleFilter(name)
	if _, ok := interpolations[f]; !ok {
		return "", errors.Errorf("unknown resample filter %q", name)
	}
	return f, nil
}

// Resize scales img to exactly width x height.
//
// Arguments:
// - img: The source image.
// - width: Target width in pixels.
// - height: Target height in pixels.
// - filter: Resampling filter.
//
// Returns:
// - The resized image.
// - error for non-positive dimensions or an unknown filter.
//
// @example
// resized, err := Resize(src, 512, 512, LanczosFilter)
func Resize(img image.Image, width, height int, filter ResampleFilter) (image.Image, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}
	interp, ok := interpolations[filter]
	if !ok {
		return nil, errors.Errorf("unknown resample filter %q", filter)
	}

	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}
	return resize.Resize(uint(width), uint(height), img, interp), nil
}

// ResizeToWorking scales img to the square working resolution size x size,
// ignoring its aspect ratio.
func ResizeToWorking(img image.Image, size int, filter ResampleFilter) (image.Image, error) {
	return Resize(img, size, size, filter)
}

// AlignToBlocks rounds width and height down to the nearest multiple of
// multiple, so a native resolution image can be tiled without remainder.
//
// Arguments:
// - width: Source width.
// - height: Source height.
// - multiple: Required divisor, typically the largest block size in use.
//
// Returns:
// - The aligned width and height; zero when a side is smaller than multiple.
//
// @example
// w, h := AlignToBlocks(1920, 1080, 16) // 1920, 1072
func AlignToBlocks(width, height, multiple int) (int, int) {
	if multiple <= 1 {
		return width, height
	}
	return width - width%multiple, height - height%multiple
}
