package images

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// SamplesToTensor normalises samples in [0, max] to float32 values in [0, 1]
// and wraps them in a [1, height, width] tensor for model preprocessing.
//
// Arguments:
// - samples: Row-major samples, len width*height.
// - width: Number of columns.
// - height: Number of rows.
// - max: Top of the sample domain.
//
// Returns:
// - *tensor.Dense: Float32 tensor backed by a fresh slice.
// - error: If the shape or domain is invalid.
//
// @example
// t, err := images.SamplesToTensor(out.Pix, out.Width, out.Height, out.Max)
func SamplesToTensor(samples []int, width, height, max int) (*tensor.Dense, error) {
	if width <= 0 || height <= 0 || len(samples) != width*height {
		return nil, errors.Errorf("cannot build [1,%d,%d] tensor from %d samples", height, width, len(samples))
	}
	if max <= 0 {
		return nil, errors.Errorf("sample max must be positive, got %d", max)
	}

	data := make([]float32, len(samples))
	inv := 1 / float32(max)
	for i, v := range samples {
		data[i] = math32.Min(math32.Max(float32(v)*inv, 0), 1)
	}

	return tensor.New(
		tensor.WithShape(1, height, width),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(data),
	), nil
}
