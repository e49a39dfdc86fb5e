package images

import (
	"image"
	"image/color"
)

// ITU-R BT.709 luma coefficients.
const (
	redWeight   = 0.2126
	greenWeight = 0.7152
	blueWeight  = 0.0722
)

// GraySamples computes the BT.709 luma of every pixel, rounded into [0, max].
//
// Arguments:
// - img: The source image.
// - max: Top of the sample domain.
//
// Returns:
// - Row-major samples, len Dx*Dy.
//
// @example
// samples := GraySamples(decoded, 255)
func GraySamples(img image.Image, max int) []int {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	samples := make([]int, w*h)

	Parallel(h, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				// RGBA() is 16-bit per channel.
				luma := (float64(r)*redWeight + float64(g)*greenWeight + float64(bl)*blueWeight) / 0xFFFF
				samples[y*w+x] = int(Clamp(luma*float64(max)+0.5, 0, float64(max)))
			}
		}
	})

	return samples
}

// GrayImage renders samples in [0, max] as an 8-bit grayscale image.
func GrayImage(samples []int, width, height, max int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	scale := 255.0 / float64(max)
	for i, v := range samples {
		dst.SetGray(i%width, i/width, color.Gray{Y: uint8(Clamp(float64(v)*scale+0.5, 0, 255))})
	}
	return dst
}
