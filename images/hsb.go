package images

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSBImage holds the hue, saturation and brightness planes of an RGB image.
// Hue is in degrees [0, 360), saturation and brightness in [0, 1].
type HSBImage struct {
	Width  int
	Height int
	Hue    []float64
	Sat    []float64
	Bright []float64
}

// SplitHSB converts every pixel of img to HSB.
//
// Arguments:
// - img: The source image; alpha is ignored.
//
// Returns:
// - The HSB planes, row-major, origin at the image bounds' minimum.
//
// @example
// hsb := images.SplitHSB(decoded)
// samples := hsb.Brightness(1000)
func SplitHSB(img image.Image) *HSBImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &HSBImage{
		Width:  w,
		Height: h,
		Hue:    make([]float64, w*h),
		Sat:    make([]float64, w*h),
		Bright: make([]float64, w*h),
	}

	Parallel(h, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				c := colorful.Color{
					R: float64(r>>8) / 255.0,
					G: float64(g>>8) / 255.0,
					B: float64(bl>>8) / 255.0,
				}
				i := y*w + x
				out.Hue[i], out.Sat[i], out.Bright[i] = c.Hsv()
			}
		}
	})

	return out
}

// Brightness scales the brightness plane into integer samples in [0, max],
// truncating toward zero.
func (h *HSBImage) Brightness(max int) []int {
	samples := make([]int, len(h.Bright))
	for i, v := range h.Bright {
		samples[i] = int(Clamp(v*float64(max), 0, float64(max)))
	}
	return samples
}

// Merge rebuilds an RGBA image from the original hue and saturation and a
// replacement brightness plane given as samples in [0, max].
//
// Arguments:
// - samples: New brightness, len Width*Height.
// - max: Top of the sample domain.
//
// Returns:
// - The recombined image.
func (h *HSBImage) Merge(samples []int, max int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, h.Width, h.Height))

	Parallel(h.Height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < h.Width; x++ {
				i := y*h.Width + x
				v := Clamp(float64(samples[i])/float64(max), 0, 1)
				r, g, b := colorful.Hsv(h.Hue[i], h.Sat[i], v).Clamped().RGB255()
				dst.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	})

	return dst
}
