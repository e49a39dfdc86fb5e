package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHSB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 51, G: 51, B: 51, A: 255})
	img.Set(2, 0, color.RGBA{A: 255})

	hsb := SplitHSB(img)
	require.Equal(t, 3, hsb.Width)
	require.Equal(t, 1, hsb.Height)

	assert.InDelta(t, 0.0, hsb.Hue[0], 1e-9)
	assert.InDelta(t, 1.0, hsb.Sat[0], 1e-9)
	assert.InDelta(t, 1.0, hsb.Bright[0], 1e-9)
	assert.InDelta(t, 0.0, hsb.Sat[1], 1e-9)
	assert.InDelta(t, 0.2, hsb.Bright[1], 1e-9)

	assert.Equal(t, []int{1000, 200, 0}, hsb.Brightness(1000))
	assert.Equal(t, []int{255, 51, 0}, hsb.Brightness(255))
}

// TestHSBMergeRoundTrip verifies that merging unmodified brightness restores
// the source colors.
func TestHSBMergeRoundTrip(t *testing.T) {
	src := getTestImage()
	hsb := SplitHSB(src)

	out := hsb.Merge(hsb.Brightness(1000), 1000)
	require.Equal(t, src.Bounds(), out.Bounds())

	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			want := src.At(x, y).(color.RGBA)
			got := out.RGBAAt(x, y)
			assert.InDelta(t, int(want.R), int(got.R), 1, "(%d,%d)", x, y)
			assert.InDelta(t, int(want.G), int(got.G), 1, "(%d,%d)", x, y)
			assert.InDelta(t, int(want.B), int(got.B), 1, "(%d,%d)", x, y)
			assert.Equal(t, uint8(255), got.A)
		}
	}
}

// TestHSBMergeReplacesBrightness ensures hue is kept when brightness changes.
func TestHSBMergeReplacesBrightness(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 200, G: 100, B: 0, A: 255})

	out := SplitHSB(img).Merge([]int{500}, 1000)
	got := out.RGBAAt(0, 0)

	// Hue and saturation survive, brightness halves to 0.5.
	assert.InDelta(t, 128, int(got.R), 1)
	assert.InDelta(t, 64, int(got.G), 1)
	assert.Equal(t, uint8(0), got.B)
}
