package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraySamples(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(2, 0, color.RGBA{G: 255, A: 255})
	img.Set(3, 0, color.RGBA{B: 255, A: 255})

	samples := GraySamples(img, 1000)
	require.Len(t, samples, 4)
	assert.Equal(t, 0, samples[0])
	assert.Equal(t, 1000, samples[1])
	assert.InDelta(t, 715, samples[2], 1)
	assert.InDelta(t, 72, samples[3], 1)
}

func TestGrayImage(t *testing.T) {
	gray := GrayImage([]int{0, 500, 1000, 250}, 2, 2, 1000)

	assert.Equal(t, image.Rect(0, 0, 2, 2), gray.Bounds())
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(128), gray.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 1).Y)
	assert.Equal(t, uint8(64), gray.GrayAt(1, 1).Y)
}
