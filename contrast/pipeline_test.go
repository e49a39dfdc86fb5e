package contrast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransformOutputInRange verifies that every algorithm keeps samples
// within [0, max] and preserves the image shape.
func TestTransformOutputInRange(t *testing.T) {
	for _, algorithm := range Algorithms() {
		t.Run(string(algorithm), func(t *testing.T) {
			max := algorithm.DomainMax()
			img := noise(t, 64, 64, max, 42)
			before := img.Clone()

			pl, err := NewPipeline(DefaultParameters(algorithm))
			require.NoError(t, err)
			res, err := pl.Run(img)
			require.NoError(t, err)

			assert.Equal(t, before, img, "source must not be modified")
			assert.Equal(t, img.Width, res.Image.Width)
			assert.Equal(t, img.Height, res.Image.Height)
			assert.Equal(t, img.Max, res.Image.Max)
			require.NoError(t, res.Image.Validate())

			for i, table := range res.Tables {
				t.Run(fmt.Sprintf("tile %d", i), func(t *testing.T) {
					requireMonotone(t, table, max)
				})
			}
		})
	}
}

func TestTransformNoneIsIdentity(t *testing.T) {
	img := noise(t, 32, 32, GrayMax, 5)

	out, err := Transform(img, DefaultParameters(AlgorithmNone))
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.Pix)
}

// TestSingleTileMatchesGlobalEqualization verifies that a 1x1 grid with a
// clip limit that never triggers reproduces plain HE.
func TestSingleTileMatchesGlobalEqualization(t *testing.T) {
	img := gradient(t, 8, 8, 63)

	he, err := Transform(img, DefaultParameters(AlgorithmHE))
	require.NoError(t, err)
	for i, v := range he.Pix {
		require.Equal(t, i, v, "equalizing a flat histogram is the identity")
	}

	tests := []Parameters{
		{Algorithm: AlgorithmCLAHE, BlockSize: 1, Alpha: 500, Smax: 40},
		{Algorithm: AlgorithmACLAHE, BlockSize: 1, Alpha: 500, P: 40},
		{Algorithm: AlgorithmCLAHE, BlockSize: 1, Alpha: 100, Smax: 1},
	}
	for _, p := range tests {
		t.Run(p.String(), func(t *testing.T) {
			out, err := Transform(img, p)
			require.NoError(t, err)
			assert.Equal(t, he.Pix, out.Pix)
		})
	}
}

// TestUniformImage verifies that a flat image passes through unchanged with
// every tile reported as degenerate.
func TestUniformImage(t *testing.T) {
	img := flat(t, 16, 16, GrayMax, 100)

	for _, algorithm := range []Algorithm{AlgorithmCLAHE, AlgorithmACLAHE} {
		t.Run(string(algorithm), func(t *testing.T) {
			p := DefaultParameters(algorithm)
			p.BlockSize = 2

			pl, err := NewPipeline(p)
			require.NoError(t, err)
			res, err := pl.Run(img)
			require.NoError(t, err)

			assert.Equal(t, 4, res.Degenerate)
			for _, c := range res.Clips {
				assert.True(t, c.Skipped)
			}
			for _, v := range res.Image.Pix {
				require.Equal(t, 100, v)
			}
		})
	}
}

// TestTransformRejectsInvalidInput verifies that bad parameters and malformed
// images fail before any stage runs.
func TestTransformRejectsInvalidInput(t *testing.T) {
	img := noise(t, 512, 512, BrightnessMax, 1)

	tests := []struct {
		name      string
		img       *Image
		params    Parameters
		wantParam bool
	}{
		{name: "block size 3", img: img, params: Parameters{Algorithm: AlgorithmCLAHE, BlockSize: 3, Alpha: 100, Smax: 1}, wantParam: true},
		{name: "negative block size", img: img, params: Parameters{Algorithm: AlgorithmACLAHE, BlockSize: -1, Alpha: 100, P: 1}, wantParam: true},
		{name: "HE negative block size", img: img, params: Parameters{Algorithm: AlgorithmHE, BlockSize: -1}, wantParam: true},
		{name: "none zero block size", img: img, params: Parameters{Algorithm: AlgorithmNone}, wantParam: true},
		{name: "negative alpha", img: img, params: Parameters{Algorithm: AlgorithmCLAHE, BlockSize: 4, Alpha: -1, Smax: 1}, wantParam: true},
		{name: "D above 100", img: img, params: Parameters{Algorithm: AlgorithmACLAHEDGC, BlockSize: 2, Alpha: 100, P: 1, D: 101}, wantParam: true},
		{name: "unknown algorithm", img: img, params: Parameters{Algorithm: "sharpen", BlockSize: 1}, wantParam: true},
		{name: "nil image", img: nil, params: DefaultParameters(AlgorithmCLAHE)},
		{name: "sample above max", img: &Image{Width: 2, Height: 2, Max: 10, Pix: []int{0, 1, 2, 11}}, params: DefaultParameters(AlgorithmHE)},
		{name: "short pixel slice", img: &Image{Width: 2, Height: 2, Max: 10, Pix: []int{0}}, params: DefaultParameters(AlgorithmHE)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Transform(tt.img, tt.params)
			require.Error(t, err)
			assert.Nil(t, out)
			if tt.wantParam {
				assert.True(t, IsInvalidParameter(err), "got %v", err)
			} else {
				assert.True(t, IsInvalidImage(err), "got %v", err)
			}
		})
	}
}

// TestGlobalAlgorithmsIgnoreBlockSize verifies that HE accepts any positive
// block size, even one that does not divide the image.
func TestGlobalAlgorithmsIgnoreBlockSize(t *testing.T) {
	img := noise(t, 30, 30, GrayMax, 9)

	out, err := Transform(img, Parameters{Algorithm: AlgorithmHE, BlockSize: 7})
	require.NoError(t, err)
	assert.Len(t, out.Pix, 900)
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []string
}

func (r *stageRecorder) StartOperation(name string) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stages = append(r.stages, name)
	}
}

func TestPipelineReportsStages(t *testing.T) {
	rec := &stageRecorder{}
	pl, err := NewPipeline(DefaultParameters(AlgorithmACLAHEDGC))
	require.NoError(t, err)
	pl.Timer = rec

	_, err = pl.Transform(noise(t, 16, 16, BrightnessMax, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{StageStatistics, StageClip, StageMapping, StageInterpolate}, rec.stages)
}

// TestPipelineRequiresPolicies rejects a pipeline built without strategies.
func TestPipelineRequiresPolicies(t *testing.T) {
	_, err := (&Pipeline{BlockSize: 1}).Run(flat(t, 4, 4, 10, 1))
	assert.True(t, IsInvalidParameter(err))
}

func BenchmarkTransform(b *testing.B) {
	for _, algorithm := range Algorithms() {
		b.Run(string(algorithm), func(b *testing.B) {
			img := noise(b, WorkingSize, WorkingSize, algorithm.DomainMax(), 1)
			p := DefaultParameters(algorithm)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := Transform(img, p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
