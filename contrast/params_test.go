package contrast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultParameters verifies every algorithm default is valid for the
// working size.
func TestDefaultParameters(t *testing.T) {
	tests := []struct {
		algorithm Algorithm
		want      Parameters
	}{
		{algorithm: AlgorithmNone, want: Parameters{Algorithm: AlgorithmNone, BlockSize: 1}},
		{algorithm: AlgorithmHE, want: Parameters{Algorithm: AlgorithmHE, BlockSize: 1}},
		{algorithm: AlgorithmCLAHE, want: Parameters{Algorithm: AlgorithmCLAHE, BlockSize: 4, Alpha: 100, Smax: 1}},
		{algorithm: AlgorithmACLAHE, want: Parameters{Algorithm: AlgorithmACLAHE, BlockSize: 4, Alpha: 100, P: 1}},
		{algorithm: AlgorithmACLAHEDGC, want: Parameters{Algorithm: AlgorithmACLAHEDGC, BlockSize: 2, Alpha: 100, P: 1, D: 50}},
	}

	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			p := DefaultParameters(tt.algorithm)
			assert.Equal(t, tt.want, p)
			assert.NoError(t, p.Validate(WorkingSize, WorkingSize))
			assert.Contains(t, tt.algorithm.BlockSizes(), p.BlockSize)
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms() {
		got, err := ParseAlgorithm(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := ParseAlgorithm("CLAHE")
	assert.True(t, IsInvalidParameter(err))
}

func TestAlgorithmDomain(t *testing.T) {
	assert.Equal(t, GrayMax, AlgorithmACLAHE.DomainMax())
	assert.Equal(t, BrightnessMax, AlgorithmCLAHE.DomainMax())
	assert.Equal(t, BrightnessMax, AlgorithmACLAHEDGC.DomainMax())
	assert.Equal(t, "ACLAHE with DGC", AlgorithmACLAHEDGC.String())
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		algorithm Algorithm
		clip      string
		mapping   string
	}{
		{AlgorithmNone, "none", "identity"},
		{AlgorithmHE, "none", "global-equalization"},
		{AlgorithmCLAHE, "fixed", "tile-equalization"},
		{AlgorithmACLAHE, "adaptive", "tile-equalization"},
		{AlgorithmACLAHEDGC, "adaptive", "dual-gamma"},
	}

	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			clip, mapping, err := DefaultParameters(tt.algorithm).Strategies()
			require.NoError(t, err)
			assert.Equal(t, tt.clip, clip.Name())
			assert.Equal(t, tt.mapping, mapping.Name())
		})
	}
}

func TestEffectiveBlockSize(t *testing.T) {
	assert.Equal(t, 1, Parameters{Algorithm: AlgorithmHE, BlockSize: 8}.EffectiveBlockSize())
	assert.Equal(t, 8, Parameters{Algorithm: AlgorithmCLAHE, BlockSize: 8}.EffectiveBlockSize())
}
