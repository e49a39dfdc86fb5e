package contrast

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// gradient returns a width x height image with sample y*width+x, so max must
// be at least width*height-1.
func gradient(t testing.TB, width, height, max int) *Image {
	img, err := NewImage(width, height, max)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = i
	}
	return img
}

// noise returns a deterministic pseudo-random image.
func noise(t testing.TB, width, height, max int, seed int64) *Image {
	img, err := NewImage(width, height, max)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range img.Pix {
		img.Pix[i] = rng.Intn(max + 1)
	}
	return img
}

// flat returns an image filled with v.
func flat(t testing.TB, width, height, max, v int) *Image {
	img, err := NewImage(width, height, max)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func requireMonotone(t *testing.T, table MappingTable, max int) {
	t.Helper()
	require.Len(t, table, max+1)
	for v := range table {
		require.GreaterOrEqual(t, table[v], 0, "table[%d]", v)
		require.LessOrEqual(t, table[v], max, "table[%d]", v)
		if v > 0 {
			require.GreaterOrEqual(t, table[v], table[v-1], "table not monotone at %d", v)
		}
	}
}
