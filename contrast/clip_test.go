package contrast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spike is 13 zeros followed by 1, 2, 3 in a [0,3] domain: 16 pixels over a range of 3.
func spike() (Histogram, TileStatistics) {
	samples := []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3}
	return ComputeStatistics(samples, 3)
}

func TestClipLimit(t *testing.T) {
	tests := []struct {
		name   string
		stats  TileStatistics
		extra  float64
		want   int
		wantOK bool
	}{
		{name: "truncates", stats: TileStatistics{Min: 0, Max: 63, Pixels: 64}, extra: 1, want: 2, wantOK: true},
		{name: "no extra", stats: TileStatistics{Min: 0, Max: 3, Pixels: 16}, extra: 0, want: 5, wantOK: true},
		{name: "degenerate", stats: TileStatistics{Min: 9, Max: 9, Pixels: 16}, extra: 1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClipLimit(tt.stats, tt.extra)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestApplyClipLimitRedistributes(t *testing.T) {
	hist, _ := spike()

	out, report := ApplyClipLimit(hist, 5, 3)

	assert.Equal(t, Histogram{7, 3, 3, 3}, out)
	assert.Equal(t, 5, report.Limit)
	assert.Equal(t, 8, report.Clipped)
	assert.Equal(t, 2, report.Redistributed)
	assert.Equal(t, Histogram{13, 1, 1, 1}, hist, "input must not be modified")
}

// TestApplyClipLimitConservesMass verifies that clipping only moves counts
// between bins and never changes the histogram total.
func TestApplyClipLimitConservesMass(t *testing.T) {
	img := noise(t, 64, 64, 255, 7)
	hist, _ := ComputeStatistics(img.Pix, img.Max)

	for _, limit := range []int{1, 5, 12, 16, 40, 1 << 20} {
		out, report := ApplyClipLimit(hist, limit, img.Max)
		lost := hist.Sum() - out.Sum()

		assert.Equal(t, report.Clipped-report.Redistributed*(img.Max+1), lost, "limit %d", limit)
		assert.GreaterOrEqual(t, lost, 0, "limit %d", limit)
		assert.LessOrEqual(t, lost, img.Max, "limit %d", limit)
	}
}

func TestFixedClip(t *testing.T) {
	hist, stats := spike()

	out, report := FixedClip{Alpha: 0, Smax: 1}.Clip(hist, stats, 3)
	assert.Equal(t, Histogram{7, 3, 3, 3}, out)
	assert.Equal(t, 5, report.Limit)

	// B = 16/3 * (1 + 40) exceeds every bin.
	out, report = FixedClip{Alpha: 100, Smax: 40}.Clip(hist, stats, 3)
	assert.Equal(t, hist, out)
	assert.Equal(t, 0, report.Clipped)
	assert.Equal(t, "fixed", FixedClip{}.Name())
}

func TestAdaptiveClip(t *testing.T) {
	hist, stats := spike()

	// alpha 0 leaves only the brightness term P*Max/MAX = 1, so B = int(16/3*2) = 10.
	out, report := AdaptiveClip{Alpha: 0, P: 1}.Clip(hist, stats, 3)
	assert.Equal(t, 10, report.Limit)
	assert.Equal(t, 3, report.Clipped)
	assert.Equal(t, 0, report.Redistributed)
	assert.Equal(t, Histogram{10, 1, 1, 1}, out)
}

// TestAdaptiveClipZeroMean covers a tile whose integer mean truncates to zero.
func TestAdaptiveClipZeroMean(t *testing.T) {
	// A dark tile with a single bright pixel has integer mean 0.
	samples := make([]int, 16)
	samples[15] = 3
	hist, stats := ComputeStatistics(samples, 3)
	require.Equal(t, 0, stats.Mean)

	out, report := AdaptiveClip{Alpha: 100, P: 1}.Clip(hist, stats, 3)
	assert.Greater(t, report.Limit, 0)
	assert.Equal(t, hist, out, "huge limit clips nothing")
}

// TestClipSkipsDegenerateTile verifies that a tile with a single gray level
// is left unclipped by both clip policies.
func TestClipSkipsDegenerateTile(t *testing.T) {
	hist, stats := ComputeStatistics([]int{4, 4, 4, 4}, 10)

	for _, policy := range []ClipPolicy{FixedClip{Alpha: 100, Smax: 1}, AdaptiveClip{Alpha: 100, P: 1}} {
		out, report := policy.Clip(hist, stats, 10)
		assert.True(t, report.Skipped, policy.Name())
		assert.Equal(t, -1, report.Limit, policy.Name())
		assert.Equal(t, hist, out, policy.Name())
	}
}

func TestNoClip(t *testing.T) {
	hist, stats := spike()
	out, report := NoClip{}.Clip(hist, stats, 3)
	assert.Equal(t, hist, out)
	assert.Equal(t, -1, report.Limit)
	assert.False(t, report.Skipped)
}
