package contrast

import "math"

// meanEpsilon keeps the stddev/mean ratio finite for tiles whose mean is zero.
const meanEpsilon = 1e-4

// ClipReport describes what a ClipPolicy did to one tile histogram.
type ClipReport struct {
	// Limit is the clip limit B, or -1 when no limit was applied.
	Limit int `json:"limit" yaml:"limit"`
	// Clipped is the total mass removed above Limit.
	Clipped int `json:"clipped" yaml:"clipped"`
	// Redistributed is the amount added back to every bin.
	Redistributed int `json:"redistributed" yaml:"redistributed"`
	// Skipped is set when clipping was bypassed for a zero-range tile.
	Skipped bool `json:"skipped" yaml:"skipped"`
}

// ClipPolicy computes a per-tile clip limit and applies it to the tile histogram.
type ClipPolicy interface {
	// Clip returns the clipped and redistributed histogram. hist is not modified.
	Clip(hist Histogram, stats TileStatistics, max int) (Histogram, ClipReport)
	// Name identifies the policy in logs and reports.
	Name() string
}

// NoClip leaves histograms untouched (plain histogram equalization).
type NoClip struct{}

// Clip implements ClipPolicy.
func (NoClip) Clip(hist Histogram, _ TileStatistics, _ int) (Histogram, ClipReport) {
	return hist.Clone(), ClipReport{Limit: -1}
}

// Name implements ClipPolicy.
func (NoClip) Name() string { return "none" }

// FixedClip is the CLAHE clip limit: B = M/N * (1 + alpha/100 * Smax).
type FixedClip struct {
	// Alpha is the clip strength in percent.
	Alpha int
	// Smax is the maximum slope.
	Smax int
}

// Clip implements ClipPolicy.
func (c FixedClip) Clip(hist Histogram, stats TileStatistics, max int) (Histogram, ClipReport) {
	extra := float64(c.Alpha) / 100.0 * float64(c.Smax)
	return clipWithExtra(hist, stats, max, extra)
}

// Name implements ClipPolicy.
func (FixedClip) Name() string { return "fixed" }

// AdaptiveClip is the automatic ACLAHE clip limit:
// B = M/N * (1 + P*lmax/MAX + alpha/100 * stddev/(mean+eps)).
//
// Evaluated on a BrightnessMax image it yields the extended-domain limit used
// by the dual-gamma variant.
type AdaptiveClip struct {
	// Alpha weights the stddev/mean term, in percent.
	Alpha int
	// P weights the tile brightness term.
	P int
}

// Clip implements ClipPolicy.
func (c AdaptiveClip) Clip(hist Histogram, stats TileStatistics, max int) (Histogram, ClipReport) {
	extra := float64(c.P)*(float64(stats.Max)/float64(max)) +
		float64(c.Alpha)/100.0*(stats.StdDev/(float64(stats.Mean)+meanEpsilon))
	return clipWithExtra(hist, stats, max, extra)
}

// Name implements ClipPolicy.
func (AdaptiveClip) Name() string { return "adaptive" }

// ClipLimit evaluates B = trunc(M/N_range * (1 + extra)).
//
// Returns:
//   - int: The clip limit.
//   - bool: False for a zero-range tile, where the limit is undefined.
func ClipLimit(stats TileStatistics, extra float64) (int, bool) {
	if stats.Degenerate() {
		return 0, false
	}
	b := float64(stats.Pixels) / float64(stats.Range()) * (1.0 + extra)
	if b >= math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(b), true
}

// ApplyClipLimit caps every bin at limit and spreads floor(clipped/(max+1))
// uniformly over all bins.
//
// Arguments:
//   - hist: Source histogram, not modified.
//   - limit: Clip limit B.
//   - max: Top of the intensity domain.
//
// Returns:
//   - Histogram: The clipped and redistributed histogram.
//   - ClipReport: Limit, clipped mass and per-bin redistribution.
func ApplyClipLimit(hist Histogram, limit, max int) (Histogram, ClipReport) {
	out := hist.Clone()
	clipped := 0
	for v, c := range out {
		if c > limit {
			clipped += c - limit
			out[v] = limit
		}
	}
	per := clipped / (max + 1)
	if per > 0 {
		for v := range out {
			out[v] += per
		}
	}
	return out, ClipReport{Limit: limit, Clipped: clipped, Redistributed: per}
}

func clipWithExtra(hist Histogram, stats TileStatistics, max int, extra float64) (Histogram, ClipReport) {
	limit, ok := ClipLimit(stats, extra)
	if !ok {
		return hist.Clone(), ClipReport{Limit: -1, Skipped: true}
	}
	return ApplyClipLimit(hist, limit, max)
}
