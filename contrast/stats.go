package contrast

import "math"

// lalphaFraction is the share of the image-wide pixel mass that locates Lalpha.
const lalphaFraction = 0.75

// Histogram counts occurrences of each intensity 0..Max.
type Histogram []int

// Sum returns the total mass of the histogram.
func (h Histogram) Sum() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// Clone returns a copy of the histogram.
func (h Histogram) Clone() Histogram {
	out := make(Histogram, len(h))
	copy(out, h)
	return out
}

// Cumulative returns the running (prefix) sum of the histogram.
func (h Histogram) Cumulative() []int {
	cum := make([]int, len(h))
	running := 0
	for v, c := range h {
		running += c
		cum[v] = running
	}
	return cum
}

// TileStatistics summarises the samples of one tile.
type TileStatistics struct {
	// Min and Max are the extreme sample values.
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
	// Mean is the truncated integer mean.
	Mean int `json:"mean" yaml:"mean"`
	// StdDev is the population standard deviation about Mean.
	StdDev float64 `json:"stddev" yaml:"stddev"`
	// Pixels is the number of samples in the tile.
	Pixels int `json:"pixels" yaml:"pixels"`
}

// Range returns the dynamic range Max-Min of the tile.
func (s TileStatistics) Range() int {
	return s.Max - s.Min
}

// Degenerate reports a tile with zero dynamic range.
func (s TileStatistics) Degenerate() bool {
	return s.Range() == 0
}

// ComputeStatistics builds the histogram of samples over [0, max] together with
// min, max, integer mean and standard deviation.
//
// The mean is truncated to an integer and the deviation is measured about that
// integer mean, so both stay in the integer sample domain the clip policies expect.
//
// Arguments:
//   - samples: The tile samples; each must lie in [0, max].
//   - max: Top of the intensity domain.
//
// Returns:
//   - Histogram: Occurrence counts, len max+1.
//   - TileStatistics: Min/Max/Mean/StdDev/Pixels of the samples.
//
// @example
// hist, stats := ComputeStatistics([]int{0, 10, 10, 20}, 255)
// // stats.Min == 0, stats.Max == 20, stats.Mean == 10
func ComputeStatistics(samples []int, max int) (Histogram, TileStatistics) {
	hist := make(Histogram, max+1)
	stats := TileStatistics{Pixels: len(samples)}
	if len(samples) == 0 {
		return hist, stats
	}

	lo, hi, sum := math.MaxInt, math.MinInt, 0
	for _, v := range samples {
		hist[v]++
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}
	stats.Min, stats.Max = lo, hi
	stats.Mean = sum / len(samples)

	var squares float64
	for _, v := range samples {
		d := float64(v - stats.Mean)
		squares += d * d
	}
	stats.StdDev = math.Sqrt(squares / float64(len(samples)))

	return hist, stats
}

// GlobalContext holds image-wide quantities shared by every tile mapping.
type GlobalContext struct {
	// Lmax is the largest sample in the image.
	Lmax int
	// Lalpha is the intensity whose cumulative count is closest to 75% of all pixels.
	Lalpha int
	// Histogram is the image-wide histogram.
	Histogram Histogram
}

// ComputeGlobalContext scans the whole image once for Lmax and Lalpha.
//
// Ties on the distance to the 75% target keep the lowest intensity.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - GlobalContext: Lmax, Lalpha and the global histogram.
func ComputeGlobalContext(img *Image) GlobalContext {
	hist, stats := ComputeStatistics(img.Pix, img.Max)
	target := int(float64(len(img.Pix)) * lalphaFraction)

	lalpha, best := 0, math.MaxInt
	for v, c := range hist.Cumulative() {
		diff := c - target
		if diff < 0 {
			diff = -diff
		}
		if diff < best {
			best = diff
			lalpha = v
		}
	}

	return GlobalContext{
		Lmax:      stats.Max,
		Lalpha:    lalpha,
		Histogram: hist,
	}
}
