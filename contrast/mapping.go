package contrast

import (
	"math"

	"github.com/nvr-ai/go-clahe/images"
)

// MappingTable maps an input intensity (the index) to an output intensity.
type MappingTable []int

// MappingPolicy turns a clipped tile histogram into a monotone mapping table.
type MappingPolicy interface {
	// Build returns a table of len max+1, non-decreasing, with values in [0, max].
	//
	// clipped is the histogram after the clip policy ran; raw is the tile
	// histogram before clipping.
	Build(clipped, raw Histogram, stats TileStatistics, global GlobalContext) MappingTable
	// Name identifies the policy in logs and reports.
	Name() string
}

// GlobalEqualization is plain histogram equalization: table[v] = floor(MAX/pixels * cum[v]).
type GlobalEqualization struct{}

// Build implements MappingPolicy.
func (GlobalEqualization) Build(clipped, _ Histogram, stats TileStatistics, _ GlobalContext) MappingTable {
	max := len(clipped) - 1
	return equalize(clipped, float64(max), stats.Pixels)
}

// Name implements MappingPolicy.
func (GlobalEqualization) Name() string { return "global-equalization" }

// TileEqualization rescales the cumulative histogram to the tile's own maximum:
// table[v] = floor(tileMax/pixels * cum[v]).
type TileEqualization struct{}

// Build implements MappingPolicy.
func (TileEqualization) Build(clipped, _ Histogram, stats TileStatistics, _ GlobalContext) MappingTable {
	return equalize(clipped, float64(stats.Max), stats.Pixels)
}

// Name implements MappingPolicy.
func (TileEqualization) Name() string { return "tile-equalization" }

// DualGamma is the ACLAHE+DGC mapping, combining a weighted equalization term
// with a gamma term driven by a weighted cdf of the unclipped tile histogram.
type DualGamma struct {
	// D is the dynamic range threshold, in percent of the domain, above which
	// the equalization term competes with the gamma term.
	D int
}

// Build implements MappingPolicy.
func (d DualGamma) Build(clipped, raw Histogram, stats TileStatistics, global GlobalContext) MappingTable {
	max := len(clipped) - 1
	table := make(MappingTable, max+1)

	cum := clipped.Cumulative()
	total := float64(cum[max])
	wcdf := weightedCDF(raw)

	lmax := float64(global.Lmax)
	lalpha := float64(global.Lalpha)
	if lalpha == 0 {
		lalpha = 1
	}
	ratio := lmax / lalpha
	wide := float64(stats.Range()) > float64(d.D*max)/100.0

	for v := range table {
		cdf := safeDiv(float64(cum[v]), total)

		wen := 1.0 / (1.0 + math.Exp(-math.Pow(ratio, 1.0-math.Log(math.E+cdf)/8.0)))
		t1 := int(images.Clamp(float64(int(float64(stats.Max)*wen*cdf)), 0, float64(max)))

		gamma := 0
		if lmax > 0 {
			gamma = int(lmax * math.Pow(float64(v)/lmax, (1.0+wcdf[v])/2.0))
		}

		if wide && t1 > gamma {
			table[v] = t1
		} else {
			table[v] = gamma
		}
	}

	return monotone(table, max)
}

// Name implements MappingPolicy.
func (DualGamma) Name() string { return "dual-gamma" }

// IdentityMapping maps every intensity to itself. It backs the "none" algorithm.
type IdentityMapping struct{}

// Build implements MappingPolicy.
func (IdentityMapping) Build(clipped, _ Histogram, _ TileStatistics, _ GlobalContext) MappingTable {
	table := make(MappingTable, len(clipped))
	for v := range table {
		table[v] = v
	}
	return table
}

// Name implements MappingPolicy.
func (IdentityMapping) Name() string { return "identity" }

// equalize computes floor(scale/pixels * cum[v]) for every v.
func equalize(hist Histogram, scale float64, pixels int) MappingTable {
	max := len(hist) - 1
	table := make(MappingTable, len(hist))
	if pixels == 0 {
		return table
	}
	factor := scale / float64(pixels)
	for v, c := range hist.Cumulative() {
		table[v] = int(factor * float64(c))
	}
	return monotone(table, max)
}

// weightedCDF normalises pdf into [pdfMin, pdfMax] weights and returns their
// running sum divided by the total. A flat pdf yields all zero weights and 0/0 is 0.
func weightedCDF(pdf Histogram) []float64 {
	out := make([]float64, len(pdf))
	if len(pdf) == 0 {
		return out
	}

	lo, hi := pdf[0], pdf[0]
	for _, c := range pdf {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	if hi == lo {
		return out
	}

	span := float64(hi - lo)
	running := 0.0
	for v, c := range pdf {
		running += float64(hi) * (float64(c-lo) / span)
		out[v] = running
	}
	total := out[len(out)-1]
	for v := range out {
		out[v] = safeDiv(out[v], total)
	}
	return out
}

// monotone clamps table into [0, max] and raises every entry to at least its predecessor.
func monotone(table MappingTable, max int) MappingTable {
	floor := 0
	for v, t := range table {
		if t < 0 {
			t = 0
		}
		if t > max {
			t = max
		}
		if t < floor {
			t = floor
		}
		table[v] = t
		floor = t
	}
	return table
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
