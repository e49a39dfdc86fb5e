package images

// EdgeMode defines how sampling behaves outside the plane bounds.
type EdgeMode int

const (
	// EdgeClamp repeats edge samples.
	EdgeClamp EdgeMode = iota
	// EdgeMirror reflects coordinates without repeating the edge sample.
	EdgeMirror
	// EdgeWrap tiles the plane.
	EdgeWrap
)

// BoxSmooth applies a separable box filter of window 2*radius+1 to a
// row-major sample plane.
//
// Arguments:
// - samples: Row-major plane of width*height samples.
// - width: Plane width.
// - height: Plane height.
// - radius: Half window; 0 returns a copy.
// - edge: Sampling outside the plane.
//
// Returns:
// - A new plane of rounded window averages, in the input's range.
//
// @example
// smoothed := images.BoxSmooth(samples, 512, 512, 1, images.EdgeMirror)
func BoxSmooth(samples []int, width, height, radius int, edge EdgeMode) []int {
	out := make([]int, len(samples))
	if radius <= 0 || width <= 0 || height <= 0 {
		copy(out, samples)
		return out
	}

	tmp := make([]int, len(samples))
	window := 2*radius + 1

	// Horizontal pass: slide the window along each row.
	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			row := samples[y*width : (y+1)*width]
			sum := 0
			for dx := -radius; dx <= radius; dx++ {
				sum += row[mapCoord(dx, width, edge)]
			}
			for x := 0; x < width; x++ {
				tmp[y*width+x] = (sum + window/2) / window
				sum += row[mapCoord(x+radius+1, width, edge)] - row[mapCoord(x-radius, width, edge)]
			}
		}
	})

	// Vertical pass over the horizontal result.
	Parallel(width, func(partStart, partEnd int) {
		for x := partStart; x < partEnd; x++ {
			sum := 0
			for dy := -radius; dy <= radius; dy++ {
				sum += tmp[mapCoord(dy, height, edge)*width+x]
			}
			for y := 0; y < height; y++ {
				out[y*width+x] = (sum + window/2) / window
				sum += tmp[mapCoord(y+radius+1, height, edge)*width+x] - tmp[mapCoord(y-radius, height, edge)*width+x]
			}
		}
	})

	return out
}

// mapCoord maps an index i to [0, n) according to edge mode.
func mapCoord(i, n int, mode EdgeMode) int {
	switch mode {
	case EdgeMirror:
		if n == 1 {
			return 0
		}
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}
