package contrast

import (
	"github.com/nvr-ai/go-clahe/images"
	"github.com/pkg/errors"
)

// neighbours picks the pair of tile indices along one axis whose centres
// bracket pixel coordinate p, clamped at the first and last tile.
func neighbours(p, block, extent, last int) (int, int) {
	center := block*extent + extent/2
	if p < center {
		lo := block - 1
		if lo < 0 {
			lo = 0
		}
		return lo, block
	}
	hi := block + 1
	if hi > last {
		hi = block
	}
	return block, hi
}

// weight returns (c2-p)/(c2-c1), or 0 when both centres coincide.
func weight(p, c1, c2 int) float64 {
	if c2 == c1 {
		return 0
	}
	return float64(c2-p) / float64(c2-c1)
}

// Interpolate blends, for every pixel, the four neighbouring tile tables
// evaluated at the pixel's original intensity.
//
// For pixel (x, y) the tile pair on each axis is chosen by comparing the pixel
// with its own tile centre; m and n are the normalised distances to the second
// centre on each axis, and the output is
// m*(n*Ta + (1-n)*Tb) + (1-m)*(n*Tc + (1-n)*Td), truncated and clamped to [0, Max].
//
// Arguments:
//   - src: The original image.
//   - grid: Grid the tables were computed on.
//   - tables: One mapping table per tile, in Grid.Index order.
//
// Returns:
//   - *Image: The blended image.
//   - error: ErrInvalidParameter when the grid or tables do not match src.
func Interpolate(src *Image, grid *Grid, tables []MappingTable) (*Image, error) {
	if grid.Width != src.Width || grid.Height != src.Height {
		return nil, errors.Wrapf(ErrInvalidParameter, "grid %dx%d does not match image %dx%d",
			grid.Width, grid.Height, src.Width, src.Height)
	}
	if len(tables) != grid.TileCount() {
		return nil, errors.Wrapf(ErrInvalidParameter, "expected %d mapping tables, got %d",
			grid.TileCount(), len(tables))
	}

	out := &Image{Width: src.Width, Height: src.Height, Max: src.Max, Pix: make([]int, len(src.Pix))}
	last := grid.BlockSize - 1
	tw, th := grid.TileWidth, grid.TileHeight
	maxValue := float64(src.Max)

	images.Parallel(src.Height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			br := y / th
			br1, br2 := neighbours(y, br, th, last)
			r1 := br1*th + th/2
			r2 := br2*th + th/2
			n := weight(y, r1, r2)

			for x := 0; x < src.Width; x++ {
				bc := x / tw
				bc1, bc2 := neighbours(x, bc, tw, last)
				c1 := bc1*tw + tw/2
				c2 := bc2*tw + tw/2
				m := weight(x, c1, c2)

				p := src.Pix[y*src.Width+x]
				ta := float64(tables[br1*grid.BlockSize+bc1][p])
				tb := float64(tables[br2*grid.BlockSize+bc1][p])
				tc := float64(tables[br1*grid.BlockSize+bc2][p])
				td := float64(tables[br2*grid.BlockSize+bc2][p])

				v := m*(n*ta+(1-n)*tb) + (1-m)*(n*tc+(1-n)*td)
				out.Pix[y*src.Width+x] = int(images.Clamp(float64(int(v)), 0, maxValue))
			}
		}
	})

	return out, nil
}

// ApplyTileTables maps every pixel through its own tile's table without blending.
// It is the blocky baseline the interpolation improves on.
func ApplyTileTables(src *Image, grid *Grid, tables []MappingTable) *Image {
	out := &Image{Width: src.Width, Height: src.Height, Max: src.Max, Pix: make([]int, len(src.Pix))}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			t := grid.TileOf(x, y)
			out.Pix[y*src.Width+x] = tables[grid.Index(t)][src.Pix[y*src.Width+x]]
		}
	}
	return out
}
