package contrast

import (
	"image"

	"github.com/pkg/errors"
)

// Tile identifies one block of the grid by its block column and block row.
type Tile struct {
	Col int
	Row int
}

// Grid partitions a Width x Height image into BlockSize x BlockSize equal tiles.
type Grid struct {
	// Width and Height of the partitioned image in pixels.
	Width, Height int
	// BlockSize is the number of tiles along each axis.
	BlockSize int
	// TileWidth and TileHeight are the pixel extents of every tile.
	TileWidth, TileHeight int
}

// NewGrid validates the geometry and builds a grid.
//
// Arguments:
//   - width: Image width in pixels.
//   - height: Image height in pixels.
//   - blockSize: Tiles per axis, must be positive and divide both dimensions.
//
// Returns:
//   - *Grid: The grid.
//   - error: ErrInvalidParameter when the block size is not usable for this image.
//
// @example
// grid, err := NewGrid(512, 512, 4) // 16 tiles of 128x128
func NewGrid(width, height, blockSize int) (*Grid, error) {
	if blockSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "block size must be positive, got %d", blockSize)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "dimensions must be positive, got %dx%d", width, height)
	}
	if width%blockSize != 0 || height%blockSize != 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "block size %d does not divide %dx%d", blockSize, width, height)
	}
	return &Grid{
		Width:      width,
		Height:     height,
		BlockSize:  blockSize,
		TileWidth:  width / blockSize,
		TileHeight: height / blockSize,
	}, nil
}

// TileCount returns the number of tiles, BlockSize squared.
func (g *Grid) TileCount() int {
	return g.BlockSize * g.BlockSize
}

// TilePixels returns the number of pixels owned by each tile.
func (g *Grid) TilePixels() int {
	return g.TileWidth * g.TileHeight
}

// Index returns the slot of a tile in per-tile slices, row-major over tiles.
func (g *Grid) Index(t Tile) int {
	return t.Row*g.BlockSize + t.Col
}

// TileAt is the inverse of Index.
func (g *Grid) TileAt(index int) Tile {
	return Tile{Col: index % g.BlockSize, Row: index / g.BlockSize}
}

// Tiles lists every tile in Index order.
func (g *Grid) Tiles() []Tile {
	tiles := make([]Tile, g.TileCount())
	for i := range tiles {
		tiles[i] = g.TileAt(i)
	}
	return tiles
}

// TileOf maps a pixel to the tile that owns it.
func (g *Grid) TileOf(x, y int) Tile {
	return Tile{Col: x / g.TileWidth, Row: y / g.TileHeight}
}

// Bounds returns the pixel rectangle covered by a tile.
func (g *Grid) Bounds(t Tile) image.Rectangle {
	x0 := t.Col * g.TileWidth
	y0 := t.Row * g.TileHeight
	return image.Rect(x0, y0, x0+g.TileWidth, y0+g.TileHeight)
}

// Center returns the pixel coordinates of a tile centre. Halves are integer.
func (g *Grid) Center(t Tile) (cx, cy int) {
	return t.Col*g.TileWidth + g.TileWidth/2, t.Row*g.TileHeight + g.TileHeight/2
}

// Samples copies the samples of one tile out of img, row by row.
func (g *Grid) Samples(img *Image, t Tile) []int {
	b := g.Bounds(t)
	out := make([]int, 0, g.TilePixels())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[y*img.Width+b.Min.X : y*img.Width+b.Max.X]
		out = append(out, row...)
	}
	return out
}
