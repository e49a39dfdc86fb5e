// Package contrast - Transform pipeline orchestrating tiling, statistics,
// clipping, mapping and interpolation.
//
// Pipeline Overview:
//
// ┌──────────────────┐
// │ Source Image     │
// └──────┬───────────┘
// ┌──────────────────┐
// │ BlockGrid        │  blockSize x blockSize tiles
// └──────┬───────────┘
// ┌──────────────────┐
// │ BlockStatistics  │  histogram, min, max, mean, stddev per tile
// └──────┬───────────┘
// ┌──────────────────┐
// │ ClipPolicy       │  clip limit B, redistribution
// └──────┬───────────┘
// ┌──────────────────┐
// │ MappingPolicy    │  monotone table per tile
// └──────┬───────────┘
// ┌──────────────────┐
// │ Interpolator     │  bilinear blend of four tile tables
// └──────────────────┘
//
// Usage:
//
//	out, err := contrast.Transform(img, contrast.DefaultParameters(contrast.AlgorithmCLAHE))
//	if err != nil {
//	    log.Fatal(err)
//	}
package contrast

import (
	"github.com/nvr-ai/go-clahe/images"
	"github.com/pkg/errors"
)

// Stage names reported to a Timer.
const (
	StageStatistics  = "statistics"
	StageClip        = "clip"
	StageMapping     = "mapping"
	StageInterpolate = "interpolate"
)

// Timer receives stage timings. profiler.Recorder satisfies it.
type Timer interface {
	// StartOperation starts timing name and returns the function that stops it.
	StartOperation(name string) func()
}

// Pipeline is one configured instance of the five-stage transform.
type Pipeline struct {
	// BlockSize is the number of tiles per axis.
	BlockSize int
	// Clip is the clip strategy.
	Clip ClipPolicy
	// Mapping is the mapping strategy.
	Mapping MappingPolicy
	// Timer optionally records stage durations.
	Timer Timer
}

// Result carries the output image and the per-tile artefacts of one run.
type Result struct {
	// Image is the transformed image.
	Image *Image
	// Grid is the tiling used.
	Grid *Grid
	// Global is the image-wide context.
	Global GlobalContext
	// Stats, Clips and Tables are indexed by Grid.Index.
	Stats  []TileStatistics
	Clips  []ClipReport
	Tables []MappingTable
	// Degenerate counts zero-range tiles that skipped clipping.
	Degenerate int
}

// NewPipeline builds a pipeline for p. Geometry is validated when it runs.
//
// Arguments:
//   - p: Parameters selecting the algorithm and its knobs.
//
// Returns:
//   - *Pipeline: The configured pipeline.
//   - error: ErrInvalidParameter for an unknown algorithm or out-of-range knob.
func NewPipeline(p Parameters) (*Pipeline, error) {
	if err := p.Validate(p.EffectiveBlockSize(), p.EffectiveBlockSize()); err != nil {
		return nil, err
	}
	clip, mapping, err := p.Strategies()
	if err != nil {
		return nil, err
	}
	return &Pipeline{BlockSize: p.EffectiveBlockSize(), Clip: clip, Mapping: mapping}, nil
}

// Transform validates p against img and runs the matching pipeline.
//
// This is the single entry point for callers that re-run the whole transform
// whenever the parameters or the source image change.
//
// Arguments:
//   - img: The source image.
//   - p: The parameters.
//
// Returns:
//   - *Image: The transformed image, same size and domain as img.
//   - error: ErrInvalidParameter or ErrInvalidImage, raised before any allocation.
func Transform(img *Image, p Parameters) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(img.Width, img.Height); err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(p)
	if err != nil {
		return nil, err
	}
	return pipeline.Transform(img)
}

// Transform runs the pipeline and returns only the output image.
func (pl *Pipeline) Transform(img *Image) (*Image, error) {
	res, err := pl.Run(img)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// Run executes every stage in order and keeps the intermediate artefacts.
//
// Tile stages fan out over tiles and write into disjoint slots; interpolation
// starts only after every table is published.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - *Result: Output image plus per-tile statistics, clip reports and tables.
//   - error: ErrInvalidImage or ErrInvalidParameter.
func (pl *Pipeline) Run(img *Image) (*Result, error) {
	if pl.Clip == nil || pl.Mapping == nil {
		return nil, errors.Wrap(ErrInvalidParameter, "pipeline requires clip and mapping policies")
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	grid, err := NewGrid(img.Width, img.Height, pl.BlockSize)
	if err != nil {
		return nil, err
	}

	count := grid.TileCount()
	res := &Result{
		Grid:   grid,
		Stats:  make([]TileStatistics, count),
		Clips:  make([]ClipReport, count),
		Tables: make([]MappingTable, count),
	}
	raw := make([]Histogram, count)
	clipped := make([]Histogram, count)

	stop := pl.start(StageStatistics)
	res.Global = ComputeGlobalContext(img)
	images.Parallel(count, func(partStart, partEnd int) {
		for i := partStart; i < partEnd; i++ {
			raw[i], res.Stats[i] = ComputeStatistics(grid.Samples(img, grid.TileAt(i)), img.Max)
		}
	})
	stop()

	stop = pl.start(StageClip)
	images.Parallel(count, func(partStart, partEnd int) {
		for i := partStart; i < partEnd; i++ {
			clipped[i], res.Clips[i] = pl.Clip.Clip(raw[i], res.Stats[i], img.Max)
		}
	})
	stop()

	stop = pl.start(StageMapping)
	images.Parallel(count, func(partStart, partEnd int) {
		for i := partStart; i < partEnd; i++ {
			res.Tables[i] = pl.Mapping.Build(clipped[i], raw[i], res.Stats[i], res.Global)
		}
	})
	stop()

	for _, c := range res.Clips {
		if c.Skipped {
			res.Degenerate++
		}
	}

	stop = pl.start(StageInterpolate)
	res.Image, err = Interpolate(img, grid, res.Tables)
	stop()
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (pl *Pipeline) start(stage string) func() {
	if pl.Timer == nil {
		return func() {}
	}
	return pl.Timer.StartOperation(stage)
}
