package contrast

import (
	"sync"

	"github.com/pkg/errors"
)

// Transformer holds a source image and the parameters applied to it, and
// re-runs the whole pipeline on request.
//
// Setters validate before committing: a rejected update leaves the previous
// image and parameters in place.
type Transformer struct {
	mu     sync.RWMutex
	source *Image
	params Parameters
	timer  Timer
}

// NewTransformer validates img and p together and builds a Transformer.
//
// Arguments:
//   - img: The source image, kept by reference and never modified.
//   - p: Initial parameters.
//
// Returns:
//   - *Transformer: The transformer.
//   - error: ErrInvalidImage or ErrInvalidParameter.
//
// @example
// t, err := contrast.NewTransformer(img, contrast.DefaultParameters(contrast.AlgorithmACLAHE))
// out, err := t.Transform()
func NewTransformer(img *Image, p Parameters) (*Transformer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(img.Width, img.Height); err != nil {
		return nil, err
	}
	return &Transformer{source: img, params: p}, nil
}

// SetTimer attaches a stage timer to subsequent runs.
func (t *Transformer) SetTimer(timer Timer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = timer
}

// Parameters returns the parameters currently in effect.
func (t *Transformer) Parameters() Parameters {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.params
}

// Source returns the current source image.
func (t *Transformer) Source() *Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source
}

// SetParameters replaces the parameters after validating them against the
// current source image.
func (t *Transformer) SetParameters(p Parameters) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := p.Validate(t.source.Width, t.source.Height); err != nil {
		return errors.Wrapf(err, "rejecting %s", p)
	}
	t.params = p
	return nil
}

// SetImage replaces the source image after validating it and checking that
// the current parameters still apply to it.
func (t *Transformer) SetImage(img *Image) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := img.Validate(); err != nil {
		return err
	}
	if err := t.params.Validate(img.Width, img.Height); err != nil {
		return errors.Wrapf(err, "rejecting %dx%d image", img.Width, img.Height)
	}
	t.source = img
	return nil
}

// Transform runs the pipeline on a snapshot of the current image and parameters.
func (t *Transformer) Transform() (*Image, error) {
	res, err := t.Run()
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// Run is Transform but also returns the per-tile artefacts.
func (t *Transformer) Run() (*Result, error) {
	t.mu.RLock()
	img, p, timer := t.source, t.params, t.timer
	t.mu.RUnlock()

	pipeline, err := NewPipeline(p)
	if err != nil {
		return nil, err
	}
	pipeline.Timer = timer
	return pipeline.Run(img)
}
