package contrast

import (
	"fmt"

	"github.com/pkg/errors"
)

// Algorithm selects which clip and mapping strategies a pipeline is built from.
type Algorithm string

const (
	// AlgorithmNone returns the source image unchanged.
	AlgorithmNone Algorithm = "none"
	// AlgorithmHE is plain global histogram equalization.
	AlgorithmHE Algorithm = "he"
	// AlgorithmCLAHE is contrast limited adaptive histogram equalization with a fixed slope.
	AlgorithmCLAHE Algorithm = "clahe"
	// AlgorithmACLAHE is CLAHE with an automatically selected clip limit.
	AlgorithmACLAHE Algorithm = "aclahe"
	// AlgorithmACLAHEDGC is ACLAHE followed by the dual-gamma weighted mapping.
	AlgorithmACLAHEDGC Algorithm = "aclahe-dgc"
)

// Algorithms lists every supported algorithm in presentation order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmNone, AlgorithmHE, AlgorithmCLAHE, AlgorithmACLAHE, AlgorithmACLAHEDGC}
}

// String returns a human readable name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "Original Image"
	case AlgorithmHE:
		return "Histogram Equalization"
	case AlgorithmCLAHE:
		return "CLAHE"
	case AlgorithmACLAHE:
		return "ACLAHE"
	case AlgorithmACLAHEDGC:
		return "ACLAHE with DGC"
	default:
		return string(a)
	}
}

// DomainMax is the intensity domain the algorithm is tuned for: ACLAHE runs on
// 8-bit gray, everything else on the 0..1000 brightness channel.
func (a Algorithm) DomainMax() int {
	if a == AlgorithmACLAHE {
		return GrayMax
	}
	return BrightnessMax
}

// BlockSizes lists the block sizes offered for interactive selection.
func (a Algorithm) BlockSizes() []int {
	switch a {
	case AlgorithmCLAHE:
		return []int{1, 2, 4, 8, 16, 32}
	case AlgorithmACLAHE, AlgorithmACLAHEDGC:
		return []int{1, 2, 4, 8, 16}
	default:
		return []int{1}
	}
}

// ParseAlgorithm resolves a name such as "clahe" into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidParameter, "unknown algorithm %q", name)
}

// Parameters configures one pipeline run.
type Parameters struct {
	// Algorithm selects the clip and mapping strategies.
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`
	// BlockSize is the number of tiles per axis.
	BlockSize int `json:"block_size" yaml:"block_size"`
	// Alpha is the clip strength in percent.
	Alpha int `json:"alpha" yaml:"alpha"`
	// P weights tile brightness in the adaptive clip limit.
	P int `json:"p" yaml:"p"`
	// Smax is the maximum slope of the fixed clip limit.
	Smax int `json:"smax" yaml:"smax"`
	// D is the dynamic range threshold of the dual-gamma mapping, in percent.
	D int `json:"d" yaml:"d"`
}

// DefaultParameters returns the tuned starting parameters of an algorithm.
//
// Arguments:
//   - a: The algorithm.
//
// Returns:
//   - Parameters: Defaults for a; unknown algorithms get block size 1 only.
//
// @example
// params := DefaultParameters(AlgorithmCLAHE) // block 4, alpha 100, Smax 1
func DefaultParameters(a Algorithm) Parameters {
	switch a {
	case AlgorithmCLAHE:
		return Parameters{Algorithm: a, BlockSize: 4, Alpha: 100, Smax: 1}
	case AlgorithmACLAHE:
		return Parameters{Algorithm: a, BlockSize: 4, Alpha: 100, P: 1}
	case AlgorithmACLAHEDGC:
		return Parameters{Algorithm: a, BlockSize: 2, Alpha: 100, P: 1, D: 50}
	default:
		return Parameters{Algorithm: a, BlockSize: 1}
	}
}

// EffectiveBlockSize is the block size the pipeline actually uses; global
// algorithms always run on a single tile.
func (p Parameters) EffectiveBlockSize() int {
	if p.Algorithm == AlgorithmNone || p.Algorithm == AlgorithmHE {
		return 1
	}
	return p.BlockSize
}

// Validate checks p against an image of the given size.
//
// Arguments:
//   - width: Image width in pixels.
//   - height: Image height in pixels.
//
// Returns:
//   - error: ErrInvalidParameter describing the first violated constraint.
func (p Parameters) Validate(width, height int) error {
	if _, err := ParseAlgorithm(string(p.Algorithm)); err != nil {
		return err
	}
	if p.BlockSize <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "block size must be positive, got %d", p.BlockSize)
	}
	// none and he always run on a single tile.
	if p.Algorithm != AlgorithmNone && p.Algorithm != AlgorithmHE {
		if width%p.BlockSize != 0 || height%p.BlockSize != 0 {
			return errors.Wrapf(ErrInvalidParameter, "block size %d does not divide %dx%d", p.BlockSize, width, height)
		}
	}
	if p.Alpha < 0 {
		return errors.Wrapf(ErrInvalidParameter, "alpha must be >= 0, got %d", p.Alpha)
	}
	if p.P < 0 {
		return errors.Wrapf(ErrInvalidParameter, "P must be >= 0, got %d", p.P)
	}
	if p.Smax < 0 {
		return errors.Wrapf(ErrInvalidParameter, "Smax must be >= 0, got %d", p.Smax)
	}
	if p.D < 0 || p.D > 100 {
		return errors.Wrapf(ErrInvalidParameter, "D must be within [0,100], got %d", p.D)
	}
	return nil
}

// String implements fmt.Stringer.
func (p Parameters) String() string {
	return fmt.Sprintf("%s(block=%d alpha=%d P=%d Smax=%d D=%d)",
		p.Algorithm, p.BlockSize, p.Alpha, p.P, p.Smax, p.D)
}

// Strategies resolves the clip and mapping policies of p.
func (p Parameters) Strategies() (ClipPolicy, MappingPolicy, error) {
	switch p.Algorithm {
	case AlgorithmNone:
		return NoClip{}, IdentityMapping{}, nil
	case AlgorithmHE:
		return NoClip{}, GlobalEqualization{}, nil
	case AlgorithmCLAHE:
		return FixedClip{Alpha: p.Alpha, Smax: p.Smax}, TileEqualization{}, nil
	case AlgorithmACLAHE:
		return AdaptiveClip{Alpha: p.Alpha, P: p.P}, TileEqualization{}, nil
	case AlgorithmACLAHEDGC:
		return AdaptiveClip{Alpha: p.Alpha, P: p.P}, DualGamma{D: p.D}, nil
	default:
		return nil, nil, errors.Wrapf(ErrInvalidParameter, "unknown algorithm %q", p.Algorithm)
	}
}
