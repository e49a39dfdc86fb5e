// Package contrast - Error kinds raised by the contrast enhancement core.
package contrast

import "github.com/pkg/errors"

var (
	// ErrInvalidParameter is returned when a parameter set cannot be applied to an image,
	// e.g. a block size that does not divide the image or a negative clip strength.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidImage is returned when an image is nil, empty or holds samples outside [0, Max].
	ErrInvalidImage = errors.New("invalid image")
)

// IsInvalidParameter reports whether err was caused by ErrInvalidParameter.
//
// Arguments:
//   - err: The error to inspect, possibly wrapped.
//
// Returns:
//   - bool: True when the root cause is ErrInvalidParameter.
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter) || errors.Cause(err) == ErrInvalidParameter
}

// IsInvalidImage reports whether err was caused by ErrInvalidImage.
func IsInvalidImage(err error) bool {
	return errors.Is(err, ErrInvalidImage) || errors.Cause(err) == ErrInvalidImage
}
