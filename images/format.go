package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats.
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatUnknown is returned when the format cannot be determined.
	FormatUnknown ImageFormat = ""
)

// ErrUnsupportedFormat is returned for data or paths that are not JPEG, PNG or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DetectFormat sniffs the magic bytes of encoded image data.
//
// Arguments:
// - data: The encoded image.
//
// Returns:
// - The detected format, or FormatUnknown.
func DetectFormat(data []byte) ImageFormat {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return FormatPNG
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP
	default:
		return FormatUnknown
	}
}

// FormatFromPath maps a file extension to an ImageFormat.
//
// Arguments:
// - path: A file path such as "out/castle.webp".
//
// Returns:
// - The format, or FormatUnknown for unrecognised extensions.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	case ".webp":
		return FormatWebP
	default:
		return FormatUnknown
	}
}

// Decode decodes JPEG, PNG or WebP data into an image.Image.
//
// Arguments:
// - data: The encoded image.
//
// Returns:
// - The decoded image.
// - The detected format.
// - error if the data is empty, unrecognised or corrupt.
//
// @example
// img, format, err := images.Decode(raw)
func Decode(data []byte) (image.Image, ImageFormat, error) {
	if len(data) == 0 {
		return nil, FormatUnknown, errors.New("empty image data")
	}

	format := DetectFormat(data)
	reader := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(reader)
	case FormatPNG:
		img, err = png.Decode(reader)
	case FormatWebP:
		img, err = webp.Decode(reader)
	default:
		return nil, FormatUnknown, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, format, errors.Wrapf(err, "failed to decode %s image", format)
	}

	return img, format, nil
}

// Encode writes img to w in the given format.
//
// Arguments:
// - w: Destination writer.
// - img: The image to encode.
// - format: Target format.
//
// Returns:
// - error if the format is unsupported or encoding fails.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: 90})
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "cannot encode %q", format)
	}
	return errors.Wrapf(err, "failed to encode %s image", format)
}
