// Package dicom - loads grayscale DICOM frames as intensity images for the
// contrast pipeline.
package dicom

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/nvr-ai/go-clahe/contrast"
	"github.com/pkg/errors"
)

// ErrEncapsulated is returned for compressed transfer syntaxes, which need a
// codec this package does not register.
var ErrEncapsulated = errors.New("encapsulated pixel data is not supported")

// preambleSize is the fixed preamble before the "DICM" prefix.
const preambleSize = 128

// Frame is the first frame of a DICOM file as raw stored values.
type Frame struct {
	// Rows and Cols are the frame dimensions.
	Rows int
	Cols int
	// BitsStored is the number of significant bits per sample.
	BitsStored int
	// Signed is set for PixelRepresentation 1.
	Signed bool
	// Values holds Rows*Cols stored values, row-major.
	Values []int32
}

// IsDICOM reports whether path looks like a DICOM file, either by extension
// or by the "DICM" prefix after the preamble.
func IsDICOM(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".dcm") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, preambleSize+4)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head[preambleSize:], []byte("DICM"))
}

// ReadFrame parses path and extracts its first grayscale frame.
//
// Arguments:
//   - path: The DICOM file.
//
// Returns:
//   - *Frame: Raw stored values and geometry.
//   - error: On parse failure, compressed data, colour data or a missing PixelData element.
func ReadFrame(path string) (*Frame, error) {
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if res.TransferSyntax != nil && res.TransferSyntax.IsEncapsulated() {
		return nil, errors.Wrapf(ErrEncapsulated, "%s", path)
	}

	ds := res.Dataset
	rows := int(ds.TryGetUInt16(tag.Rows, 0))
	cols := int(ds.TryGetUInt16(tag.Columns, 0))
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("%s: invalid frame size %dx%d", path, cols, rows)
	}
	if samples := ds.TryGetUInt16(tag.SamplesPerPixel, 0); samples > 1 {
		return nil, errors.Errorf("%s: expected 1 sample per pixel, got %d", path, samples)
	}

	frame := &Frame{
		Rows:       rows,
		Cols:       cols,
		BitsStored: int(ds.TryGetUInt16(tag.BitsStored, 0)),
		Signed:     ds.TryGetUInt16(tag.PixelRepresentation, 0) != 0,
	}

	pd, ok := ds.Get(tag.PixelData)
	if !ok {
		return nil, errors.Errorf("%s: no pixel data", path)
	}
	var (
		raw  []byte
		wide bool
	)
	switch v := pd.(type) {
	case *element.OtherWord:
		raw, wide = v.GetData(), true
	case *element.OtherByte:
		raw, wide = v.GetData(), frame.BitsStored > 8
	default:
		return nil, errors.Errorf("%s: unexpected pixel data type %T", path, pd)
	}

	frame.Values, err = DecodeValues(raw, rows*cols, wide, frame.Signed)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return frame, nil
}

// DecodeValues unpacks count little-endian samples of 8 or 16 bits.
func DecodeValues(raw []byte, count int, wide, signed bool) ([]int32, error) {
	size := 1
	if wide {
		size = 2
	}
	if len(raw) < count*size {
		return nil, errors.Errorf("pixel data holds %d bytes, need %d", len(raw), count*size)
	}

	values := make([]int32, count)
	for i := range values {
		switch {
		case wide && signed:
			values[i] = int32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		case wide:
			values[i] = int32(binary.LittleEndian.Uint16(raw[i*2:]))
		case signed:
			values[i] = int32(int8(raw[i]))
		default:
			values[i] = int32(raw[i])
		}
	}
	return values, nil
}

// Window linearly maps the frame's own min..max onto [0, max].
//
// Arguments:
//   - max: Top of the target intensity domain.
//
// Returns:
//   - *contrast.Image: The windowed image.
//   - error: ErrInvalidImage for an empty frame or non-positive max.
func (f *Frame) Window(max int) (*contrast.Image, error) {
	img, err := contrast.NewImage(f.Cols, f.Rows, max)
	if err != nil {
		return nil, err
	}
	if len(f.Values) != f.Rows*f.Cols {
		return nil, errors.Wrapf(contrast.ErrInvalidImage, "frame holds %d values, need %d", len(f.Values), f.Rows*f.Cols)
	}

	lo, hi := f.Values[0], f.Values[0]
	for _, v := range f.Values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		// A constant frame maps to black.
		return img, nil
	}

	span := float64(hi - lo)
	for i, v := range f.Values {
		img.Pix[i] = int(float64(v-lo)/span*float64(max) + 0.5)
	}
	return img, nil
}

// Load reads the first frame of a DICOM file windowed into [0, max].
//
// @example
// img, err := dicom.Load("scan.dcm", contrast.BrightnessMax)
func Load(path string, max int) (*contrast.Image, error) {
	frame, err := ReadFrame(path)
	if err != nil {
		return nil, err
	}
	return frame.Window(max)
}
