package images

import (
	"crypto/md5"
	"fmt"
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// SamplesToMat packs samples in [0, max] into a single channel 8-bit Mat.
// The caller owns the returned Mat and must Close it.
//
// Arguments:
// - samples: Row-major samples, len width*height.
// - width: Number of columns.
// - height: Number of rows.
// - max: Top of the sample domain.
//
// Returns:
// - gocv.Mat: A CV_8UC1 Mat.
// - error: If the shape does not match.
func SamplesToMat(samples []int, width, height, max int) (gocv.Mat, error) {
	if width <= 0 || height <= 0 || len(samples) != width*height {
		return gocv.NewMat(), errors.Errorf("cannot build %dx%d Mat from %d samples", width, height, len(samples))
	}
	if max <= 0 {
		return gocv.NewMat(), errors.Errorf("sample max must be positive, got %d", max)
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC1)
	scale := 255.0 / float64(max)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := Clamp(float64(samples[y*width+x])*scale+0.5, 0, 255)
			mat.SetUCharAt(y, x, uint8(v))
		}
	}
	return mat, nil
}

// MatToSamples reads a single channel 8-bit Mat back into samples in [0, max].
//
// Arguments:
// - mat: A CV_8UC1 Mat.
// - max: Top of the sample domain.
//
// Returns:
// - []int: Row-major samples.
// - error: If the Mat is empty or not 8-bit single channel.
func MatToSamples(mat gocv.Mat, max int) ([]int, error) {
	if mat.Empty() {
		return nil, errors.New("mat is empty")
	}
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, errors.Errorf("expected CV_8UC1 Mat, got type %v", mat.Type())
	}

	rows, cols := mat.Rows(), mat.Cols()
	samples := make([]int, rows*cols)
	scale := float64(max) / 255.0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			samples[y*cols+x] = int(float64(mat.GetUCharAt(y, x))*scale + 0.5)
		}
	}
	return samples, nil
}

// ReferenceCLAHE runs OpenCV's CLAHE over the samples for side-by-side
// comparison with the in-house pipeline.
//
// Arguments:
// - samples: Row-major samples in [0, max].
// - width: Number of columns.
// - height: Number of rows.
// - max: Top of the sample domain.
// - clipLimit: OpenCV clip limit (slope multiplier).
// - tiles: Tiles per axis.
//
// Returns:
// - []int: Enhanced samples in [0, max].
// - error: If the samples cannot be converted.
//
// @example
// ref, err := images.ReferenceCLAHE(samples, 512, 512, 255, 2.0, 8)
func ReferenceCLAHE(samples []int, width, height, max int, clipLimit float64, tiles int) ([]int, error) {
	if tiles <= 0 {
		return nil, errors.Errorf("tiles must be positive, got %d", tiles)
	}

	src, err := SamplesToMat(samples, width, height, max)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert samples")
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: tiles, Y: tiles})
	defer clahe.Close()

	clahe.Apply(src, &dst)

	return MatToSamples(dst, max)
}

// ComputeMatChecksum generates a deterministic checksum of a Mat's pixel data.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty".
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, _ := mat.DataPtrUint8()
	hash := md5.New()
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// SamplesChecksum is ComputeMatChecksum over the 8-bit rendering of samples,
// so two runs can be compared for bit-identical output.
func SamplesChecksum(samples []int, width, height, max int) (string, error) {
	mat, err := SamplesToMat(samples, width, height, max)
	if err != nil {
		return "", err
	}
	defer mat.Close()
	return ComputeMatChecksum(mat), nil
}
