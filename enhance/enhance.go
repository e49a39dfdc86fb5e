// Package enhance - turns source files into contrast enhanced images.
//
// Colour sources are split into hue, saturation and brightness; only the
// brightness channel is transformed and the image is rebuilt from the
// original hue and saturation. Gray sources and DICOM frames are transformed
// directly.
package enhance

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/nvr-ai/go-clahe/config"
	"github.com/nvr-ai/go-clahe/contrast"
	"github.com/nvr-ai/go-clahe/dicom"
	"github.com/nvr-ai/go-clahe/images"
	"github.com/nvr-ai/go-clahe/profiler"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Operation names recorded alongside the pipeline stages.
const (
	OperationDecode    = "decode"
	OperationResize    = "resize"
	OperationSplit     = "split"
	OperationDenoise   = "denoise"
	OperationTransform = "transform"
	OperationMerge     = "merge"
	OperationReference = "reference"
)

// Result is the outcome of one enhancement.
type Result struct {
	// Format is the detected source format, FormatUnknown for DICOM.
	Format images.ImageFormat
	// Working is the source after it was brought to the working resolution.
	Working image.Image
	// Output is the enhanced image at the working resolution.
	Output image.Image
	// Source holds the untransformed samples fed to the pipeline.
	Source *contrast.Image
	// Pipeline holds the transformed samples and per-tile artefacts.
	Pipeline *contrast.Result
	// Reference is OpenCV's CLAHE of Source, when comparison is enabled.
	Reference *contrast.Image
}

// Enhancer runs one configuration over any number of source files.
type Enhancer struct {
	config    *config.Config
	recorder  *profiler.Recorder
	debugMode bool
}

// NewEnhancer creates an enhancer for cfg.
//
// Arguments:
// - cfg: The run configuration; nil selects config.DefaultConfig.
//
// Returns:
// - A configured Enhancer instance.
// - error if cfg is invalid.
//
// @example
// cfg := config.DefaultConfig()
// cfg.Parameters = contrast.DefaultParameters(contrast.AlgorithmACLAHEDGC)
// enhancer, err := enhance.NewEnhancer(&cfg)
func NewEnhancer(cfg *config.Config) (*Enhancer, error) {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid enhancer config")
	}
	return &Enhancer{config: cfg}, nil
}

// SetDebugMode enables or disables debug logging.
//
// @example
// enhancer.SetDebugMode(true)
func (e *Enhancer) SetDebugMode(enabled bool) {
	e.debugMode = enabled
}

// SetRecorder attaches a profiler that receives stage timings and tile metrics.
func (e *Enhancer) SetRecorder(rec *profiler.Recorder) {
	e.recorder = rec
}

// Config returns the configuration in use.
func (e *Enhancer) Config() config.Config {
	return *e.config
}

// EnhanceFile enhances a JPEG, PNG, WebP or DICOM file.
//
// Arguments:
// - path: The source file.
//
// Returns:
// - The enhanced image.
// - error if the file cannot be read, decoded or transformed.
//
// @example
// out, err := enhancer.EnhanceFile("frame-0001.jpg")
func (e *Enhancer) EnhanceFile(path string) (image.Image, error) {
	res, err := e.ProcessFile(path)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// ProcessFile is EnhanceFile returning the full Result.
func (e *Enhancer) ProcessFile(path string) (*Result, error) {
	if e.debugMode {
		fmt.Printf("[DEBUG] Enhancing %s with %s\n", path, e.config.Parameters)
	}

	if dicom.IsDICOM(path) {
		return e.ProcessDICOM(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	res, err := e.ProcessBytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to enhance %s", path)
	}
	return res, nil
}

// ProcessBytes decodes an encoded image and enhances it.
func (e *Enhancer) ProcessBytes(data []byte) (*Result, error) {
	stop := e.start(OperationDecode)
	img, format, err := images.Decode(data)
	stop()
	if err != nil {
		return nil, err
	}

	res, err := e.Process(img)
	if err != nil {
		return nil, err
	}
	res.Format = format
	return res, nil
}

// Process enhances a decoded image.
//
// Arguments:
// - img: The decoded source image.
//
// Returns:
// - Result with the working and enhanced images.
// - error if the image cannot be brought to a valid working geometry or the
// transform rejects it.
func (e *Enhancer) Process(img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.Wrap(contrast.ErrInvalidImage, "image is nil")
	}

	params := e.config.Parameters
	max := params.Algorithm.DomainMax()

	stop := e.start(OperationResize)
	working, err := e.prepare(img)
	stop()
	if err != nil {
		return nil, err
	}
	b := working.Bounds()

	if e.debugMode {
		fmt.Printf("[DEBUG] Working image: %dx%d (source %dx%d), domain 0..%d\n",
			b.Dx(), b.Dy(), img.Bounds().Dx(), img.Bounds().Dy(), max)
	}

	stop = e.start(OperationSplit)
	var (
		samples []int
		hsb     *images.HSBImage
	)
	if isGray(img) {
		samples = images.GraySamples(working, max)
	} else {
		hsb = images.SplitHSB(working)
		samples = hsb.Brightness(max)
	}
	stop()

	samples = e.denoise(samples, b.Dx(), b.Dy())

	src, err := contrast.FromSamples(samples, b.Dx(), b.Dy(), max)
	if err != nil {
		return nil, err
	}

	res, err := e.transform(src)
	if err != nil {
		return nil, err
	}
	res.Working = working

	stop = e.start(OperationMerge)
	if hsb != nil {
		res.Output = hsb.Merge(res.Pipeline.Image.Pix, max)
	} else {
		res.Output = images.GrayImage(res.Pipeline.Image.Pix, b.Dx(), b.Dy(), max)
	}
	stop()

	return res, nil
}

// ProcessDICOM enhances the first frame of a DICOM file. With a working size
// the frame is resampled through an 8-bit gray image; at native size its
// windowed samples are cropped to the block grid without requantizing.
func (e *Enhancer) ProcessDICOM(path string) (*Result, error) {
	params := e.config.Parameters
	max := params.Algorithm.DomainMax()

	stop := e.start(OperationDecode)
	frame, err := dicom.Load(path, max)
	stop()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	stop = e.start(OperationResize)
	var (
		working image.Image
		samples []int
	)
	if e.config.Size > 0 {
		working, err = e.prepare(images.GrayImage(frame.Pix, frame.Width, frame.Height, max))
		if err == nil {
			samples = images.GraySamples(working, max)
		}
	} else {
		samples, err = e.cropSamples(frame)
	}
	stop()
	if err != nil {
		return nil, err
	}

	var w, h int
	if working != nil {
		w, h = working.Bounds().Dx(), working.Bounds().Dy()
	} else {
		w, h = images.AlignToBlocks(frame.Width, frame.Height, params.EffectiveBlockSize())
		working = images.GrayImage(samples, w, h, max)
	}

	if e.debugMode {
		fmt.Printf("[DEBUG] DICOM frame: %dx%d, working %dx%d\n", frame.Width, frame.Height, w, h)
	}

	src, err := contrast.FromSamples(e.denoise(samples, w, h), w, h, max)
	if err != nil {
		return nil, err
	}

	res, err := e.transform(src)
	if err != nil {
		return nil, err
	}
	res.Working = working
	res.Output = images.GrayImage(res.Pipeline.Image.Pix, w, h, max)
	return res, nil
}

// cropSamples keeps the top-left region of img that the block grid tiles.
func (e *Enhancer) cropSamples(img *contrast.Image) ([]int, error) {
	bs := e.config.Parameters.EffectiveBlockSize()
	w, h := images.AlignToBlocks(img.Width, img.Height, bs)
	if w == 0 || h == 0 {
		return nil, errors.Wrapf(contrast.ErrInvalidImage, "%dx%d frame is smaller than the %d block grid", img.Width, img.Height, bs)
	}
	out := make([]int, 0, w*h)
	for y := 0; y < h; y++ {
		out = append(out, img.Pix[y*img.Width:y*img.Width+w]...)
	}
	return out, nil
}

// Tensor exports the enhanced samples as a [1, H, W] float32 tensor in [0, 1].
//
// @example
// t, err := enhance.Tensor(res)
// fmt.Println(t.Shape()) // (1, 512, 512)
func Tensor(res *Result) (*tensor.Dense, error) {
	if res == nil || res.Pipeline == nil || res.Pipeline.Image == nil {
		return nil, errors.New("result holds no enhanced image")
	}
	img := res.Pipeline.Image
	return images.SamplesToTensor(img.Pix, img.Width, img.Height, img.Max)
}

// transform runs the configured pipeline on src and the optional reference.
func (e *Enhancer) transform(src *contrast.Image) (*Result, error) {
	t, err := contrast.NewTransformer(src, e.config.Parameters)
	if err != nil {
		return nil, err
	}
	if e.recorder != nil {
		t.SetTimer(e.recorder)
	}

	stop := e.start(OperationTransform)
	out, err := t.Run()
	stop()
	if err != nil {
		return nil, err
	}

	e.recordTiles(out)

	res := &Result{Format: images.FormatUnknown, Source: src, Pipeline: out}

	if e.config.CompareOpenCV {
		stop = e.start(OperationReference)
		ref, err := e.reference(src)
		stop()
		if err != nil {
			return nil, errors.Wrap(err, "reference CLAHE failed")
		}
		res.Reference = ref
	}

	return res, nil
}

// reference runs OpenCV's CLAHE with the same tile count.
func (e *Enhancer) reference(src *contrast.Image) (*contrast.Image, error) {
	tiles := e.config.Parameters.EffectiveBlockSize()
	samples, err := images.ReferenceCLAHE(src.Pix, src.Width, src.Height, src.Max, e.config.OpenCVClipLimit, tiles)
	if err != nil {
		return nil, err
	}
	ref, err := contrast.FromSamples(samples, src.Width, src.Height, src.Max)
	if err != nil {
		return nil, err
	}

	if e.debugMode {
		if sum, err := images.SamplesChecksum(ref.Pix, ref.Width, ref.Height, ref.Max); err == nil {
			fmt.Printf("[DEBUG] OpenCV CLAHE checksum: %s (clip %.2f, %dx%d tiles)\n", sum, e.config.OpenCVClipLimit, tiles, tiles)
		}
	}
	return ref, nil
}

// denoise box-smooths the intensity plane when a radius is configured.
func (e *Enhancer) denoise(samples []int, width, height int) []int {
	r := e.config.DenoiseRadius
	if r <= 0 {
		return samples
	}
	if e.debugMode {
		fmt.Printf("[DEBUG] Applied denoising with radius: %d\n", r)
	}
	defer e.start(OperationDenoise)()
	return images.BoxSmooth(samples, width, height, r, images.EdgeMirror)
}

// recordTiles reports per-run tile metrics.
func (e *Enhancer) recordTiles(out *contrast.Result) {
	clipped := 0
	for _, c := range out.Clips {
		clipped += c.Clipped
	}

	if e.recorder != nil {
		e.recorder.RecordMetric("degenerate_tiles", float64(out.Degenerate))
		e.recorder.RecordMetric("clipped_mass", float64(clipped))
	}
	if e.debugMode {
		fmt.Printf("[DEBUG] Tiles: %d, degenerate: %d, clipped mass: %d, Lmax: %d, Lalpha: %d\n",
			out.Grid.TileCount(), out.Degenerate, clipped, out.Global.Lmax, out.Global.Lalpha)
	}
}

// prepare brings img to the working geometry: the configured square size, or
// the native size cropped to a multiple of the block size.
func (e *Enhancer) prepare(img image.Image) (image.Image, error) {
	if e.config.Size > 0 {
		return images.ResizeToWorking(img, e.config.Size, e.config.Filter)
	}

	b := img.Bounds()
	w, h := images.AlignToBlocks(b.Dx(), b.Dy(), e.config.Parameters.EffectiveBlockSize())
	if w == 0 || h == 0 {
		return nil, errors.Wrapf(contrast.ErrInvalidImage, "%dx%d image is smaller than the %d block grid",
			b.Dx(), b.Dy(), e.config.Parameters.EffectiveBlockSize())
	}
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}
	return crop(img, w, h), nil
}

func (e *Enhancer) start(name string) func() {
	if e.recorder == nil {
		return func() {}
	}
	return e.recorder.StartOperation(name)
}

// crop copies the top-left w x h region of img.
func crop(img image.Image, w, h int) image.Image {
	rect := image.Rect(0, 0, w, h)
	if g, ok := img.(*image.Gray); ok {
		dst := image.NewGray(rect)
		draw.Draw(dst, rect, g, g.Bounds().Min, draw.Src)
		return dst
	}
	dst := image.NewRGBA(rect)
	draw.Draw(dst, rect, img, img.Bounds().Min, draw.Src)
	return dst
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}
