package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvr-ai/go-clahe/config"
	"github.com/nvr-ai/go-clahe/contrast"
	"github.com/nvr-ai/go-clahe/enhance"
	"github.com/nvr-ai/go-clahe/images"
	"github.com/nvr-ai/go-clahe/profiler"
	"github.com/nvr-ai/go-clahe/util"
)

// DefaultOutputDir receives enhanced images when -output is not given.
const DefaultOutputDir = "enhanced"

func main() {
	var (
		inputPath     string
		outputPath    string
		configPath    string
		algorithm     string
		blockSize     int
		alpha         int
		p             int
		smax          int
		d             int
		size          int
		filter        string
		compareOpenCV bool
		denoise       int
		profile       bool
		debug         bool
	)
	flag.StringVar(&inputPath, "input", "", "Source image, DICOM file or directory")
	flag.StringVar(&outputPath, "output", "", "Output file, or directory when -input is a directory")
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&algorithm, "algorithm", string(contrast.AlgorithmCLAHE), "none, he, clahe, aclahe or aclahe-dgc")
	flag.IntVar(&blockSize, "block-size", 0, "Tiles per axis")
	flag.IntVar(&alpha, "alpha", 0, "Clip strength in percent")
	flag.IntVar(&p, "p", 0, "Brightness weight of the adaptive clip limit")
	flag.IntVar(&smax, "smax", 0, "Maximum slope of the fixed clip limit")
	flag.IntVar(&d, "d", 0, "Dynamic range threshold of the dual-gamma mapping, in percent")
	flag.IntVar(&size, "size", contrast.WorkingSize, "Square working resolution, 0 keeps the native size")
	flag.StringVar(&filter, "filter", string(images.NearestNeighborFilter), "Resample filter: nearest, bilinear, bicubic, lanczos, mitchell")
	flag.BoolVar(&compareOpenCV, "compare-opencv", false, "Also write OpenCV's CLAHE of the same samples")
	flag.IntVar(&denoise, "denoise", 0, "Box smoothing radius applied before enhancement")
	flag.BoolVar(&profile, "profile", false, "Print stage timings when done")
	flag.BoolVar(&debug, "debug", false, "Enable debug output")
	flag.Parse()

	if inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := buildConfig(configPath, algorithm, blockSize, alpha, p, smax, d, size, filter, compareOpenCV, denoise)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	enhancer, err := enhance.NewEnhancer(cfg)
	if err != nil {
		log.Fatalf("Failed to create enhancer: %v", err)
	}
	enhancer.SetDebugMode(debug)

	var rec *profiler.Recorder
	if profile {
		rec = profiler.NewRecorder()
		enhancer.SetRecorder(rec)
	}

	jobs, err := planJobs(inputPath, outputPath)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Enhancing %d file(s) with %s, working size %d\n", len(jobs), cfg.Parameters, cfg.Size)

	failed := 0
	for _, j := range jobs {
		if err := run(enhancer, j); err != nil {
			log.Printf("%s: %v", j.input, err)
			failed++
			continue
		}
		fmt.Printf("  %s -> %s\n", j.input, j.output)
	}

	if rec != nil {
		fmt.Println()
		rec.WriteReport(os.Stdout)
	}

	if failed > 0 {
		log.Fatalf("%d of %d file(s) failed", failed, len(jobs))
	}
}

type job struct {
	input  string
	output string
}

// buildConfig layers explicitly set flags over the config file, or over the
// chosen algorithm's defaults when no file is given.
func buildConfig(path, algorithm string, blockSize, alpha, p, smax, d, size int, filter string, compareOpenCV bool, denoise int) (*config.Config, error) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := config.DefaultConfig()
		cfg = &def
	}

	if path == "" || set["algorithm"] {
		alg, err := contrast.ParseAlgorithm(algorithm)
		if err != nil {
			return nil, err
		}
		cfg.Parameters = contrast.DefaultParameters(alg)
	}
	if set["block-size"] {
		cfg.Parameters.BlockSize = blockSize
	}
	if set["alpha"] {
		cfg.Parameters.Alpha = alpha
	}
	if set["p"] {
		cfg.Parameters.P = p
	}
	if set["smax"] {
		cfg.Parameters.Smax = smax
	}
	if set["d"] {
		cfg.Parameters.D = d
	}
	if path == "" || set["size"] {
		cfg.Size = size
	}
	if path == "" || set["filter"] {
		cfg.Filter = images.ResampleFilter(filter)
	}
	if set["compare-opencv"] {
		cfg.CompareOpenCV = compareOpenCV
	}
	if set["denoise"] {
		cfg.DenoiseRadius = denoise
	}

	return cfg, cfg.Validate()
}

// planJobs pairs every source with its output path.
func planJobs(input, output string) ([]job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if output == "" {
			output = defaultOutput(input)
		}
		return []job{{input: input, output: output}}, nil
	}

	if output == "" {
		output = DefaultOutputDir
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, err
	}

	files, err := util.ListSourceFiles(input)
	if err != nil {
		return nil, err
	}
	jobs := make([]job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, job{
			input:  f.Path,
			output: filepath.Join(output, filepath.Base(defaultOutput(f.Path))),
		})
	}
	return jobs, nil
}

// defaultOutput derives "name-enhanced.ext"; DICOM sources are written as PNG.
func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if images.FormatFromPath(input) == images.FormatUnknown {
		ext = ".png"
	}
	return base + "-enhanced" + ext
}

func run(enhancer *enhance.Enhancer, j job) error {
	res, err := enhancer.ProcessFile(j.input)
	if err != nil {
		return err
	}
	if err := write(j.output, res.Output); err != nil {
		return err
	}

	if res.Reference != nil {
		ref := res.Reference
		refPath := strings.TrimSuffix(j.output, filepath.Ext(j.output)) + "-opencv.png"
		if err := write(refPath, images.GrayImage(ref.Pix, ref.Width, ref.Height, ref.Max)); err != nil {
			return err
		}
	}
	return nil
}

// write encodes img in the format implied by path's extension.
func write(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := images.Encode(f, img, images.FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
