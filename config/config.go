// Package config - YAML configuration for contrast enhancement runs.
package config

import (
	"os"

	"github.com/nvr-ai/go-clahe/contrast"
	"github.com/nvr-ai/go-clahe/images"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes one enhancement run: the algorithm parameters plus how the
// source is brought to the working resolution.
type Config struct {
	// Parameters selects the algorithm and its knobs.
	Parameters contrast.Parameters `json:"parameters" yaml:"parameters"`
	// Size is the square working resolution. Zero keeps the native size,
	// cropped to a multiple of the block size.
	Size int `json:"size" yaml:"size"`
	// Filter is the resampling filter used to reach Size.
	Filter images.ResampleFilter `json:"filter" yaml:"filter"`
	// CompareOpenCV also runs OpenCV's CLAHE on the same samples.
	CompareOpenCV bool `json:"compare_opencv" yaml:"compare_opencv"`
	// OpenCVClipLimit is the clip limit passed to OpenCV's CLAHE.
	OpenCVClipLimit float64 `json:"opencv_clip_limit" yaml:"opencv_clip_limit"`
	// DenoiseRadius box-smooths the intensity plane before the transform; 0 disables.
	DenoiseRadius int `json:"denoise_radius" yaml:"denoise_radius"`
}

// DefaultConfig returns the configuration of a CLAHE run at 512x512.
//
// Returns:
// - Config with default parameters for CLAHE and nearest-neighbour sampling.
//
// @example
// cfg := config.DefaultConfig()
// cfg.Parameters = contrast.DefaultParameters(contrast.AlgorithmACLAHEDGC)
func DefaultConfig() Config {
	return Config{
		Parameters:      contrast.DefaultParameters(contrast.AlgorithmCLAHE),
		Size:            contrast.WorkingSize,
		Filter:          images.NearestNeighborFilter,
		OpenCVClipLimit: 2.0,
	}
}

// Validate checks the fields that do not depend on a particular image.
func (c Config) Validate() error {
	if c.Size < 0 {
		return errors.Wrapf(contrast.ErrInvalidParameter, "size must be >= 0, got %d", c.Size)
	}
	if _, err := images.ParseResampleFilter(string(c.Filter)); err != nil {
		return errors.Wrap(contrast.ErrInvalidParameter, err.Error())
	}
	if c.Size > 0 {
		if err := c.Parameters.Validate(c.Size, c.Size); err != nil {
			return err
		}
	} else if err := c.Parameters.Validate(c.Parameters.EffectiveBlockSize(), c.Parameters.EffectiveBlockSize()); err != nil {
		return err
	}
	if c.DenoiseRadius < 0 {
		return errors.Wrapf(contrast.ErrInvalidParameter, "denoise radius must be >= 0, got %d", c.DenoiseRadius)
	}
	if c.OpenCVClipLimit < 0 {
		return errors.Wrapf(contrast.ErrInvalidParameter, "opencv clip limit must be >= 0, got %g", c.OpenCVClipLimit)
	}
	return nil
}

// Parse decodes YAML over DefaultConfig. When the document names an
// algorithm, parameters it leaves out take that algorithm's defaults.
//
// Arguments:
// - data: YAML document.
//
// Returns:
// - *Config: The merged configuration.
// - error: On malformed YAML or invalid values.
func Parse(data []byte) (*Config, error) {
	var head struct {
		Parameters struct {
			Algorithm contrast.Algorithm `yaml:"algorithm"`
		} `yaml:"parameters"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg := DefaultConfig()
	if head.Parameters.Algorithm != "" {
		cfg.Parameters = contrast.DefaultParameters(head.Parameters.Algorithm)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// SaveConfig writes cfg to filename as YAML.
func SaveConfig(filename string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return errors.Wrap(os.WriteFile(filename, data, 0o644), "failed to write config file")
}

// LoadParameters reads only the parameters section of a configuration file.
func LoadParameters(filename string) (contrast.Parameters, error) {
	cfg, err := LoadConfig(filename)
	if err != nil {
		return contrast.Parameters{}, err
	}
	return cfg.Parameters, nil
}

// SaveParameters writes p as a configuration file with default run settings.
func SaveParameters(filename string, p contrast.Parameters) error {
	cfg := DefaultConfig()
	cfg.Parameters = p
	return SaveConfig(filename, cfg)
}
