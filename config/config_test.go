package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-clahe/contrast"
	"github.com/nvr-ai/go-clahe/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, contrast.DefaultParameters(contrast.AlgorithmCLAHE), cfg.Parameters)
	assert.Equal(t, contrast.WorkingSize, cfg.Size)
	assert.Equal(t, images.NearestNeighborFilter, cfg.Filter)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func() Config
		wantErr bool
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			want: DefaultConfig,
		},
		{
			name: "algorithm fills its own defaults",
			yaml: "parameters:\n  algorithm: aclahe-dgc\n",
			want: func() Config {
				cfg := DefaultConfig()
				cfg.Parameters = contrast.DefaultParameters(contrast.AlgorithmACLAHEDGC)
				return cfg
			},
		},
		{
			name: "explicit values override",
			yaml: "parameters:\n  algorithm: aclahe\n  block_size: 8\n  p: 3\nsize: 256\nfilter: bilinear\ncompare_opencv: true\n",
			want: func() Config {
				cfg := DefaultConfig()
				cfg.Parameters = contrast.Parameters{Algorithm: contrast.AlgorithmACLAHE, BlockSize: 8, Alpha: 100, P: 3}
				cfg.Size = 256
				cfg.Filter = images.BilinearFilter
				cfg.CompareOpenCV = true
				return cfg
			},
		},
		{
			name:    "block size does not divide size",
			yaml:    "parameters:\n  algorithm: clahe\n  block_size: 3\n",
			wantErr: true,
		},
		{
			name:    "unknown filter",
			yaml:    "filter: sinc\n",
			wantErr: true,
		},
		{
			name:    "malformed",
			yaml:    "parameters: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want(), *cfg)
		})
	}
}

func TestParseRejectsInvalidParameter(t *testing.T) {
	for _, doc := range []string{
		"parameters:\n  algorithm: clahe\n  alpha: -1\n",
		"denoise_radius: -2\n",
		"size: -1\n",
	} {
		_, err := Parse([]byte(doc))
		assert.True(t, contrast.IsInvalidParameter(err), doc)
	}
}

func TestSaveLoadParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	p := contrast.Parameters{Algorithm: contrast.AlgorithmACLAHEDGC, BlockSize: 4, Alpha: 250, P: 2, D: 30}

	require.NoError(t, SaveParameters(path, p))

	got, err := LoadParameters(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNativeSizeSkipsGeometryCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "native.yaml")
	require.NoError(t, os.WriteFile(path, []byte("size: 0\nparameters:\n  algorithm: clahe\n  block_size: 3\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Size)
	assert.Equal(t, 3, cfg.Parameters.BlockSize)
}
