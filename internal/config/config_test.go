package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/paveg/plotdeck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, ":8050", cfg.ListenAddress)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, 16*datasize.MB, cfg.MaxUploadSize)
	assert.Equal(t, 30, cfg.HistogramBins)
	assert.Equal(t, 5, cfg.CategoryValues)
	assert.Equal(t, 10, cfg.MaxCategories)
	assert.Equal(t, 10, cfg.PreviewColumns)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{"valid config", func(*config.Config) {}, ""},
		{"zero bins", func(c *config.Config) { c.HistogramBins = 0 }, "HistogramBins must be positive, got 0"},
		{"negative categories", func(c *config.Config) { c.MaxCategories = -1 }, "MaxCategories must be positive, got -1"},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }, `LogLevel must be one of debug, info, warn, error, got "loud"`},
		{"bad format", func(c *config.Config) { c.LogFormat = "xml" }, `LogFormat must be logfmt or json, got "xml"`},
		{"bad colour", func(c *config.Config) { c.Palette = []string{"red"} }, `Palette entries must be #rrggbb, got "red"`},
		{"no upload size", func(c *config.Config) { c.MaxUploadSize = 0 }, "MaxUploadSize must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := config.Config{HistogramBins: 12, LogLevel: "debug"}.WithDefaults()

	assert.Equal(t, 12, cfg.HistogramBins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.DefaultListenAddress, cfg.ListenAddress)
	assert.Equal(t, config.DefaultMaxUploadSize, cfg.MaxUploadSize)
	assert.False(t, cfg.MetricsEnabled)
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "plotdeck.yaml")
		content := `listen_address: "127.0.0.1:9000"
max_upload_size: 2MB
read_header_timeout: 3s
histogram_bins: 20
metrics_enabled: false
palette:
  - "#112233"
  - "#445566"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
		assert.Equal(t, 2*datasize.MB, cfg.MaxUploadSize)
		assert.Equal(t, 3*time.Second, cfg.ReadHeaderTimeout)
		assert.Equal(t, 20, cfg.HistogramBins)
		assert.False(t, cfg.MetricsEnabled)
		assert.Equal(t, []string{"#112233", "#445566"}, cfg.Palette)
		assert.Equal(t, config.DefaultCategoryValues, cfg.CategoryValues)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "plotdeck.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"upload_dir": "/tmp/up", "max_upload_size": "512KB"}`), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/up", cfg.UploadDir)
		assert.Equal(t, 512*datasize.KB, cfg.MaxUploadSize)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "plotdeck.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

		_, err := config.LoadFromFile(path)
		assert.EqualError(t, err, "unsupported config file format: .toml")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFromFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"PLOTDECK_LISTEN_ADDRESS":  ":7000",
		"PLOTDECK_MAX_UPLOAD_SIZE": "1MB",
		"PLOTDECK_HISTOGRAM_BINS":  "15",
		"PLOTDECK_METRICS_ENABLED": "false",
		"PLOTDECK_PALETTE":         "#000000,#ffffff",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := config.NewConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, ":7000", cfg.ListenAddress)
	assert.Equal(t, datasize.MB, cfg.MaxUploadSize)
	assert.Equal(t, 15, cfg.HistogramBins)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"#000000", "#ffffff"}, cfg.Palette)

	env["PLOTDECK_HISTOGRAM_BINS"] = "many"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestLoad(t *testing.T) {
	t.Setenv("PLOTDECK_LOG_LEVEL", "loud")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "invalid configuration")
}
