// Package config provides configuration for the plotdeck server and CLI
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the server and the chart engine
type Config struct {
	// Server
	ListenAddress     string        `json:"listen_address" yaml:"listen_address"`           // host:port the HTTP server binds
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout"` // Slowloris guard
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`       // Grace period on SIGTERM

	// Uploads
	UploadDir     string            `json:"upload_dir" yaml:"upload_dir"`           // Directory for stored uploads
	MaxUploadSize datasize.ByteSize `json:"max_upload_size" yaml:"max_upload_size"` // e.g. "16MB"

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level"`   // debug, info, warn or error
	LogFormat string `json:"log_format" yaml:"log_format"` // logfmt or json

	// Chart engine
	HistogramBins   int      `json:"histogram_bins" yaml:"histogram_bins"`       // Equal-width bins per histogram
	CategoryValues  int      `json:"category_values" yaml:"category_values"`     // Default selected categorical values
	MaxCategories   int      `json:"max_categories" yaml:"max_categories"`       // Categories kept in grouped histograms
	PreviewColumns  int      `json:"preview_columns" yaml:"preview_columns"`     // Columns shown in the raw preview
	Palette         []string `json:"palette,omitempty" yaml:"palette,omitempty"` // Hex colours cycled by index
	MetricsEnabled  bool     `json:"metrics_enabled" yaml:"metrics_enabled"`     // Record pipeline stage timings
}

// Default configuration values
const (
	DefaultListenAddress     = ":8050"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultUploadDir         = "uploads"
	DefaultMaxUploadSize     = 16 * datasize.MB
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "logfmt"
	DefaultHistogramBins     = 30
	DefaultCategoryValues    = 5
	DefaultMaxCategories     = 10
	DefaultPreviewColumns    = 10
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PLOTDECK_"

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		ListenAddress:     DefaultListenAddress,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		UploadDir:         DefaultUploadDir,
		MaxUploadSize:     DefaultMaxUploadSize,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		HistogramBins:     DefaultHistogramBins,
		CategoryValues:    DefaultCategoryValues,
		MaxCategories:     DefaultMaxCategories,
		PreviewColumns:    DefaultPreviewColumns,
		MetricsEnabled:    true,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("ListenAddress must not be empty")
	}
	if c.UploadDir == "" {
		return errors.New("UploadDir must not be empty")
	}
	if c.MaxUploadSize == 0 {
		return errors.New("MaxUploadSize must be positive")
	}
	if c.ReadHeaderTimeout < 0 {
		return fmt.Errorf("ReadHeaderTimeout must be non-negative, got %s", c.ReadHeaderTimeout)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("HistogramBins must be positive, got %d", c.HistogramBins)
	}
	if c.CategoryValues <= 0 {
		return fmt.Errorf("CategoryValues must be positive, got %d", c.CategoryValues)
	}
	if c.MaxCategories <= 0 {
		return fmt.Errorf("MaxCategories must be positive, got %d", c.MaxCategories)
	}
	if c.PreviewColumns <= 0 {
		return fmt.Errorf("PreviewColumns must be positive, got %d", c.PreviewColumns)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LogLevel must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "logfmt", "json":
	default:
		return fmt.Errorf("LogFormat must be logfmt or json, got %q", c.LogFormat)
	}
	for _, colour := range c.Palette {
		if !isHexColour(colour) {
			return fmt.Errorf("Palette entries must be #rrggbb, got %q", colour)
		}
	}
	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ListenAddress == "" {
		c.ListenAddress = defaults.ListenAddress
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.UploadDir == "" {
		c.UploadDir = defaults.UploadDir
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = defaults.MaxUploadSize
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}
	if c.HistogramBins == 0 {
		c.HistogramBins = defaults.HistogramBins
	}
	if c.CategoryValues == 0 {
		c.CategoryValues = defaults.CategoryValues
	}
	if c.MaxCategories == 0 {
		c.MaxCategories = defaults.MaxCategories
	}
	if c.PreviewColumns == 0 {
		c.PreviewColumns = defaults.PreviewColumns
	}

	// MetricsEnabled is left alone so an explicit false survives

	return c
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config file %s", filename)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, errors.Wrapf(err, "parsing config file %s", filename)
	}

	return config.WithDefaults(), nil
}

// ApplyEnv overrides fields from PLOTDECK_* variables found by lookup,
// normally os.LookupEnv
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if val, ok := lookup(EnvPrefix + key); ok && val != "" {
			*dst = val
		}
	}
	integer := func(key string, dst *int) error {
		val, ok := lookup(EnvPrefix + key)
		if !ok || val == "" {
			return nil
		}
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return errors.Wrapf(err, "parsing %s%s", EnvPrefix, key)
		}
		*dst = parsed
		return nil
	}

	str("LISTEN_ADDRESS", &c.ListenAddress)
	str("UPLOAD_DIR", &c.UploadDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if val, ok := lookup(EnvPrefix + "MAX_UPLOAD_SIZE"); ok && val != "" {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(val)); err != nil {
			return errors.Wrapf(err, "parsing %sMAX_UPLOAD_SIZE", EnvPrefix)
		}
		c.MaxUploadSize = size
	}

	if val, ok := lookup(EnvPrefix + "READ_HEADER_TIMEOUT"); ok && val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return errors.Wrapf(err, "parsing %sREAD_HEADER_TIMEOUT", EnvPrefix)
		}
		c.ReadHeaderTimeout = parsed
	}

	for key, dst := range map[string]*int{
		"HISTOGRAM_BINS":  &c.HistogramBins,
		"CATEGORY_VALUES": &c.CategoryValues,
		"MAX_CATEGORIES":  &c.MaxCategories,
		"PREVIEW_COLUMNS": &c.PreviewColumns,
	} {
		if err := integer(key, dst); err != nil {
			return err
		}
	}

	if val, ok := lookup(EnvPrefix + "METRICS_ENABLED"); ok && val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return errors.Wrapf(err, "parsing %sMETRICS_ENABLED", EnvPrefix)
		}
		c.MetricsEnabled = parsed
	}

	if val, ok := lookup(EnvPrefix + "PALETTE"); ok && val != "" {
		c.Palette = strings.Split(val, ",")
	}

	return nil
}

// Load reads filename when it is non-empty, applies environment overrides
// and validates the result
func Load(filename string) (Config, error) {
	config := NewConfig()
	if filename != "" {
		var err error
		if config, err = LoadFromFile(filename); err != nil {
			return Config{}, err
		}
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := config.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

func isHexColour(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}
