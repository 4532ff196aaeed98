// Package config provides configuration types and defaults for icecale.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default constants
const (
	// DefaultMaxWidth is the widest output the assembler will produce.
	DefaultMaxWidth = 2560

	// DefaultMaxHeight is the tallest output the assembler will produce.
	DefaultMaxHeight = 1440

	// DefaultModel is the super-resolution model passed to the upscaler.
	DefaultModel = "realesrgan-x4plus"

	// DefaultScale is the integer upscale factor.
	DefaultScale = 4

	// DefaultGPUID is the device index passed to the upscaler.
	DefaultGPUID = 0

	// DefaultVideoCodec is the hardware encoder used for reassembly.
	DefaultVideoCodec = "h264_nvenc"

	// DefaultEncoderPreset is the NVENC preset.
	DefaultEncoderPreset = "p3"

	// DefaultPixelFormat is the output pixel format.
	DefaultPixelFormat = "yuv420p"

	// DefaultFrameRate is declared when the probe reports no frame rate.
	DefaultFrameRate = "30"

	// DefaultWorkspaceName is the workspace directory under the temp root.
	DefaultWorkspaceName = "icecale-work"

	// MinScale and MaxScale bound the upscale factor.
	MinScale = 2
	MaxScale = 4

	// ConfigFileName is the optional YAML file read from the executable directory.
	ConfigFileName = "icecale.yaml"

	// EnvFileName is the optional dotenv file read from the executable directory.
	EnvFileName = ".env"
)

// Tool names of the external collaborators.
const (
	ToolGPUProbe = "nvidia-smi"
	ToolFFmpeg   = "ffmpeg"
	ToolFFprobe  = "ffprobe"
	ToolUpscaler = "realesrgan-ncnn-vulkan"
)

// Environment variables that override file settings.
const (
	EnvToolsDir     = "ICECALE_TOOLS_DIR"
	EnvLogDir       = "ICECALE_LOG_DIR"
	EnvVerbose      = "ICECALE_VERBOSE"
	EnvStageTimeout = "ICECALE_STAGE_TIMEOUT"
	EnvGPU          = "ICECALE_GPU"
	EnvWorkDir      = "ICECALE_WORK_DIR"
	EnvProgress     = "ICECALE_PROGRESS"
)

// Progress output formats.
const (
	ProgressTerminal = "terminal"
	ProgressJSON     = "json"
)

// Config holds all configuration for a pipeline run.
type Config struct {
	// Resolution cap
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`

	// Upscaler parameters
	Model string `yaml:"model"`
	Scale int    `yaml:"scale"`
	GPUID int    `yaml:"gpu"`

	// Encoder parameters
	VideoCodec       string `yaml:"video_codec"`
	EncoderPreset    string `yaml:"encoder_preset"`
	PixelFormat      string `yaml:"pixel_format"`
	DefaultFrameRate string `yaml:"default_frame_rate"`

	// Tool discovery
	ToolsDir string `yaml:"tools_dir"`

	// Workspace location; WorkDir defaults to the system temp directory
	WorkDir       string `yaml:"work_dir"`
	WorkspaceName string `yaml:"workspace_name"`

	// StageTimeout bounds every external invocation. Zero means no limit.
	StageTimeout time.Duration `yaml:"stage_timeout"`

	// Logging
	LogDir  string `yaml:"log_dir"`
	Verbose bool   `yaml:"verbose"`

	// ProgressFormat selects terminal or NDJSON progress on stdout.
	ProgressFormat string `yaml:"progress_format"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxWidth:         DefaultMaxWidth,
		MaxHeight:        DefaultMaxHeight,
		Model:            DefaultModel,
		Scale:            DefaultScale,
		GPUID:            DefaultGPUID,
		VideoCodec:       DefaultVideoCodec,
		EncoderPreset:    DefaultEncoderPreset,
		PixelFormat:      DefaultPixelFormat,
		DefaultFrameRate: DefaultFrameRate,
		WorkspaceName:    DefaultWorkspaceName,
		ProgressFormat:   ProgressTerminal,
	}
}

// Load builds a Config from defaults, then icecale.yaml and .env in dir,
// then the process environment. Missing files are not an error.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if dir != "" {
		if err := cfg.LoadFile(filepath.Join(dir, ConfigFileName)); err != nil {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if dir != "" {
		envPath := filepath.Join(dir, EnvFileName)
		if _, err := os.Stat(envPath); err == nil {
			vars, err := godotenv.Read(envPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
			}
			dotenv = vars
		}
	}

	// Real environment variables win over the dotenv file.
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges YAML settings from path into c. A missing file is ignored.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies ICECALE_* overrides obtained from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvToolsDir); ok && v != "" {
		c.ToolsDir = v
	}
	if v, ok := lookup(EnvLogDir); ok && v != "" {
		c.LogDir = v
	}
	if v, ok := lookup(EnvWorkDir); ok && v != "" {
		c.WorkDir = v
	}
	if v, ok := lookup(EnvProgress); ok && v != "" {
		c.ProgressFormat = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvVerbose); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvVerbose, v)
		}
		c.Verbose = b
	}
	if v, ok := lookup(EnvStageTimeout); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvStageTimeout, v)
		}
		c.StageTimeout = d
	}
	if v, ok := lookup(EnvGPU); ok && v != "" {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvGPU, v)
		}
		c.GPUID = id
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scale < MinScale || c.Scale > MaxScale {
		return fmt.Errorf("%w: must be %d-%d, got %d", ErrInvalidScale, MinScale, MaxScale, c.Scale)
	}

	if c.MaxWidth <= 0 || c.MaxHeight <= 0 {
		return fmt.Errorf("%w: must be positive, got %dx%d", ErrInvalidResolutionCap, c.MaxWidth, c.MaxHeight)
	}

	if c.MaxWidth%2 != 0 || c.MaxHeight%2 != 0 {
		return fmt.Errorf("%w: must be even, got %dx%d", ErrInvalidResolutionCap, c.MaxWidth, c.MaxHeight)
	}

	if c.StageTimeout < 0 {
		return fmt.Errorf("%w: must not be negative, got %s", ErrInvalidTimeout, c.StageTimeout)
	}

	if c.GPUID < 0 {
		return fmt.Errorf("%w: must not be negative, got %d", ErrInvalidGPU, c.GPUID)
	}

	if strings.TrimSpace(c.Model) == "" {
		return ErrMissingModel
	}

	if c.ProgressFormat != ProgressTerminal && c.ProgressFormat != ProgressJSON {
		return fmt.Errorf("%w: must be %q or %q, got %q", ErrInvalidProgressFormat, ProgressTerminal, ProgressJSON, c.ProgressFormat)
	}

	return nil
}

// GetWorkDir returns the workspace parent, falling back to the system temp directory.
func (c *Config) GetWorkDir() string {
	if c.WorkDir != "" {
		return c.WorkDir
	}
	return os.TempDir()
}

// FrameRateOrDefault returns the probed rate string when its parsed value
// fps is positive, otherwise the configured default.
func (c *Config) FrameRateOrDefault(raw string, fps float64) string {
	if fps > 0 && strings.TrimSpace(raw) != "" {
		return raw
	}
	if c.DefaultFrameRate != "" {
		return c.DefaultFrameRate
	}
	return DefaultFrameRate
}
