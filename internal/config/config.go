// Package config loads motioncam settings from defaults, a YAML file, a .env
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/motioncam/internal/detector"
	"github.com/ayusman/motioncam/internal/logging"
)

// ErrInvalidConfig is returned for settings that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables that override file settings.
const (
	EnvSource    = "MOTIONCAM_SOURCE"
	EnvMinArea   = "MOTIONCAM_MIN_AREA"
	EnvThreshold = "MOTIONCAM_THRESHOLD"
	EnvMethod    = "MOTIONCAM_METHOD"
	EnvAddr      = "MOTIONCAM_ADDR"
	EnvDataDir   = "MOTIONCAM_DATA_DIR"
	EnvLogLevel  = "MOTIONCAM_LOG_LEVEL"
	EnvHooksDir  = "MOTIONCAM_HOOKS_DIR"
)

// Detection holds the per-frame detector settings.
type Detection struct {
	Method           string  `yaml:"method"`
	MinArea          float64 `yaml:"min_area"`
	Threshold        float64 `yaml:"threshold"`
	BlurSize         int     `yaml:"blur_size"`
	DilateIterations int     `yaml:"dilate_iterations"`
	DetectShadows    bool    `yaml:"detect_shadows"`
}

// Config is the full application configuration.
type Config struct {
	Source           string        `yaml:"source"`
	FPS              int           `yaml:"fps"`
	ExitOnEOF        bool          `yaml:"exit_on_eof"`
	Addr             string        `yaml:"addr"`
	DataDir          string        `yaml:"data_dir"`
	RecordingsDir    string        `yaml:"recordings_dir"`
	LogDir           string        `yaml:"log_dir"`
	LogLevel         string        `yaml:"log_level"`
	HooksDir         string        `yaml:"hooks_dir"`
	HookTimeout      time.Duration `yaml:"hook_timeout"`
	HookInterval     time.Duration `yaml:"hook_interval"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	Detection        Detection     `yaml:"detection"`
}

// Default returns the high-sensitivity watch settings: device 0, minimum
// area 10, threshold 10, 5x5 blur and background subtraction.
func Default() *Config {
	d := detector.DefaultConfig()
	return &Config{
		Source:           "0",
		FPS:              15,
		ExitOnEOF:        true,
		Addr:             ":8080",
		DataDir:          "data",
		RecordingsDir:    "recordings",
		LogDir:           "logs",
		LogLevel:         "info",
		HooksDir:         "hooks",
		HookTimeout:      5 * time.Second,
		HookInterval:     5 * time.Second,
		SnapshotInterval: time.Second,
		Detection: Detection{
			Method:           d.Method,
			MinArea:          d.MinArea,
			Threshold:        d.Threshold,
			BlurSize:         d.BlurSize,
			DilateIterations: d.DilateIterations,
			DetectShadows:    d.DetectShadows,
		},
	}
}

// Load reads path (optional) and ./.env, then applies environment overrides.
func Load(path string) (*Config, error) {
	return LoadFiles(path, ".env")
}

// LoadFiles is Load with an explicit .env location. A missing .env is not an
// error; a missing YAML file is, when path is set.
func LoadFiles(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvSource); ok {
		c.Source = v
	}
	if v, ok := lookup(EnvMethod); ok {
		c.Detection.Method = v
	}
	if v, ok := lookup(EnvAddr); ok {
		c.Addr = v
	}
	if v, ok := lookup(EnvDataDir); ok {
		c.DataDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvHooksDir); ok {
		c.HooksDir = v
	}
	if v, ok := lookup(EnvMinArea); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvMinArea, v)
		}
		c.Detection.MinArea = f
	}
	if v, ok := lookup(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvThreshold, v)
		}
		c.Detection.Threshold = f
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks every numeric and enumerated setting.
func (c *Config) Validate() error {
	d := c.Detection

	if math.IsNaN(d.MinArea) || math.IsInf(d.MinArea, 0) || d.MinArea < 0 {
		return fmt.Errorf("%w: min_area must be a non-negative number, got %v", ErrInvalidConfig, d.MinArea)
	}
	if math.IsNaN(d.Threshold) || d.Threshold < 0 || d.Threshold > 255 {
		return fmt.Errorf("%w: threshold must be between 0 and 255, got %v", ErrInvalidConfig, d.Threshold)
	}
	if d.BlurSize < 0 {
		return fmt.Errorf("%w: blur_size must not be negative, got %d", ErrInvalidConfig, d.BlurSize)
	}
	if d.DilateIterations < 0 {
		return fmt.Errorf("%w: dilate_iterations must not be negative, got %d", ErrInvalidConfig, d.DilateIterations)
	}
	switch d.Method {
	case detector.MethodBackgroundSubtraction, detector.MethodFrameDifference:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidConfig, detector.ErrUnknownMethod)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.SnapshotInterval < 0 {
		return fmt.Errorf("%w: snapshot_interval must not be negative", ErrInvalidConfig)
	}
	if c.HookInterval < 0 {
		return fmt.Errorf("%w: hook_interval must not be negative", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DetectorConfig converts the detection settings for detector.New.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		Method:           c.Detection.Method,
		MinArea:          c.Detection.MinArea,
		Threshold:        c.Detection.Threshold,
		BlurSize:         c.Detection.BlurSize,
		DilateIterations: c.Detection.DilateIterations,
		DetectShadows:    c.Detection.DetectShadows,
	}
}

// LoggingOptions converts the log settings for logging.New.
func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.LogLevel
	opts.Dir = c.LogDir
	return opts
}

// DBPath returns the event database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "motioncam.db")
}
