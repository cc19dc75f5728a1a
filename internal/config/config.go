package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Label    LabelConfig    `yaml:"label"`
	Fade     FadeConfig     `yaml:"fade"`
	Timezone TimezoneConfig `yaml:"timezone"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig selects the clips. Files, when set, is used instead of Folder.
type InputConfig struct {
	Folder string   `yaml:"folder"`
	Files  []string `yaml:"files,omitempty"`
}

type OutputConfig struct {
	Folder   string `yaml:"folder"`
	FileName string `yaml:"file_name"`
}

// Path returns the merged output file path
func (o OutputConfig) Path() string {
	return filepath.Join(o.Folder, o.FileName)
}

// LabelConfig styles the date label drawn in the bottom-left corner
type LabelConfig struct {
	FontFile   string `yaml:"font_file"`
	FontSize   int    `yaml:"font_size"`
	FontColor  string `yaml:"font_color"`
	MarginX    int    `yaml:"margin_x"`
	MarginY    int    `yaml:"margin_y"`
	DateFormat string `yaml:"date_format"`
}

type FadeConfig struct {
	Duration float64 `yaml:"duration"`
}

// TimezoneConfig names the zone the camera clock was set to and the zone
// labels are shown in. Values are IANA names such as Europe/London.
type TimezoneConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Locations loads the source and target zones
func (tz TimezoneConfig) Locations() (source, target *time.Location, err error) {
	source, err = time.LoadLocation(tz.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid source timezone %q: %w", tz.Source, err)
	}
	target, err = time.LoadLocation(tz.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid target timezone %q: %w", tz.Target, err)
	}
	return source, target, nil
}

type FFmpegConfig struct {
	BinaryPath string       `yaml:"binary_path"`
	ProbePath  string       `yaml:"probe_path"`
	Threads    int          `yaml:"threads"`
	Encode     EncodeConfig `yaml:"encode"`
}

type EncodeConfig struct {
	VideoCodec  string `yaml:"video_codec"`
	Preset      string `yaml:"preset"`
	RateControl string `yaml:"rate_control"`
	CQ          int    `yaml:"cq"`
	Profile     string `yaml:"profile"`
	PixelFormat string `yaml:"pixel_format"`
}

type LogConfig struct {
	// File receives JSON log lines in addition to the console. Empty disables it.
	File string `yaml:"file"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports every setting that would make a run impossible
func (c *Config) Validate() error {
	var errs []error

	if c.Input.Folder == "" && len(c.Input.Files) == 0 {
		errs = append(errs, errors.New("input: folder or files is required"))
	}
	if c.Output.FileName == "" {
		errs = append(errs, errors.New("output: file_name is required"))
	}
	if c.Label.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("label: font_size must be positive, got %d", c.Label.FontSize))
	}
	if c.Fade.Duration < 0 {
		errs = append(errs, fmt.Errorf("fade: duration must not be negative, got %g", c.Fade.Duration))
	}
	if c.FFmpeg.Threads < 0 {
		errs = append(errs, fmt.Errorf("ffmpeg: threads must not be negative, got %d", c.FFmpeg.Threads))
	}
	if _, _, err := c.Timezone.Locations(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	return errors.Join(errs...)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Folder: "inputs",
		},
		Output: OutputConfig{
			Folder:   "outputs",
			FileName: "output.mp4",
		},
		Label: LabelConfig{
			FontFile:   "fonts/NotoSans_Condensed-Medium.ttf",
			FontSize:   52,
			FontColor:  "white",
			MarginX:    40,
			MarginY:    40,
			DateFormat: "2006-01-02 15:04",
		},
		Fade: FadeConfig{
			Duration: 1.0,
		},
		Timezone: TimezoneConfig{
			Source: "Europe/London",
			Target: "Europe/London",
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Encode: EncodeConfig{
				VideoCodec:  "h264_nvenc",
				Preset:      "p6",
				RateControl: "vbr",
				CQ:          18,
				Profile:     "high",
				PixelFormat: "yuv420p",
			},
		},
		Log: LogConfig{
			File: "logs/log.txt",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".clipmerge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
