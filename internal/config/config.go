// Package config assembles a generation request from a JSON config file,
// CAMSPHERE_* environment variables and CLI flags, in that order of
// increasing priority.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"camsphere/internal/mathutil"
	"camsphere/internal/session"
	"camsphere/internal/sphere"
)

// Config holds all configurable sphere, camera and render settings.
type Config struct {
	// Camera sphere
	Target           [3]float64 `json:"target"`
	MinRadius        float64    `json:"min_radius" env:"CAMSPHERE_MIN_RADIUS"`
	MaxRadius        float64    `json:"max_radius" env:"CAMSPHERE_MAX_RADIUS"`
	HorizontalCount  int        `json:"horizontal_count" env:"CAMSPHERE_HORIZONTAL"`
	VerticalCount    int        `json:"vertical_count" env:"CAMSPHERE_VERTICAL"`
	Distribution     string     `json:"distribution" env:"CAMSPHERE_DISTRIBUTION"`
	HalfSphere       bool       `json:"half_sphere" env:"CAMSPHERE_HALF_SPHERE"`
	FloorHeight      *float64   `json:"floor_height,omitempty" env:"CAMSPHERE_FLOOR_HEIGHT"`
	OverlapThreshold float64    `json:"overlap_threshold" env:"CAMSPHERE_OVERLAP_THRESHOLD"`

	// Camera intrinsics template
	FocalLength float64 `json:"focal_length" env:"CAMSPHERE_FOCAL_LENGTH"`
	SensorWidth float64 `json:"sensor_width" env:"CAMSPHERE_SENSOR_WIDTH"`
	ClipStart   float64 `json:"clip_start"`
	ClipEnd     float64 `json:"clip_end"`

	// Render settings
	Width       int     `json:"width" env:"CAMSPHERE_WIDTH"`
	Height      int     `json:"height" env:"CAMSPHERE_HEIGHT"`
	Samples     int     `json:"samples" env:"CAMSPHERE_SAMPLES"`
	Denoiser    string  `json:"denoiser" env:"CAMSPHERE_DENOISER"`
	AspectRatio float64 `json:"aspect_ratio"`
	Supersample int     `json:"supersample" env:"CAMSPHERE_SUPERSAMPLE"`
	OutputDir   string  `json:"output_dir" env:"CAMSPHERE_OUTPUT_DIR"`
	Plate       string  `json:"plate" env:"CAMSPHERE_PLATE"`

	// Environment lighting
	HDRIFolder    string `json:"hdri_folder" env:"CAMSPHERE_HDRI_FOLDER"`
	HDRIOverride  string `json:"hdri_override" env:"CAMSPHERE_HDRI_OVERRIDE"`
	HDRIRandomize bool   `json:"hdri_randomize" env:"CAMSPHERE_HDRI_RANDOMIZE"`
	Seed          int64  `json:"seed" env:"CAMSPHERE_SEED"`
}

// Load reads a JSON config file. Fields not set in the file keep their
// zero values until Resolve fills in defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays CAMSPHERE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Flags holds CLI flag values that override everything else.
// Zero values mean "not set".
type Flags struct {
	OutputDir    string
	Distribution string
	Horizontal   int
	Vertical     int
	MinRadius    float64
	MaxRadius    float64
	Samples      int
	Width        int
	Height       int
}

// Resolve applies flag overrides and fills remaining empty fields with
// defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Distribution != "" {
		c.Distribution = flags.Distribution
	}
	if flags.Horizontal > 0 {
		c.HorizontalCount = flags.Horizontal
	}
	if flags.Vertical > 0 {
		c.VerticalCount = flags.Vertical
	}
	if flags.MinRadius > 0 {
		c.MinRadius = flags.MinRadius
	}
	if flags.MaxRadius > 0 {
		c.MaxRadius = flags.MaxRadius
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}

	// Defaults
	if c.MinRadius <= 0 {
		c.MinRadius = 6
	}
	if c.MaxRadius <= 0 {
		c.MaxRadius = c.MinRadius
	}
	if c.HorizontalCount <= 0 {
		c.HorizontalCount = 8
	}
	if c.VerticalCount <= 0 {
		c.VerticalCount = 3
	}
	if c.Distribution == "" {
		c.Distribution = "fibonacci"
	}
	if c.FocalLength <= 0 {
		c.FocalLength = 50
	}
	if c.SensorWidth <= 0 {
		c.SensorWidth = 36
	}
	if c.ClipStart <= 0 {
		c.ClipStart = 0.1
	}
	if c.ClipEnd <= 0 {
		c.ClipEnd = 100
	}
	if c.Width <= 0 {
		c.Width = 512
	}
	if c.Height <= 0 {
		c.Height = 512
	}
	if c.Samples <= 0 {
		c.Samples = 16
	}
	if c.Denoiser == "" {
		c.Denoiser = string(session.DenoiserNone)
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Spec builds the sphere spec from the resolved config.
func (c *Config) Spec() (sphere.Spec, error) {
	dist, err := sphere.ParseDistribution(c.Distribution)
	if err != nil {
		return sphere.Spec{}, err
	}

	spec := sphere.Spec{
		Target:          mathutil.Vec3(c.Target),
		MinRadius:       c.MinRadius,
		MaxRadius:       c.MaxRadius,
		HorizontalCount: c.HorizontalCount,
		VerticalCount:   c.VerticalCount,
		Distribution:    dist,
		HalfSphere:      c.HalfSphere,
		BaseCamera: &sphere.CameraParams{
			FocalLength: c.FocalLength,
			SensorWidth: c.SensorWidth,
			ClipStart:   c.ClipStart,
			ClipEnd:     c.ClipEnd,
		},
	}
	if c.FloorHeight != nil {
		spec.Floor = &sphere.FloorPlane{
			Point:  mathutil.Vec3{0, 0, *c.FloorHeight},
			Normal: mathutil.WorldUp,
		}
	}
	return spec, nil
}

// RenderParams builds the per-frame render parameters.
func (c *Config) RenderParams() session.RenderParams {
	return session.RenderParams{
		Width:       c.Width,
		Height:      c.Height,
		Samples:     c.Samples,
		Denoiser:    session.Denoiser(c.Denoiser),
		AspectRatio: c.AspectRatio,
	}
}
