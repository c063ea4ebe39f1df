// Package config describes scenes in TOML and builds them into render
// scenes.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrUnknownShader is returned for a model shader name that does not exist.
	ErrUnknownShader = errors.New("unknown shader")
	// ErrUnknownPrimitive is returned for a model primitive that does not exist.
	ErrUnknownPrimitive = errors.New("unknown primitive")
	// ErrInvalid is returned for out-of-range settings.
	ErrInvalid = errors.New("invalid setting")
)

// Config is a scene file. Angles are in degrees and near/far are positive
// distances in front of the camera.
type Config struct {
	Render RenderConfig  `toml:"render"`
	Camera CameraConfig  `toml:"camera"`
	Light  LightConfig   `toml:"light"`
	Models []ModelConfig `toml:"model"`

	// Directory relative model and texture paths resolve against
	Dir string `toml:"-"`

	// Yaw rates in radians per second by model ID, filled by Build
	spins map[uuid.UUID]float64
}

// RenderConfig sizes the output and tunes shadow filtering.
type RenderConfig struct {
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	Background [3]float64 `toml:"background"`
	ShadowSize int        `toml:"shadow_size"`
	Bias       float64    `toml:"bias"`
	Jitter     float64    `toml:"jitter"`
	Seed       uint64     `toml:"seed"`
}

// CameraConfig places the viewer.
type CameraConfig struct {
	Position [3]float64 `toml:"position"`
	Target   [3]float64 `toml:"target"`
	FOV      float64    `toml:"fov"`
	Near     float64    `toml:"near"`
	Far      float64    `toml:"far"`
}

// LightConfig describes the shadow-casting spotlight and the unshadowed
// ambient and directional terms.
type LightConfig struct {
	Position       [3]float64 `toml:"position"`
	Target         [3]float64 `toml:"target"`
	Color          [3]float64 `toml:"color"`
	HalfAngle      float64    `toml:"half_angle"`
	Near           float64    `toml:"near"`
	Far            float64    `toml:"far"`
	Ambient        float64    `toml:"ambient"`
	Directional    [3]float64 `toml:"directional"`
	DirectionalDir [3]float64 `toml:"directional_dir"`
}

// ModelConfig is one [[model]] entry. Exactly one of Path and Primitive
// should be set.
type ModelConfig struct {
	Name      string     `toml:"name"`
	Path      string     `toml:"path"`
	Primitive string     `toml:"primitive"` // cube or plane
	Size      float64    `toml:"size"`
	Fit       bool       `toml:"fit"` // Center and scale to unit size
	Position  [3]float64 `toml:"position"`
	Rotation  [3]float64 `toml:"rotation"` // Yaw, pitch, roll
	Scale     [3]float64 `toml:"scale"`
	Color     [3]float64 `toml:"color"`
	Shader    string     `toml:"shader"`  // spotlight, diffuse, texture, normal or none
	Texture   string     `toml:"texture"` // Image path or "checker"
	Simplify  float64    `toml:"simplify"`
	Spin      float64    `toml:"spin"` // Yaw rate in degrees per second
}

// Default returns the demo scene: a cube floating above a floor, lit by a
// spotlight from the upper left.
func Default() *Config {
	cfg := base()
	cfg.Models = []ModelConfig{
		{
			Name:      "floor",
			Primitive: "plane",
			Size:      8,
			Color:     [3]float64{0.8, 0.8, 0.8},
			Texture:   "checker",
		},
		{
			Name:      "cube",
			Primitive: "cube",
			Size:      1,
			Position:  [3]float64{0, 2, 0},
			Rotation:  [3]float64{30, 0, 0},
			Color:     [3]float64{0.9, 0.3, 0.2},
			Spin:      45,
		},
	}
	return cfg
}

// base holds the defaults a scene file overrides.
func base() *Config {
	return &Config{
		Render: RenderConfig{
			Width:      320,
			Height:     240,
			Background: [3]float64{0.05, 0.05, 0.08},
			ShadowSize: 512,
			Bias:       0.05,
			Jitter:     0.5,
			Seed:       1,
		},
		Camera: CameraConfig{
			Position: [3]float64{0, 6, 8},
			FOV:      60,
			Near:     0.5,
			Far:      50,
		},
		Light: LightConfig{
			Position:  [3]float64{-4, 8, 0},
			Color:     [3]float64{8, 8, 8},
			HalfAngle: 35,
			Near:      0.01,
			Far:       100,
			Ambient:   0.05,
		},
	}
}

// Load reads a scene file. Relative paths inside it resolve against the
// file's directory.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a scene over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := base()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise produce an empty or inverted
// frustum.
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("render size %dx%d: %w", c.Render.Width, c.Render.Height, ErrInvalid)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera fov %v: %w", c.Camera.FOV, ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera near %v far %v: %w", c.Camera.Near, c.Camera.Far, ErrInvalid)
	case c.Light.Near <= 0 || c.Light.Far <= c.Light.Near:
		return fmt.Errorf("light near %v far %v: %w", c.Light.Near, c.Light.Far, ErrInvalid)
	}
	for i, m := range c.Models {
		if (m.Path == "") == (m.Primitive == "") {
			return fmt.Errorf("model %d (%q): set one of path and primitive: %w", i, m.Name, ErrInvalid)
		}
	}
	return nil
}

// resolve returns path relative to the scene directory.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}
