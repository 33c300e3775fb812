// Package config loads engine settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/engine"
	"github.com/gogpu/g3d/input"
	"github.com/gogpu/g3d/texture"
)

// Version is the configuration format version written by Write.
const Version = 1

// ErrInvalid is returned for configuration values out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config is the file form of the engine settings.
type Config struct {
	Version int    `yaml:"version"`
	Device  string `yaml:"device,omitempty"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel,omitempty"`

	Window Window `yaml:"window"`
	Camera Camera `yaml:"camera"`

	// Keymap binds command names (forward, left, up, ...) to key names.
	// A listed command replaces its default keys; commands not listed keep
	// the default WASD bindings.
	Keymap map[string][]string `yaml:"keymap,omitempty"`

	// ClearColor holds RGB or RGBA components in [0, 1].
	ClearColor []float64 `yaml:"clearColor,omitempty,flow"`

	Shaders Shaders `yaml:"shaders,omitempty"`

	// Texture is an image file replacing the generated texture.
	Texture string `yaml:"texture,omitempty"`

	Instances []Instance `yaml:"instances"`
}

// Window is the initial frame size in pixels.
type Window struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// Camera holds the initial camera placement, lens and motion settings.
type Camera struct {
	Position [3]float32 `yaml:"position,flow"`
	// FOV is the vertical field of view in degrees.
	FOV         float32 `yaml:"fov"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Speed       float32 `yaml:"speed"`
	Sensitivity float32 `yaml:"sensitivity"`
}

// Shaders names a directory of WGSL overrides for the built-in shaders.
// With Watch set, edits are picked up while running.
type Shaders struct {
	Dir   string `yaml:"dir,omitempty"`
	Watch bool   `yaml:"watch,omitempty"`
}

// Instance places a mesh. Rotation is in radians.
type Instance struct {
	Mesh     string     `yaml:"mesh"`
	Position [3]float32 `yaml:"position,flow"`
	Rotation [3]float32 `yaml:"rotation,flow"`
	Scale    [3]float32 `yaml:"scale,flow"`
}

// Default returns the settings the engine uses with no options.
func Default() Config {
	specs := engine.DefaultScene()
	instances := make([]Instance, len(specs))
	for i, s := range specs {
		instances[i] = Instance{Mesh: s.Mesh, Position: s.Position, Rotation: s.Rotation, Scale: s.Scale}
	}
	return Config{
		Version:  Version,
		LogLevel: "info",
		Window:   Window{Width: 800, Height: 600},
		Camera: Camera{
			Position:    [3]float32{-3, 0, -3},
			FOV:         45,
			Near:        0.1,
			Far:         100,
			Speed:       camera.DefaultSpeed,
			Sensitivity: camera.DefaultSensitivity,
		},
		Instances: instances,
	}
}

// Load reads a configuration file. Settings missing from the file keep
// their Default values; an explicit empty instances list gives an empty
// scene.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data over Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write writes cfg to path as YAML, creating parent directories.
func Write(path string, cfg Config) error {
	cfg.normalize()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: close %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	if c.Version == 0 {
		c.Version = Version
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports the first setting that cannot be applied.
func (c *Config) Validate() error {
	if c.Version > Version {
		return fmt.Errorf("%w: version %d is newer than %d", ErrInvalid, c.Version, Version)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %g", ErrInvalid, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip planes %g..%g", ErrInvalid, c.Camera.Near, c.Camera.Far)
	}
	if n := len(c.ClearColor); n != 0 && n != 3 && n != 4 {
		return fmt.Errorf("%w: clear color needs 3 or 4 components, got %d", ErrInvalid, n)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := input.ParseKeymap(c.Keymap); err != nil {
		return fmt.Errorf("%w: keymap: %w", ErrInvalid, err)
	}
	for i, inst := range c.Instances {
		if inst.Mesh == "" {
			return fmt.Errorf("%w: instance %d has no mesh", ErrInvalid, i)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// EngineOptions converts the settings into engine options. The texture
// file, if any, is loaded here.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cam := c.Camera
	opts := []engine.Option{
		engine.WithSize(c.Window.Width, c.Window.Height),
		engine.WithCamera(cam.Position, mgl32.DegToRad(cam.FOV), cam.Near, cam.Far),
		engine.WithCameraOptions(camera.WithSpeed(cam.Speed), camera.WithSensitivity(cam.Sensitivity)),
		engine.WithInstances(c.instanceSpecs()),
	}
	if len(c.Keymap) > 0 {
		m, err := input.ParseKeymap(c.Keymap)
		if err != nil {
			return nil, fmt.Errorf("config: keymap: %w", err)
		}
		opts = append(opts, engine.WithKeymap(input.DefaultKeymap().Rebind(m)))
	}
	if len(c.ClearColor) > 0 {
		opts = append(opts, engine.WithClearColor(c.clearColor()))
	}
	if c.Shaders.Dir != "" {
		opts = append(opts, engine.WithShaderDir(c.Shaders.Dir, c.Shaders.Watch))
	}
	if c.Texture != "" {
		t, err := texture.Load(c.Texture)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, engine.WithTexture(t))
	}
	return opts, nil
}

func (c *Config) instanceSpecs() []engine.InstanceSpec {
	specs := make([]engine.InstanceSpec, len(c.Instances))
	for i, inst := range c.Instances {
		specs[i] = engine.InstanceSpec{
			Mesh:     inst.Mesh,
			Position: inst.Position,
			Rotation: inst.Rotation,
			Scale:    inst.Scale,
		}
	}
	return specs
}

func (c *Config) clearColor() gputypes.Color {
	col := gputypes.Color{A: 1}
	col.R, col.G, col.B = c.ClearColor[0], c.ClearColor[1], c.ClearColor[2]
	if len(c.ClearColor) == 4 {
		col.A = c.ClearColor[3]
	}
	return col
}
