package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/input"
	"github.com/gogpu/g3d/texture"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := engine.New(dev,
//	    engine.WithSize(1280, 720),
//	    engine.WithCamera(mgl32.Vec3{-3, 0, -3}, mgl32.DegToRad(45), 0.1, 100),
//	)
type Option func(*options)

// options holds optional configuration for Engine creation.
type options struct {
	width, height uint32
	window        gpucontext.WindowProvider

	camPosition mgl32.Vec3
	fov         float32
	near, far   float32
	camOpts     []camera.Option

	keymap    input.Keymap
	clear     *gputypes.Color
	texels    *texture.Texels
	shaderDir string
	watch     bool
	instances []InstanceSpec
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		width:       800,
		height:      600,
		camPosition: mgl32.Vec3{-3, 0, -3},
		fov:         mgl32.DegToRad(45),
		near:        0.1,
		far:         100,
		instances:   DefaultScene(),
	}
}

// WithSize sets the initial frame size in pixels.
func WithSize(width, height uint32) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithWindow takes the initial size from a host window, in physical
// pixels, and requests a redraw after every rendered frame.
func WithWindow(w gpucontext.WindowProvider) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithCamera sets the camera's initial position, vertical field of view in
// radians and clip planes.
func WithCamera(position mgl32.Vec3, fov, near, far float32) Option {
	return func(o *options) {
		o.camPosition = position
		o.fov, o.near, o.far = fov, near, far
	}
}

// WithCameraOptions passes options through to camera.New.
func WithCameraOptions(opts ...camera.Option) Option {
	return func(o *options) {
		o.camOpts = append(o.camOpts, opts...)
	}
}

// WithKeymap replaces the default WASD key bindings.
func WithKeymap(m input.Keymap) Option {
	return func(o *options) {
		o.keymap = m
	}
}

// WithClearColor sets the frame clear color.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clear = &c
	}
}

// WithTexture replaces the generated Mandelbrot texture.
func WithTexture(t texture.Texels) Option {
	return func(o *options) {
		o.texels = &t
	}
}

// WithShaderDir overlays shader files from dir on the built-in shaders.
// When watch is set, edits to those files rebuild the affected pipelines
// at the start of the next Tick.
func WithShaderDir(dir string, watch bool) Option {
	return func(o *options) {
		o.shaderDir = dir
		o.watch = watch
	}
}

// WithInstances replaces the default scene. A nil or empty list starts
// with an empty scene.
func WithInstances(specs []InstanceSpec) Option {
	return func(o *options) {
		o.instances = specs
	}
}
