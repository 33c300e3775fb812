// Package engine drives the per-frame update and render cycle.
//
// An Engine owns the resource cache, the scene, the camera and the input
// state, and draws through a device.Device it does not own. The host calls,
// per frame and from one goroutine:
//
//	eng.Tick(dt)   // fold input into the camera
//	eng.Render()   // draw and present
//
// Resize and input events may arrive between frames; they take effect at
// the next Tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/input"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("engine: closed")

// Engine is the frame driver. It is not safe for concurrent use.
type Engine struct {
	dev     device.Device
	cache   *resource.Cache
	scene   *scene.Scene
	cam     *camera.Camera
	input   *input.State
	pass    *render.Pass
	watcher *resource.Watcher
	window  gpucontext.WindowProvider

	width, height uint32
	surfaceDirty  bool
	closed        bool

	frames    uint64
	lastStats render.Stats
}

// New creates an engine drawing onto dev. The built-in meshes are uploaded
// and the configured instances added before New returns.
func New(dev device.Device, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.window != nil {
		w, h := o.window.Size()
		sf := o.window.ScaleFactor()
		if sf <= 0 {
			sf = 1
		}
		o.width, o.height = uint32(float64(w)*sf), uint32(float64(h)*sf)
	}
	o.width, o.height = max(o.width, 1), max(o.height, 1)

	lib := shader.NewLibrary(o.shaderDir)
	cacheOpts := []resource.Option{resource.WithShaderLibrary(lib)}
	if o.texels != nil {
		cacheOpts = append(cacheOpts, resource.WithTexture(*o.texels))
	}

	var inputOpts []input.Option
	if o.keymap != nil {
		inputOpts = append(inputOpts, input.WithKeymap(o.keymap))
	}

	var passOpts []render.Option
	if o.clear != nil {
		passOpts = append(passOpts, render.WithClearColor(*o.clear))
	}

	c := resource.New(dev, cacheOpts...)
	e := &Engine{
		dev:    dev,
		cache:  c,
		scene:  scene.New(c),
		cam:    camera.New(o.camPosition, o.fov, aspect(o.width, o.height), o.near, o.far, o.camOpts...),
		input:  input.NewState(inputOpts...),
		pass:   render.NewPass(dev, c, passOpts...),
		window: o.window,
		width:  o.width,
		height: o.height,
	}

	if err := e.init(o); err != nil {
		_ = e.Close()
		return nil, err
	}
	info := dev.Info()
	g3d.Logger().Info("engine: ready",
		slog.String("adapter", info.Name),
		slog.String("backend", info.Backend.String()),
		slog.String("format", dev.SurfaceFormat().String()),
		slog.Int("instances", e.scene.Len()))
	return e, nil
}

func (e *Engine) init(o options) error {
	cube := geometry.Cube()
	if _, err := e.cache.Mesh(MeshCube, cube.VertexBytes(), cube.Indices); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if _, err := e.cache.Mesh(MeshTriangle, nil, nil, resource.WithTechnique(resource.TechniqueTriangle)); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	for _, spec := range o.instances {
		if _, err := e.AddInstance(spec); err != nil {
			return err
		}
	}

	if o.watch && o.shaderDir != "" {
		w, err := resource.NewWatcher(e.cache.Shaders())
		if err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		e.watcher = w
	}
	return nil
}

// AddInstance adds a mesh instance to the scene, building the pipeline of
// the mesh's technique if this is its first use.
func (e *Engine) AddInstance(spec InstanceSpec) (*scene.Instance, error) {
	if e.closed {
		return nil, ErrClosed
	}
	mesh, ok := e.cache.LookupMesh(spec.Mesh)
	if !ok {
		return nil, fmt.Errorf("engine: add instance: %w %q", scene.ErrUnknownMesh, spec.Mesh)
	}
	if _, err := e.cache.Pipeline(mesh.Technique); err != nil {
		return nil, fmt.Errorf("engine: add instance: %w", err)
	}
	inst, err := e.scene.Add(spec.Mesh, spec.Position, spec.Rotation, spec.Scale)
	if err != nil {
		return nil, fmt.Errorf("engine: add instance: %w", err)
	}
	return inst, nil
}

// OnResize records a new frame size. Zero or negative dimensions are
// clamped to 1. The camera's aspect ratio changes immediately; the device
// is reconfigured at the next Tick.
func (e *Engine) OnResize(width, height int) {
	w, h := uint32(max(width, 1)), uint32(max(height, 1))
	if w == e.width && h == e.height {
		return
	}
	e.width, e.height = w, h
	e.cam.SetAspectRatio(aspect(w, h))
	e.surfaceDirty = true
}

// Tick advances the engine by dt seconds. It reconfigures the surface if
// a resize or a lost surface is pending, applies shader reloads, and folds
// the accumulated input into the camera exactly once. A reconfigure that
// fails with a recoverable surface error is retried on the next Tick.
func (e *Engine) Tick(dt float32) error {
	if e.closed {
		return ErrClosed
	}
	if e.surfaceDirty {
		err := e.dev.Reconfigure(e.width, e.height)
		switch {
		case err == nil:
			e.surfaceDirty = false
		case device.IsRecoverable(err):
			g3d.Logger().Warn("engine: reconfigure deferred",
				slog.Uint64("width", uint64(e.width)),
				slog.Uint64("height", uint64(e.height)),
				slog.String("err", err.Error()))
		default:
			return fmt.Errorf("engine: reconfigure %dx%d: %w", e.width, e.height, err)
		}
	}
	e.applyReloads()

	cmds := e.input.Commands()
	delta := e.input.TakePointerDelta()
	e.cam.Tick(dt, cmds, delta)
	return nil
}

func (e *Engine) applyReloads() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case t := <-e.watcher.Reloads():
			if err := e.cache.ReloadPipeline(t); err != nil {
				g3d.Logger().Warn("engine: shader reload failed, keeping previous pipeline",
					slog.String("technique", t.String()),
					slog.String("err", err.Error()))
			}
		default:
			return
		}
	}
}

// Render draws the scene and presents it. A recoverable surface error
// abandons the frame, schedules a reconfigure for the next Tick and
// returns nil. Other errors are fatal.
func (e *Engine) Render() error {
	if e.closed {
		return ErrClosed
	}
	stats, err := e.pass.Draw(e.cam, e.scene)
	if err != nil {
		if device.IsRecoverable(err) {
			g3d.Logger().Warn("engine: frame skipped", slog.String("err", err.Error()))
			e.surfaceDirty = true
			return nil
		}
		return fmt.Errorf("engine: %w", err)
	}
	e.frames++
	e.lastStats = stats
	if stats.Skipped > 0 {
		g3d.Logger().Debug("engine: instances skipped", slog.Int("skipped", stats.Skipped))
	}
	if e.window != nil {
		e.window.RequestRedraw()
	}
	return nil
}

// Frame runs Tick then Render.
func (e *Engine) Frame(dt float32) error {
	if err := e.Tick(dt); err != nil {
		return err
	}
	return e.Render()
}

// Attach wires the input state and resize handling to an event source.
func (e *Engine) Attach(src gpucontext.EventSource) {
	e.input.Attach(src)
	src.OnResize(e.OnResize)
}

// Close stops the shader watcher and releases every GPU object the engine
// created. The device itself is left open.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	var err error
	if e.watcher != nil {
		err = e.watcher.Close()
	}
	e.scene.Clear()
	e.cache.Release()
	return err
}

// Input returns the input state fed by the host.
func (e *Engine) Input() *input.State { return e.input }

// Camera returns the camera.
func (e *Engine) Camera() *camera.Camera { return e.cam }

// Scene returns the scene.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Cache returns the resource cache.
func (e *Engine) Cache() *resource.Cache { return e.cache }

// Device returns the device the engine draws onto.
func (e *Engine) Device() device.Device { return e.dev }

// Size returns the current frame size in pixels.
func (e *Engine) Size() (width, height uint32) { return e.width, e.height }

// Frames returns the number of frames presented.
func (e *Engine) Frames() uint64 { return e.frames }

// LastStats returns the statistics of the last presented frame.
func (e *Engine) LastStats() render.Stats { return e.lastStats }

// ViewProjection returns the camera's current view-projection matrix.
func (e *Engine) ViewProjection() mgl32.Mat4 { return e.cam.ViewProjection() }

func aspect(w, h uint32) float32 {
	return float32(w) / float32(h)
}
