package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/device/headless"
	"github.com/gogpu/g3d/input"
	"github.com/gogpu/g3d/recording"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
)

func newHeadless(t *testing.T) *headless.Device {
	t.Helper()
	dev, err := headless.New(device.Config{Width: 800, Height: 600})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.Close() })
	return dev
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *headless.Device) {
	t.Helper()
	dev := newHeadless(t)
	e, err := New(dev, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, dev
}

func TestDefaultScene(t *testing.T) {
	e, dev := newEngine(t)
	assert.Equal(t, 3, e.Scene().Len())

	require.NoError(t, e.Frame(0.016))
	stats := e.LastStats()
	assert.Equal(t, 3, stats.Drawn)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, uint64(1), e.Frames())

	draws := dev.LastSubmission().Recording.DrawCalls()
	require.Len(t, draws, 3)
	assert.Equal(t, uint32(36), draws[1].IndexCount)

	var positions []mgl32.Vec3
	for _, inst := range e.Scene().Instances() {
		positions = append(positions, inst.Position())
	}
	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {3, 3, 3}, {3, 0, 3}}, positions)
}

// Holding forward for one second from (-3, 0, -3) with zero yaw moves the
// camera one unit along +X.
func TestForwardScenario(t *testing.T) {
	e, _ := newEngine(t)
	e.Input().OnKey(gpucontext.KeyW, true)

	require.NoError(t, e.Tick(1))
	p := e.Camera().Position()
	assert.InDelta(t, -2, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, -3, p.Z(), 1e-5)
}

func TestForwardScenarioWideLens(t *testing.T) {
	e, _ := newEngine(t,
		WithSize(1600, 900),
		WithCamera(mgl32.Vec3{-3, 0, -3}, mgl32.DegToRad(90), 0.1, 100),
	)
	assert.InDelta(t, 16.0/9.0, e.Camera().AspectRatio(), 1e-6)
	fwd := e.Camera().Basis().Forward
	e.Input().OnKey(gpucontext.KeyW, true)

	require.NoError(t, e.Tick(1))
	p := e.Camera().Position()
	assert.InDelta(t, -3+fwd.X(), p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, -3+fwd.Z(), p.Z(), 1e-5)
}

func TestTickConsumesPointerDeltaOnce(t *testing.T) {
	e, _ := newEngine(t)
	in := e.Input()
	in.OnMouseButton(gpucontext.MouseButtonRight, true)
	in.OnPointerMove(0, 0)
	in.OnPointerMove(10, 0)

	require.NoError(t, e.Tick(0))
	assert.InDelta(t, 3, e.Camera().Yaw(), 1e-5)
	assert.Equal(t, mgl32.Vec2{}, in.PointerDelta())

	require.NoError(t, e.Tick(0))
	assert.InDelta(t, 3, e.Camera().Yaw(), 1e-5)
}

func TestZeroTickKeepsViewProjection(t *testing.T) {
	e, _ := newEngine(t)
	before := e.ViewProjection()
	require.NoError(t, e.Tick(0))
	assert.Equal(t, before, e.ViewProjection())
}

func TestOnResize(t *testing.T) {
	e, dev := newEngine(t)
	view := e.Camera().View()

	e.OnResize(0, -5)
	w, h := e.Size()
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
	assert.InDelta(t, 1, e.Camera().AspectRatio(), 1e-6)
	assert.Equal(t, view, e.Camera().View())
	assert.Equal(t, 0, dev.Reconfigures(), "reconfigure waits for the next tick")

	require.NoError(t, e.Tick(0))
	assert.Equal(t, 1, dev.Reconfigures())
	dw, dh := dev.Size()
	assert.Equal(t, uint32(1), dw)
	assert.Equal(t, uint32(1), dh)

	e.OnResize(1, 1)
	require.NoError(t, e.Tick(0))
	assert.Equal(t, 1, dev.Reconfigures(), "same size is not a change")
}

func TestRenderRecoversFromOutdatedSurface(t *testing.T) {
	e, dev := newEngine(t)
	dev.FailAcquire(device.ErrSurfaceOutdated)

	require.NoError(t, e.Tick(0))
	require.NoError(t, e.Render())
	assert.Equal(t, uint64(0), e.Frames())
	assert.Empty(t, dev.Submissions())

	require.NoError(t, e.Frame(0))
	assert.Equal(t, 1, dev.Reconfigures())
	assert.Equal(t, uint64(1), e.Frames())
}

func TestTickRetriesRecoverableReconfigure(t *testing.T) {
	e, dev := newEngine(t)
	e.OnResize(1024, 768)
	dev.FailReconfigure(device.ErrSurfaceLost)

	e.Input().OnKey(gpucontext.KeyW, true)
	require.NoError(t, e.Tick(1))
	assert.Equal(t, 0, dev.Reconfigures())
	assert.InDelta(t, -2, e.Camera().Position().X(), 1e-5, "input still applied")

	require.NoError(t, e.Tick(0))
	assert.Equal(t, 1, dev.Reconfigures())
	w, h := dev.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
}

func TestTickFatalReconfigure(t *testing.T) {
	e, dev := newEngine(t)
	e.OnResize(1024, 768)
	dev.FailReconfigure(device.ErrDeviceLost)
	assert.ErrorIs(t, e.Tick(0), device.ErrDeviceLost)
}

func TestRenderFatalError(t *testing.T) {
	e, dev := newEngine(t)
	dev.FailAcquire(device.ErrDeviceLost)
	err := e.Render()
	require.ErrorIs(t, err, device.ErrDeviceLost)
}

func TestNewWithInstances(t *testing.T) {
	e, dev := newEngine(t, WithInstances([]InstanceSpec{
		{Mesh: MeshTriangle, Scale: mgl32.Vec3{1, 1, 1}},
	}))
	assert.Equal(t, 1, e.Scene().Len())
	_, ok := e.Cache().LookupPipeline(resource.TechniqueTriangle)
	assert.True(t, ok)
	_, ok = e.Cache().LookupPipeline(resource.TechniqueTexturedMesh)
	assert.False(t, ok, "pipelines are built on first use")

	require.NoError(t, e.Frame(0))
	assert.Equal(t, 1, dev.LastSubmission().Recording.Count(recording.CmdDraw))
}

func TestNewUnknownMesh(t *testing.T) {
	dev := newHeadless(t)
	_, err := New(dev, WithInstances([]InstanceSpec{{Mesh: "teapot"}}))
	require.ErrorIs(t, err, scene.ErrUnknownMesh)
	assert.Equal(t, 0, dev.Live().Total(), "failed New releases what it created")
}

func TestOptions(t *testing.T) {
	bg := gputypes.Color{G: 1, A: 1}
	e, dev := newEngine(t,
		WithSize(400, 100),
		WithCamera(mgl32.Vec3{1, 2, 3}, mgl32.DegToRad(60), 0.5, 50),
		WithKeymap(input.Keymap{gpucontext.KeyUp: input.Forward}),
		WithClearColor(bg),
		WithInstances(nil),
	)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.Camera().Position())
	assert.InDelta(t, 4, e.Camera().AspectRatio(), 1e-6)
	assert.Equal(t, float32(0.5), e.Camera().Near())
	assert.Equal(t, 0, e.Scene().Len())

	e.Input().OnKey(gpucontext.KeyW, true)
	assert.Equal(t, input.Command(0), e.Input().Commands())
	e.Input().OnKey(gpucontext.KeyUp, true)
	assert.Equal(t, input.Forward, e.Input().Commands())

	require.NoError(t, e.Render())
	begin := dev.LastSubmission().Recording.Commands()[0].(recording.BeginPassCommand)
	assert.Equal(t, bg, begin.Clear)
}

func TestWithWindow(t *testing.T) {
	win := &window{NullWindowProvider: gpucontext.NullWindowProvider{W: 640, H: 360, SF: 2}}
	e, _ := newEngine(t, WithWindow(win))
	w, h := e.Size()
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(720), h)

	require.NoError(t, e.Render())
	assert.Equal(t, 1, win.redraws)
}

type window struct {
	gpucontext.NullWindowProvider
	redraws int
}

func (w *window) RequestRedraw() { w.redraws++ }

type events struct {
	gpucontext.NullEventSource
	keyPress func(gpucontext.Key, gpucontext.Modifiers)
	resize   func(int, int)
}

func (e *events) OnKeyPress(f func(gpucontext.Key, gpucontext.Modifiers)) { e.keyPress = f }
func (e *events) OnResize(f func(int, int))                                { e.resize = f }

func TestAttach(t *testing.T) {
	e, _ := newEngine(t)
	src := &events{}
	e.Attach(src)

	src.keyPress(gpucontext.KeySpace, 0)
	assert.Equal(t, input.Up, e.Input().Commands())

	src.resize(1024, 768)
	w, h := e.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
}

func TestShaderHotReload(t *testing.T) {
	dir := t.TempDir()
	e, dev := newEngine(t, WithShaderDir(dir, true), WithInstances([]InstanceSpec{
		{Mesh: MeshTriangle, Scale: mgl32.Vec3{1, 1, 1}},
	}))
	p, _ := e.Cache().LookupPipeline(resource.TechniqueTriangle)
	oldID := p.ID

	src, _ := shader.Builtin(shader.Triangle)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle.wgsl"), []byte(src+"\n"), 0o600))

	require.Eventually(t, func() bool {
		if err := e.Tick(0); err != nil {
			return false
		}
		p, _ := e.Cache().LookupPipeline(resource.TechniqueTriangle)
		return p.ID != oldID
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, e.Render())
	assert.Equal(t, 1, dev.Live().Pipelines)
}

func TestClose(t *testing.T) {
	e, dev := newEngine(t)
	require.NoError(t, e.Close())
	assert.Equal(t, 0, dev.Live().Total())
	assert.ErrorIs(t, e.Tick(0), ErrClosed)
	assert.ErrorIs(t, e.Render(), ErrClosed)
	_, err := e.AddInstance(InstanceSpec{Mesh: MeshCube})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, e.Close())
}
