package headless

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/recording"
	"github.com/gogpu/g3d/shader"
)

func newDevice(t *testing.T) *Device {
	t.Helper()
	d, err := New(device.Config{Width: 320, Height: 240})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func trianglePipeline(t *testing.T, d *Device) gpucore.PipelineID {
	t.Helper()
	src, _ := shader.Builtin(shader.Triangle)
	id, err := d.CreatePipeline(&device.PipelineDescriptor{
		Label:         "triangle",
		Shader:        src,
		VertexEntry:   shader.VertexEntry,
		FragmentEntry: shader.FragmentEntry,
	})
	require.NoError(t, err)
	return id
}

func TestRegisteredDriver(t *testing.T) {
	assert.Contains(t, device.Drivers(), device.DriverHeadless)

	dev, err := device.Open(device.DriverHeadless, device.Config{Width: 8, Height: 8})
	require.NoError(t, err)
	assert.Equal(t, "headless", dev.Info().Name)
	require.NoError(t, dev.Close())
}

func TestNewZeroSize(t *testing.T) {
	_, err := New(device.Config{Width: 0, Height: 10})
	assert.ErrorIs(t, err, device.ErrInvalidDescriptor)
}

func TestBuffers(t *testing.T) {
	d := newDevice(t)

	id, err := d.CreateBuffer(&device.BufferDescriptor{
		Label:    "data",
		Usage:    gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		Contents: []byte{1, 2, 3, 4, 5, 6},
	})
	require.NoError(t, err)
	b, ok := d.Buffer(id)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0}, b.Data)

	require.NoError(t, d.WriteBuffer(id, 4, []byte{9, 9, 9, 9}))
	assert.Equal(t, []byte{1, 2, 3, 4, 9, 9, 9, 9}, b.Data)

	assert.ErrorIs(t, d.WriteBuffer(id, 8, []byte{0, 0, 0, 0}), device.ErrInvalidDescriptor)
	assert.ErrorIs(t, d.WriteBuffer(id, 2, []byte{0, 0, 0, 0}), device.ErrInvalidDescriptor)
	assert.ErrorIs(t, d.WriteBuffer(gpucore.BufferID(99), 0, nil), device.ErrUnknownResource)

	ro, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageIndex, Size: 4})
	require.NoError(t, err)
	assert.ErrorIs(t, d.WriteBuffer(ro, 0, []byte{0, 0, 0, 0}), device.ErrInvalidDescriptor)

	_, err = d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageVertex})
	assert.ErrorIs(t, err, device.ErrInvalidDescriptor)

	d.ReleaseBuffer(id)
	_, ok = d.Buffer(id)
	assert.False(t, ok)
}

func TestTextures(t *testing.T) {
	d := newDevice(t)

	id, err := d.CreateTexture(&device.TextureDescriptor{
		Width: 2, Height: 2, Format: gputypes.TextureFormatR8Uint, Data: []byte{1, 2, 3, 4},
	})
	require.NoError(t, err)
	tex, ok := d.Texture(id)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, tex.Data)

	_, err = d.CreateTexture(&device.TextureDescriptor{
		Width: 2, Height: 2, Format: gputypes.TextureFormatR8Uint, Data: []byte{1},
	})
	assert.ErrorIs(t, err, device.ErrInvalidDescriptor)

	_, err = d.CreateTexture(&device.TextureDescriptor{Width: 2, Height: 2})
	assert.ErrorIs(t, err, device.ErrInvalidDescriptor)
}

func TestCreatePipelineValidatesShader(t *testing.T) {
	d := newDevice(t)
	trianglePipeline(t, d)

	_, err := d.CreatePipeline(&device.PipelineDescriptor{
		Label:         "broken",
		Shader:        "@vertex fn vs_main( {",
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
	})
	assert.ErrorIs(t, err, shader.ErrCompile)

	_, err = d.CreatePipeline(&device.PipelineDescriptor{Label: "no entries"})
	assert.ErrorIs(t, err, device.ErrInvalidDescriptor)
}

func TestCreateBindGroupMatchesLayout(t *testing.T) {
	d := newDevice(t)
	src, _ := shader.Builtin(shader.TexturedMesh)
	pid, err := d.CreatePipeline(&device.PipelineDescriptor{
		Label:         "mesh",
		Shader:        src,
		VertexEntry:   shader.VertexEntry,
		FragmentEntry: shader.FragmentEntry,
		Bindings: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: 64}},
			{Binding: 1, Texture: &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeUint}},
		},
	})
	require.NoError(t, err)

	small, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageUniform, Size: 16})
	require.NoError(t, err)
	ub, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageUniform, Size: 64})
	require.NoError(t, err)
	tex, err := d.CreateTexture(&device.TextureDescriptor{Width: 1, Height: 1, Format: gputypes.TextureFormatR8Uint})
	require.NoError(t, err)

	_, err = d.CreateBindGroup(&device.BindGroupDescriptor{Pipeline: pid, Entries: []device.BindGroupEntry{
		{Binding: 0, Buffer: ub}, {Binding: 1, Texture: tex},
	}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		entries []device.BindGroupEntry
	}{
		{"missing entry", []device.BindGroupEntry{{Binding: 0, Buffer: ub}}},
		{"buffer too small", []device.BindGroupEntry{{Binding: 0, Buffer: small}, {Binding: 1, Texture: tex}}},
		{"texture in buffer slot", []device.BindGroupEntry{{Binding: 0, Texture: tex}, {Binding: 1, Texture: tex}}},
		{"unknown binding", []device.BindGroupEntry{{Binding: 0, Buffer: ub}, {Binding: 7, Texture: tex}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateBindGroup(&device.BindGroupDescriptor{Pipeline: pid, Entries: tt.entries})
			assert.ErrorIs(t, err, device.ErrInvalidDescriptor)
		})
	}

	_, err = d.CreateBindGroup(&device.BindGroupDescriptor{Pipeline: gpucore.PipelineID(999)})
	assert.ErrorIs(t, err, device.ErrUnknownResource)
}

func TestFrameLifecycle(t *testing.T) {
	d := newDevice(t)
	pid := trianglePipeline(t, d)

	rec := recording.NewRecorder()
	rec.BeginPass("frame", gputypes.Color{A: 1})
	rec.SetPipeline(pid)
	rec.Draw(3, 1, 0, 0)
	rec.EndPass()
	r, err := rec.Finish()
	require.NoError(t, err)

	f, err := d.AcquireFrame()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, uint32(320), f.Width)

	assert.ErrorIs(t, d.Present(f), device.ErrStaleFrame, "present before submit")
	require.NoError(t, d.Submit(f, r))
	require.NoError(t, d.Present(f))

	sub := d.LastSubmission()
	require.NotNil(t, sub)
	assert.True(t, sub.Presented)
	assert.Equal(t, 1, sub.Recording.Count(recording.CmdDraw))

	assert.ErrorIs(t, d.Submit(f, r), device.ErrStaleFrame, "frame already presented")
}

func TestFailAcquire(t *testing.T) {
	d := newDevice(t)
	d.FailAcquire(device.ErrSurfaceOutdated)

	_, err := d.AcquireFrame()
	require.ErrorIs(t, err, device.ErrSurfaceOutdated)

	require.NoError(t, d.Reconfigure(640, 480))
	assert.Equal(t, 1, d.Reconfigures())
	f, err := d.AcquireFrame()
	require.NoError(t, err)
	assert.Equal(t, uint32(640), f.Width)

	assert.ErrorIs(t, d.Reconfigure(0, 1), device.ErrInvalidDescriptor)
}

func TestFailCreate(t *testing.T) {
	d := newDevice(t)
	d.FailCreate(device.ErrOutOfMemory)

	_, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageVertex, Size: 4})
	assert.ErrorIs(t, err, device.ErrOutOfMemory)
	_, err = d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageVertex, Size: 4})
	assert.NoError(t, err)
}

func TestSubmitValidatesDraws(t *testing.T) {
	d := newDevice(t)
	src, _ := shader.Builtin(shader.Triangle)
	pid, err := d.CreatePipeline(&device.PipelineDescriptor{
		Label:         "instanced",
		Shader:        src,
		VertexEntry:   shader.VertexEntry,
		FragmentEntry: shader.FragmentEntry,
		VertexBuffers: []gputypes.VertexBufferLayout{
			{ArrayStride: 64, StepMode: gputypes.VertexStepModeInstance},
		},
	})
	require.NoError(t, err)
	inst, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageVertex, Size: 128})
	require.NoError(t, err)
	idx, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageIndex, Size: 12})
	require.NoError(t, err)

	record := func(firstInstance, indexCount uint32) *recording.Recording {
		rec := recording.NewRecorder()
		rec.BeginPass("frame", gputypes.Color{})
		rec.SetPipeline(pid)
		rec.SetVertexBuffer(0, inst, 0)
		rec.SetIndexBuffer(idx, gputypes.IndexFormatUint16, 0)
		rec.DrawIndexed(indexCount, 1, 0, 0, firstInstance)
		rec.EndPass()
		r, err := rec.Finish()
		require.NoError(t, err)
		return r
	}

	f, err := d.AcquireFrame()
	require.NoError(t, err)
	require.NoError(t, d.Submit(f, record(1, 6)))

	assert.ErrorIs(t, d.Submit(f, record(2, 6)), device.ErrInvalidDescriptor, "instance out of range")
	assert.ErrorIs(t, d.Submit(f, record(0, 7)), device.ErrInvalidDescriptor, "index out of range")

	d.ReleaseBuffer(inst)
	assert.ErrorIs(t, d.Submit(f, record(0, 3)), device.ErrUnknownResource)
}

func TestCloseReleasesEverything(t *testing.T) {
	d := newDevice(t)
	trianglePipeline(t, d)
	_, err := d.CreateBuffer(&device.BufferDescriptor{Usage: gputypes.BufferUsageVertex, Size: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Live().Total())

	require.NoError(t, d.Close())
	assert.Equal(t, 0, d.Live().Total())
	_, err = d.AcquireFrame()
	assert.ErrorIs(t, err, device.ErrClosed)
	assert.NoError(t, d.Close())
}

func TestSubmissionRetention(t *testing.T) {
	d := newDevice(t)
	pid := trianglePipeline(t, d)
	rec := recording.NewRecorder()
	rec.BeginPass("frame", gputypes.Color{A: 1})
	rec.SetPipeline(pid)
	rec.Draw(3, 1, 0, 0)
	rec.EndPass()
	r, err := rec.Finish()
	require.NoError(t, err)

	d.SetRetention(2)
	for range 3 {
		f, err := d.AcquireFrame()
		require.NoError(t, err)
		require.NoError(t, d.Submit(f, r))
		require.NoError(t, d.Present(f))
	}

	subs := d.Submissions()
	require.Len(t, subs, 2)
	assert.Equal(t, uint64(2), subs[0].Frame.Seq)
	assert.Equal(t, uint64(3), subs[1].Frame.Seq)
	assert.True(t, d.LastSubmission().Presented)
	assert.Equal(t, uint64(3), d.SubmitCount())

	d.SetRetention(1)
	assert.Len(t, d.Submissions(), 1)
}

func TestFailReconfigure(t *testing.T) {
	d := newDevice(t)
	d.FailReconfigure(device.ErrSurfaceLost)

	require.ErrorIs(t, d.Reconfigure(640, 480), device.ErrSurfaceLost)
	w, h := d.Size()
	assert.Equal(t, uint32(320), w)
	assert.Equal(t, uint32(240), h)
	assert.Equal(t, 0, d.Reconfigures())

	require.NoError(t, d.Reconfigure(640, 480))
	assert.Equal(t, 1, d.Reconfigures())
}
