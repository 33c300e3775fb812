package device

import (
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/recording"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device is the graphics device the rendering core draws through.
//
// All creation methods either return a valid ID or an error; a failed
// creation leaves no partially created object behind. IDs stay valid until
// they are released or the device is closed.
//
// A Device is owned by a single goroutine. Implementations are not required
// to be safe for concurrent use.
type Device interface {
	// CreateBuffer creates a buffer and uploads desc.Contents, if any.
	CreateBuffer(desc *BufferDescriptor) (gpucore.BufferID, error)

	// WriteBuffer writes data into a buffer at offset. The buffer must have
	// been created with BufferUsageCopyDst.
	WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error

	// CreateTexture creates a 2D texture and uploads desc.Data, if any.
	CreateTexture(desc *TextureDescriptor) (gpucore.TextureID, error)

	// CreatePipeline compiles the shader and builds a render pipeline that
	// targets the current SurfaceFormat.
	CreatePipeline(desc *PipelineDescriptor) (gpucore.PipelineID, error)

	// CreateBindGroup creates a bind group for group 0 of a pipeline.
	CreateBindGroup(desc *BindGroupDescriptor) (gpucore.BindGroupID, error)

	// ReleaseBuffer releases a buffer. Unknown IDs are ignored.
	ReleaseBuffer(id gpucore.BufferID)

	// ReleaseTexture releases a texture. Unknown IDs are ignored.
	ReleaseTexture(id gpucore.TextureID)

	// ReleasePipeline releases a pipeline. Unknown IDs are ignored.
	ReleasePipeline(id gpucore.PipelineID)

	// ReleaseBindGroup releases a bind group. Unknown IDs are ignored.
	ReleaseBindGroup(id gpucore.BindGroupID)

	// SurfaceFormat returns the color format of frame targets.
	SurfaceFormat() gputypes.TextureFormat

	// AcquireFrame acquires the next frame target. A recoverable error
	// (see IsRecoverable) means the surface must be reconfigured before
	// the next attempt.
	AcquireFrame() (Frame, error)

	// Submit replays the recording onto the frame target in one command
	// buffer submission.
	Submit(frame Frame, r *recording.Recording) error

	// Present presents a submitted frame.
	Present(frame Frame) error

	// Reconfigure resizes the frame targets. Width and height must be
	// non-zero.
	Reconfigure(width, height uint32) error

	// Info describes the adapter behind the device.
	Info() gputypes.AdapterInfo

	// Close releases every object created by the device.
	Close() error
}

// Frame identifies an acquired frame target.
type Frame struct {
	// Seq is the acquisition sequence number, starting at 1.
	Seq uint64
	// Width and Height are the target dimensions in pixels.
	Width, Height uint32
	// Format is the target color format.
	Format gputypes.TextureFormat
}

// BufferDescriptor describes buffer creation parameters.
type BufferDescriptor struct {
	Label string
	Usage gputypes.BufferUsage
	// Size is the buffer size in bytes. Zero means len(Contents).
	Size uint64
	// Contents is uploaded at creation when non-empty.
	Contents []byte
}

// ByteSize returns the effective size of the buffer, rounded up to the
// 4-byte alignment required for buffer writes.
func (d *BufferDescriptor) ByteSize() uint64 {
	size := d.Size
	if size == 0 {
		size = uint64(len(d.Contents))
	}
	return (size + 3) &^ 3
}

// TextureDescriptor describes 2D texture creation parameters.
type TextureDescriptor struct {
	Label         string
	Width, Height uint32
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
	// Data holds tightly packed rows uploaded at creation when non-empty.
	Data []byte
}

// PipelineDescriptor describes a render pipeline with a single bind group
// layout (group 0).
type PipelineDescriptor struct {
	Label string
	// Shader is WGSL source containing both entry points.
	Shader        string
	VertexEntry   string
	FragmentEntry string
	VertexBuffers []gputypes.VertexBufferLayout
	// Bindings is the layout of bind group 0.
	Bindings  []gputypes.BindGroupLayoutEntry
	Primitive gputypes.PrimitiveState
	// Blend is the color blend state. Nil means replace.
	Blend *gputypes.BlendState
}

// BindGroupEntry binds one resource. Exactly one of Buffer or Texture
// must be set.
type BindGroupEntry struct {
	Binding uint32
	Buffer  gpucore.BufferID
	Texture gpucore.TextureID
}

// BindGroupDescriptor describes a bind group for group 0 of Pipeline.
type BindGroupDescriptor struct {
	Label    string
	Pipeline gpucore.PipelineID
	Entries  []BindGroupEntry
}

// WindowHandle carries the platform handles a surface is created from.
type WindowHandle struct {
	Display uintptr
	Window  uintptr
}

// Config configures a device when it is opened through a driver.
type Config struct {
	// Width and Height are the initial frame target size in pixels.
	Width, Height uint32
	// Window is the native window to present to. Nil renders offscreen.
	Window *WindowHandle
	// Provider adopts a device created by a host application (for
	// example a gogpu window). Nil makes the driver create its own.
	Provider gpucontext.DeviceProvider
	// PresentMode selects the presentation mode. Zero means FIFO.
	PresentMode gputypes.PresentMode
	// PowerPreference guides adapter selection.
	PowerPreference gputypes.PowerPreference
}
