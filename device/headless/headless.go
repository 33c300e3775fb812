package headless

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/recording"
	"github.com/gogpu/g3d/shader"
)

func init() {
	device.Register(device.DriverHeadless, device.DriverFunc(func(cfg device.Config) (device.Device, error) {
		return New(cfg)
	}))
}

// Buffer is a live buffer.
type Buffer struct {
	Label string
	Usage gputypes.BufferUsage
	Data  []byte
}

// Texture is a live texture.
type Texture struct {
	Label         string
	Width, Height uint32
	Format        gputypes.TextureFormat
	Data          []byte
}

// Pipeline is a live pipeline.
type Pipeline struct {
	Desc device.PipelineDescriptor
}

// BindGroup is a live bind group.
type BindGroup struct {
	Desc device.BindGroupDescriptor
}

// Submission is one submitted frame.
type Submission struct {
	Frame     device.Frame
	Recording *recording.Recording
	Presented bool
}

// Device is an in-memory device. It is not safe for concurrent use.
type Device struct {
	width, height uint32
	format        gputypes.TextureFormat
	closed        bool

	ids        gpucore.IDAllocator
	buffers    map[gpucore.BufferID]*Buffer
	textures   map[gpucore.TextureID]*Texture
	pipelines  map[gpucore.PipelineID]*Pipeline
	bindGroups map[gpucore.BindGroupID]*BindGroup

	seq       uint64
	current   *device.Frame
	submitted bool

	submissions  []*Submission
	retain       int
	submitCount  uint64
	reconfigures int

	acquireErrs     []error
	createErrs      []error
	reconfigureErrs []error
}

// DefaultRetention is the number of submissions a new device keeps.
const DefaultRetention = 256

// New returns a device with frame targets of the configured size.
func New(cfg device.Config) (*Device, error) {
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: zero size %dx%d", device.ErrInvalidDescriptor, cfg.Width, cfg.Height)
	}
	d := &Device{
		width:      cfg.Width,
		height:     cfg.Height,
		format:     device.ChooseSurfaceFormat(nil),
		buffers:    make(map[gpucore.BufferID]*Buffer),
		textures:   make(map[gpucore.TextureID]*Texture),
		pipelines:  make(map[gpucore.PipelineID]*Pipeline),
		bindGroups: make(map[gpucore.BindGroupID]*BindGroup),
		retain:     DefaultRetention,
	}
	g3d.Logger().Info("headless: device opened",
		slog.Uint64("width", uint64(d.width)),
		slog.Uint64("height", uint64(d.height)))
	return d, nil
}

// FailAcquire queues errors returned by the next AcquireFrame calls, one per
// call.
func (d *Device) FailAcquire(errs ...error) {
	d.acquireErrs = append(d.acquireErrs, errs...)
}

// FailReconfigure queues errors returned by the next Reconfigure calls,
// one per call. A failed call leaves the size unchanged.
func (d *Device) FailReconfigure(errs ...error) {
	d.reconfigureErrs = append(d.reconfigureErrs, errs...)
}

// SetRetention sets how many of the most recent submissions are kept.
// Zero or less keeps every submission.
func (d *Device) SetRetention(n int) {
	d.retain = n
	d.trim()
}

func (d *Device) trim() {
	if d.retain > 0 && len(d.submissions) > d.retain {
		d.submissions = slices.Delete(d.submissions, 0, len(d.submissions)-d.retain)
	}
}

// FailCreate queues errors returned by the next Create* calls, one per
// call.
func (d *Device) FailCreate(errs ...error) {
	d.createErrs = append(d.createErrs, errs...)
}

func (d *Device) check() error {
	if d.closed {
		return device.ErrClosed
	}
	return nil
}

func (d *Device) checkCreate() error {
	if err := d.check(); err != nil {
		return err
	}
	if len(d.createErrs) > 0 {
		err := d.createErrs[0]
		d.createErrs = d.createErrs[1:]
		return err
	}
	return nil
}

// CreateBuffer implements device.Device.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (gpucore.BufferID, error) {
	if err := d.checkCreate(); err != nil {
		return gpucore.InvalidID, err
	}
	size := desc.ByteSize()
	if size == 0 || desc.Usage == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q: zero size or usage", device.ErrInvalidDescriptor, desc.Label)
	}
	if desc.Size != 0 && uint64(len(desc.Contents)) > desc.Size {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q: %d bytes of contents exceed size %d",
			device.ErrInvalidDescriptor, desc.Label, len(desc.Contents), desc.Size)
	}
	data := make([]byte, size)
	copy(data, desc.Contents)
	id := gpucore.BufferID(d.ids.Next())
	d.buffers[id] = &Buffer{Label: desc.Label, Usage: desc.Usage, Data: data}
	return id, nil
}

// WriteBuffer implements device.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	if err := d.check(); err != nil {
		return err
	}
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	switch {
	case b.Usage&gputypes.BufferUsageCopyDst == 0:
		return fmt.Errorf("%w: %s %q lacks CopyDst usage", device.ErrInvalidDescriptor, id, b.Label)
	case offset%4 != 0 || len(data)%4 != 0:
		return fmt.Errorf("%w: %s: unaligned write at %d of %d bytes", device.ErrInvalidDescriptor, id, offset, len(data))
	case offset+uint64(len(data)) > uint64(len(b.Data)):
		return fmt.Errorf("%w: %s: write of %d bytes at %d overruns %d-byte buffer",
			device.ErrInvalidDescriptor, id, len(data), offset, len(b.Data))
	}
	copy(b.Data[offset:], data)
	return nil
}

// CreateTexture implements device.Device.
func (d *Device) CreateTexture(desc *device.TextureDescriptor) (gpucore.TextureID, error) {
	if err := d.checkCreate(); err != nil {
		return gpucore.InvalidID, err
	}
	bpt, ok := device.BytesPerTexel(desc.Format)
	switch {
	case desc.Width == 0 || desc.Height == 0:
		return gpucore.InvalidID, fmt.Errorf("%w: texture %q: zero size", device.ErrInvalidDescriptor, desc.Label)
	case !ok:
		return gpucore.InvalidID, fmt.Errorf("%w: texture %q: unsupported format %s", device.ErrInvalidDescriptor, desc.Label, desc.Format)
	}
	want := int(desc.Width * desc.Height * bpt)
	if len(desc.Data) != 0 && len(desc.Data) != want {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %q: %d bytes of data, want %d",
			device.ErrInvalidDescriptor, desc.Label, len(desc.Data), want)
	}
	data := make([]byte, want)
	copy(data, desc.Data)
	id := gpucore.TextureID(d.ids.Next())
	d.textures[id] = &Texture{Label: desc.Label, Width: desc.Width, Height: desc.Height, Format: desc.Format, Data: data}
	return id, nil
}

// CreatePipeline implements device.Device. The shader is validated with
// naga, so compile errors surface here as they would on a GPU.
func (d *Device) CreatePipeline(desc *device.PipelineDescriptor) (gpucore.PipelineID, error) {
	if err := d.checkCreate(); err != nil {
		return gpucore.InvalidID, err
	}
	if desc.VertexEntry == "" || desc.FragmentEntry == "" {
		return gpucore.InvalidID, fmt.Errorf("%w: pipeline %q: missing entry point", device.ErrInvalidDescriptor, desc.Label)
	}
	if err := shader.Validate(desc.Shader, desc.VertexEntry, desc.FragmentEntry); err != nil {
		return gpucore.InvalidID, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	cp := *desc
	cp.VertexBuffers = slices.Clone(desc.VertexBuffers)
	cp.Bindings = slices.Clone(desc.Bindings)
	id := gpucore.PipelineID(d.ids.Next())
	d.pipelines[id] = &Pipeline{Desc: cp}
	return id, nil
}

// CreateBindGroup implements device.Device. Entries must match the
// pipeline's group 0 layout one to one.
func (d *Device) CreateBindGroup(desc *device.BindGroupDescriptor) (gpucore.BindGroupID, error) {
	if err := d.checkCreate(); err != nil {
		return gpucore.InvalidID, err
	}
	p, ok := d.pipelines[desc.Pipeline]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: bind group %q: %s", device.ErrUnknownResource, desc.Label, desc.Pipeline)
	}
	if len(desc.Entries) != len(p.Desc.Bindings) {
		return gpucore.InvalidID, fmt.Errorf("%w: bind group %q: %d entries for a %d-binding layout",
			device.ErrInvalidDescriptor, desc.Label, len(desc.Entries), len(p.Desc.Bindings))
	}
	for _, e := range desc.Entries {
		if err := d.checkBindGroupEntry(desc.Label, p, e); err != nil {
			return gpucore.InvalidID, err
		}
	}
	cp := *desc
	cp.Entries = slices.Clone(desc.Entries)
	id := gpucore.BindGroupID(d.ids.Next())
	d.bindGroups[id] = &BindGroup{Desc: cp}
	return id, nil
}

func (d *Device) checkBindGroupEntry(label string, p *Pipeline, e device.BindGroupEntry) error {
	i := slices.IndexFunc(p.Desc.Bindings, func(l gputypes.BindGroupLayoutEntry) bool {
		return l.Binding == e.Binding
	})
	if i < 0 {
		return fmt.Errorf("%w: bind group %q: binding %d not in layout", device.ErrInvalidDescriptor, label, e.Binding)
	}
	layout := p.Desc.Bindings[i]
	switch {
	case layout.Buffer != nil:
		b, ok := d.buffers[e.Buffer]
		if !ok || e.Texture.Valid() {
			return fmt.Errorf("%w: bind group %q: binding %d needs a live buffer", device.ErrInvalidDescriptor, label, e.Binding)
		}
		if uint64(len(b.Data)) < layout.Buffer.MinBindingSize {
			return fmt.Errorf("%w: bind group %q: binding %d: buffer smaller than %d bytes",
				device.ErrInvalidDescriptor, label, e.Binding, layout.Buffer.MinBindingSize)
		}
	case layout.Texture != nil:
		if _, ok := d.textures[e.Texture]; !ok || e.Buffer.Valid() {
			return fmt.Errorf("%w: bind group %q: binding %d needs a live texture", device.ErrInvalidDescriptor, label, e.Binding)
		}
	}
	return nil
}

// ReleaseBuffer implements device.Device.
func (d *Device) ReleaseBuffer(id gpucore.BufferID) { delete(d.buffers, id) }

// ReleaseTexture implements device.Device.
func (d *Device) ReleaseTexture(id gpucore.TextureID) { delete(d.textures, id) }

// ReleasePipeline implements device.Device.
func (d *Device) ReleasePipeline(id gpucore.PipelineID) { delete(d.pipelines, id) }

// ReleaseBindGroup implements device.Device.
func (d *Device) ReleaseBindGroup(id gpucore.BindGroupID) { delete(d.bindGroups, id) }

// SurfaceFormat implements device.Device.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// AcquireFrame implements device.Device.
func (d *Device) AcquireFrame() (device.Frame, error) {
	if err := d.check(); err != nil {
		return device.Frame{}, err
	}
	if len(d.acquireErrs) > 0 {
		err := d.acquireErrs[0]
		d.acquireErrs = d.acquireErrs[1:]
		if err != nil {
			d.current = nil
			return device.Frame{}, err
		}
	}
	d.seq++
	f := device.Frame{Seq: d.seq, Width: d.width, Height: d.height, Format: d.format}
	d.current = &f
	d.submitted = false
	return f, nil
}

// Submit implements device.Device. The recording is replayed against the
// live objects and rejected on the first invalid command.
func (d *Device) Submit(frame device.Frame, r *recording.Recording) error {
	if err := d.check(); err != nil {
		return err
	}
	if d.current == nil || d.current.Seq != frame.Seq {
		return fmt.Errorf("%w: frame %d", device.ErrStaleFrame, frame.Seq)
	}
	v := &validator{d: d}
	if err := r.Playback(v); err != nil {
		return err
	}
	if v.err != nil {
		return v.err
	}
	d.submissions = append(d.submissions, &Submission{Frame: frame, Recording: r})
	d.trim()
	d.submitCount++
	d.submitted = true
	return nil
}

// Present implements device.Device.
func (d *Device) Present(frame device.Frame) error {
	if err := d.check(); err != nil {
		return err
	}
	if d.current == nil || d.current.Seq != frame.Seq || !d.submitted {
		return fmt.Errorf("%w: frame %d not acquired and submitted", device.ErrStaleFrame, frame.Seq)
	}
	d.submissions[len(d.submissions)-1].Presented = true
	d.current = nil
	return nil
}

// Reconfigure implements device.Device.
func (d *Device) Reconfigure(width, height uint32) error {
	if err := d.check(); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: zero size %dx%d", device.ErrInvalidDescriptor, width, height)
	}
	if len(d.reconfigureErrs) > 0 {
		err := d.reconfigureErrs[0]
		d.reconfigureErrs = d.reconfigureErrs[1:]
		if err != nil {
			return err
		}
	}
	d.width, d.height = width, height
	d.current = nil
	d.reconfigures++
	return nil
}

// Info implements device.Device.
func (d *Device) Info() gputypes.AdapterInfo {
	return gputypes.AdapterInfo{
		Name:       "headless",
		DeviceType: gputypes.DeviceTypeCPU,
		Backend:    gputypes.BackendEmpty,
	}
}

// Close implements device.Device.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	clear(d.buffers)
	clear(d.textures)
	clear(d.pipelines)
	clear(d.bindGroups)
	d.current = nil
	return nil
}

// Size returns the frame target size.
func (d *Device) Size() (width, height uint32) { return d.width, d.height }

// Reconfigures returns how many times Reconfigure succeeded.
func (d *Device) Reconfigures() int { return d.reconfigures }

// Submissions returns the retained submissions, oldest first. See
// SetRetention.
func (d *Device) Submissions() []*Submission { return d.submissions }

// SubmitCount returns the number of accepted submissions, including those
// no longer retained.
func (d *Device) SubmitCount() uint64 { return d.submitCount }

// LastSubmission returns the most recent submission, or nil.
func (d *Device) LastSubmission() *Submission {
	if len(d.submissions) == 0 {
		return nil
	}
	return d.submissions[len(d.submissions)-1]
}

// Buffer returns a live buffer.
func (d *Device) Buffer(id gpucore.BufferID) (*Buffer, bool) {
	b, ok := d.buffers[id]
	return b, ok
}

// Texture returns a live texture.
func (d *Device) Texture(id gpucore.TextureID) (*Texture, bool) {
	t, ok := d.textures[id]
	return t, ok
}

// Pipeline returns a live pipeline.
func (d *Device) Pipeline(id gpucore.PipelineID) (*Pipeline, bool) {
	p, ok := d.pipelines[id]
	return p, ok
}

// BindGroup returns a live bind group.
func (d *Device) BindGroup(id gpucore.BindGroupID) (*BindGroup, bool) {
	g, ok := d.bindGroups[id]
	return g, ok
}

// Counts reports the number of live objects of each kind.
type Counts struct {
	Buffers, Textures, Pipelines, BindGroups int
}

// Total returns the sum of all counts.
func (c Counts) Total() int { return c.Buffers + c.Textures + c.Pipelines + c.BindGroups }

// Live returns the number of live objects.
func (d *Device) Live() Counts {
	return Counts{
		Buffers:    len(d.buffers),
		Textures:   len(d.textures),
		Pipelines:  len(d.pipelines),
		BindGroups: len(d.bindGroups),
	}
}

var _ device.Device = (*Device)(nil)
