// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpudevice

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/recording"
)

func init() {
	device.Register(device.DriverWGPU, device.DriverFunc(func(cfg device.Config) (device.Device, error) {
		return Open(cfg)
	}))
}

// ErrNoHAL is returned when a device provider does not expose HAL objects.
var ErrNoHAL = errors.New("wgpudevice: provider does not expose HAL device and queue")

// halProvider is implemented by device providers that hand out their HAL
// device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Device is a device.Device backed by wgpu. It is not safe for concurrent
// use.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	external bool

	surface     *wgpu.Surface
	presentMode gputypes.PresentMode
	alphaMode   gputypes.CompositeAlphaMode

	// Offscreen target, used when there is no surface.
	target     *wgpu.Texture
	targetView *wgpu.TextureView

	info          gputypes.AdapterInfo
	format        gputypes.TextureFormat
	width, height uint32
	closed        bool

	ids        gpucore.IDAllocator
	buffers    map[gpucore.BufferID]*buffer
	textures   map[gpucore.TextureID]*texture
	pipelines  map[gpucore.PipelineID]*pipeline
	bindGroups map[gpucore.BindGroupID]*wgpu.BindGroup

	seq       uint64
	frame     *acquired
	submitted bool
}

// acquired is the frame target between AcquireFrame and Present.
type acquired struct {
	device.Frame
	surfaceTex *wgpu.SurfaceTexture
	view       *wgpu.TextureView
}

// Open creates a device from cfg. See the package documentation for the
// three ways a device can be set up.
func Open(cfg device.Config) (_ *Device, err error) {
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: zero size %dx%d", device.ErrInvalidDescriptor, cfg.Width, cfg.Height)
	}
	d := &Device{
		width:       cfg.Width,
		height:      cfg.Height,
		presentMode: cfg.PresentMode,
		buffers:     make(map[gpucore.BufferID]*buffer),
		textures:    make(map[gpucore.TextureID]*texture),
		pipelines:   make(map[gpucore.PipelineID]*pipeline),
		bindGroups:  make(map[gpucore.BindGroupID]*wgpu.BindGroup),
	}
	if d.presentMode == 0 {
		d.presentMode = gputypes.PresentModeFifo
	}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	if cfg.Provider != nil {
		err = d.adopt(cfg.Provider)
	} else {
		err = d.create(cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := d.configure(); err != nil {
		return nil, err
	}

	g3d.Logger().Info("wgpudevice: device opened",
		slog.String("adapter", d.info.Name),
		slog.String("backend", d.info.Backend.String()),
		slog.String("type", d.info.DeviceType.String()),
		slog.String("format", d.format.String()),
		slog.Bool("offscreen", d.surface == nil),
		slog.Bool("external", d.external))
	return d, nil
}

// create sets up an instance, adapter and device of our own.
func (d *Device) create(cfg device.Config) error {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("wgpudevice: create instance: %w", err)
	}
	d.instance = instance

	if cfg.Window != nil {
		surface, err := instance.CreateSurface(cfg.Window.Display, cfg.Window.Window)
		if err != nil {
			return fmt.Errorf("wgpudevice: create surface: %w", err)
		}
		d.surface = surface
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:   cfg.PowerPreference,
		CompatibleSurface: d.surface,
	})
	if err != nil {
		return fmt.Errorf("wgpudevice: request adapter: %w", err)
	}
	d.adapter = adapter
	d.info = adapter.Info()

	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("wgpudevice: request device: %w", err)
	}
	d.device = dev
	d.queue = dev.Queue()

	d.format = device.ChooseSurfaceFormat(nil)
	if d.surface != nil {
		if caps := adapter.GetSurfaceCapabilities(d.surface); caps != nil {
			d.format = device.ChooseSurfaceFormat(caps.Formats)
			if len(caps.AlphaModes) > 0 {
				d.alphaMode = caps.AlphaModes[0]
			}
		}
	}
	return nil
}

// adopt wraps the device of a host application. Frames are rendered to
// an offscreen target the host reads through Target.
func (d *Device) adopt(p gpucontext.DeviceProvider) error {
	hp, ok := p.(halProvider)
	if !ok {
		return ErrNoHAL
	}
	halDevice, ok := hp.HalDevice().(hal.Device)
	if !ok || halDevice == nil {
		return ErrNoHAL
	}
	halQueue, ok := hp.HalQueue().(hal.Queue)
	if !ok || halQueue == nil {
		return ErrNoHAL
	}

	dev, err := wgpu.NewDeviceFromHAL(halDevice, halQueue, 0, wgpu.DefaultLimits(), "g3d")
	if err != nil {
		return fmt.Errorf("wgpudevice: adopt device: %w", err)
	}
	d.device = dev
	d.queue = dev.Queue()
	d.external = true

	ai := p.AdapterInfo()
	d.info = gputypes.AdapterInfo{Name: ai.Name, DeviceType: deviceType(ai.Type)}
	d.format = p.SurfaceFormat()
	if d.format == gputypes.TextureFormatUndefined {
		d.format = device.ChooseSurfaceFormat(nil)
	}
	return nil
}

func deviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// configure sizes the surface, or recreates the offscreen target, to the
// current width and height.
func (d *Device) configure() error {
	d.dropFrame()
	if d.surface != nil {
		err := d.surface.Configure(d.device, &wgpu.SurfaceConfiguration{
			Width:       d.width,
			Height:      d.height,
			Format:      d.format,
			Usage:       gputypes.TextureUsageRenderAttachment,
			PresentMode: d.presentMode,
			AlphaMode:   d.alphaMode,
		})
		return translate("configure surface", err)
	}

	d.releaseTarget()
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "g3d offscreen target",
		Size:          wgpu.Extent3D{Width: d.width, Height: d.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return translate("create offscreen target", err)
	}
	view, err := d.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return translate("create offscreen target view", err)
	}
	d.target, d.targetView = tex, view
	return nil
}

func (d *Device) releaseTarget() {
	if d.targetView != nil {
		d.targetView.Release()
		d.targetView = nil
	}
	if d.target != nil {
		d.target.Release()
		d.target = nil
	}
}

// dropFrame abandons an acquired frame that was not presented.
func (d *Device) dropFrame() {
	if d.frame == nil {
		return
	}
	if d.frame.surfaceTex != nil {
		d.frame.view.Release()
		d.surface.DiscardTexture()
	}
	d.frame = nil
	d.submitted = false
}

func (d *Device) check() error {
	if d.closed {
		return device.ErrClosed
	}
	return nil
}

// SurfaceFormat implements device.Device.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// AcquireFrame implements device.Device.
func (d *Device) AcquireFrame() (device.Frame, error) {
	if err := d.check(); err != nil {
		return device.Frame{}, err
	}
	d.dropFrame()

	f := &acquired{view: d.targetView}
	if d.surface != nil {
		st, suboptimal, err := d.surface.GetCurrentTexture()
		if err != nil {
			return device.Frame{}, translate("acquire frame", err)
		}
		if suboptimal {
			g3d.Logger().Debug("wgpudevice: suboptimal surface texture")
		}
		view, err := st.CreateView(nil)
		if err != nil {
			d.surface.DiscardTexture()
			return device.Frame{}, translate("create frame view", err)
		}
		f.surfaceTex, f.view = st, view
	}

	d.seq++
	f.Frame = device.Frame{Seq: d.seq, Width: d.width, Height: d.height, Format: d.format}
	d.frame = f
	return f.Frame, nil
}

// Submit implements device.Device.
func (d *Device) Submit(frame device.Frame, r *recording.Recording) error {
	if err := d.check(); err != nil {
		return err
	}
	if d.frame == nil || d.frame.Seq != frame.Seq {
		return fmt.Errorf("%w: frame %d", device.ErrStaleFrame, frame.Seq)
	}

	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "g3d frame"})
	if err != nil {
		return translate("create command encoder", err)
	}
	pe := &passEncoder{d: d, enc: enc, target: d.frame.view}
	if err := r.Playback(pe); err != nil {
		pe.abort()
		enc.DiscardEncoding()
		return err
	}
	cb, err := enc.Finish()
	if err != nil {
		return translate("finish commands", err)
	}
	if _, err := d.queue.Submit(cb); err != nil {
		return translate("submit", err)
	}
	d.submitted = true
	return nil
}

// Present implements device.Device. Offscreen frames are complete once
// submitted.
func (d *Device) Present(frame device.Frame) error {
	if err := d.check(); err != nil {
		return err
	}
	if d.frame == nil || d.frame.Seq != frame.Seq || !d.submitted {
		return fmt.Errorf("%w: frame %d not acquired and submitted", device.ErrStaleFrame, frame.Seq)
	}
	f := d.frame
	d.frame, d.submitted = nil, false
	if f.surfaceTex == nil {
		return nil
	}
	err := d.surface.Present(f.surfaceTex)
	f.view.Release()
	return translate("present", err)
}

// Reconfigure implements device.Device.
func (d *Device) Reconfigure(width, height uint32) error {
	if err := d.check(); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: zero size %dx%d", device.ErrInvalidDescriptor, width, height)
	}
	d.width, d.height = width, height
	return d.configure()
}

// Info implements device.Device.
func (d *Device) Info() gputypes.AdapterInfo { return d.info }

// Target returns the offscreen target texture, or nil when rendering to a
// window surface. The texture is replaced on Reconfigure.
func (d *Device) Target() *wgpu.Texture { return d.target }

// Close implements device.Device. Objects are released in reverse creation
// order; an adopted device is left to its owner.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.device != nil {
		_ = d.device.WaitIdle()
	}
	d.dropFrame()

	for id, bg := range d.bindGroups {
		bg.Release()
		delete(d.bindGroups, id)
	}
	for id, p := range d.pipelines {
		p.release()
		delete(d.pipelines, id)
	}
	for id, t := range d.textures {
		t.release()
		delete(d.textures, id)
	}
	for id, b := range d.buffers {
		b.buf.Release()
		delete(d.buffers, id)
	}
	d.releaseTarget()

	if d.surface != nil {
		d.surface.Unconfigure()
		d.surface.Release()
		d.surface = nil
	}
	if d.device != nil && !d.external {
		d.device.Release()
	}
	d.device, d.queue = nil, nil
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	g3d.Logger().Info("wgpudevice: device closed")
	return nil
}
