// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpudevice

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/shader"
)

type buffer struct {
	buf  *wgpu.Buffer
	size uint64
}

type texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *texture) release() {
	t.view.Release()
	t.tex.Release()
}

type pipeline struct {
	pipeline *wgpu.RenderPipeline
	layout   *wgpu.PipelineLayout
	group    *wgpu.BindGroupLayout // nil without bindings
	module   *wgpu.ShaderModule
}

// release releases whatever parts of the pipeline were created.
func (p *pipeline) release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.group != nil {
		p.group.Release()
	}
	if p.module != nil {
		p.module.Release()
	}
}

// CreateBuffer implements device.Device. Initial contents are written
// through the queue, so CopyDst is added to the usage when needed.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (gpucore.BufferID, error) {
	if err := d.check(); err != nil {
		return gpucore.InvalidID, err
	}
	size := desc.ByteSize()
	if size == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q has zero size", device.ErrInvalidDescriptor, desc.Label)
	}
	usage := desc.Usage
	if len(desc.Contents) > 0 {
		usage |= gputypes.BufferUsageCopyDst
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{Label: desc.Label, Size: size, Usage: usage})
	if err != nil {
		return gpucore.InvalidID, translate("create buffer "+desc.Label, err)
	}
	if len(desc.Contents) > 0 {
		data := desc.Contents
		if pad := int(size) - len(data); pad > 0 {
			data = append(data[:len(data):len(data)], make([]byte, pad)...)
		}
		if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
			buf.Release()
			return gpucore.InvalidID, translate("write buffer "+desc.Label, err)
		}
	}
	id := gpucore.BufferID(d.ids.Next())
	d.buffers[id] = &buffer{buf: buf, size: size}
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
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: write of %d bytes at %d overflows %s (%d bytes)",
			device.ErrInvalidDescriptor, len(data), offset, id, b.size)
	}
	return translate("write "+id.String(), d.queue.WriteBuffer(b.buf, offset, data))
}

// CreateTexture implements device.Device.
func (d *Device) CreateTexture(desc *device.TextureDescriptor) (gpucore.TextureID, error) {
	if err := d.check(); err != nil {
		return gpucore.InvalidID, err
	}
	bpt, ok := device.BytesPerTexel(desc.Format)
	if !ok || desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %q %dx%d %s",
			device.ErrInvalidDescriptor, desc.Label, desc.Width, desc.Height, desc.Format)
	}
	usage := desc.Usage
	if len(desc.Data) > 0 {
		if len(desc.Data) != int(desc.Width*desc.Height*bpt) {
			return gpucore.InvalidID, fmt.Errorf("%w: texture %q data is %d bytes, want %d",
				device.ErrInvalidDescriptor, desc.Label, len(desc.Data), desc.Width*desc.Height*bpt)
		}
		usage |= gputypes.TextureUsageCopyDst
	}

	size := wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return gpucore.InvalidID, translate("create texture "+desc.Label, err)
	}
	if len(desc.Data) > 0 {
		err = d.queue.WriteTexture(
			&wgpu.ImageCopyTexture{Texture: tex},
			desc.Data,
			&wgpu.ImageDataLayout{BytesPerRow: desc.Width * bpt, RowsPerImage: desc.Height},
			&size,
		)
		if err != nil {
			tex.Release()
			return gpucore.InvalidID, translate("write texture "+desc.Label, err)
		}
	}
	view, err := d.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return gpucore.InvalidID, translate("create texture view "+desc.Label, err)
	}
	id := gpucore.TextureID(d.ids.Next())
	d.textures[id] = &texture{tex: tex, view: view}
	return id, nil
}

// CreatePipeline implements device.Device. The shader is checked with naga
// first, so compile errors carry shader.ErrCompile. Vulkan receives SPIR-V;
// other backends translate the WGSL themselves.
func (d *Device) CreatePipeline(desc *device.PipelineDescriptor) (_ gpucore.PipelineID, err error) {
	if err := d.check(); err != nil {
		return gpucore.InvalidID, err
	}
	if err := shader.Validate(desc.Shader, desc.VertexEntry, desc.FragmentEntry); err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: pipeline %q: %w", device.ErrInvalidDescriptor, desc.Label, err)
	}

	src := &wgpu.ShaderModuleDescriptor{Label: desc.Label}
	if d.info.Backend == gputypes.BackendVulkan {
		if src.SPIRV, err = shader.CompileSPIRV(desc.Shader); err != nil {
			return gpucore.InvalidID, fmt.Errorf("%w: pipeline %q: %w", device.ErrInvalidDescriptor, desc.Label, err)
		}
	} else {
		src.WGSL = desc.Shader
	}

	p := &pipeline{}
	defer func() {
		if err != nil {
			p.release()
		}
	}()

	if p.module, err = d.device.CreateShaderModule(src); err != nil {
		return gpucore.InvalidID, translate("create shader module "+desc.Label, err)
	}
	var groups []*wgpu.BindGroupLayout
	if len(desc.Bindings) > 0 {
		p.group, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   desc.Label,
			Entries: desc.Bindings,
		})
		if err != nil {
			return gpucore.InvalidID, translate("create bind group layout "+desc.Label, err)
		}
		groups = append(groups, p.group)
	}
	p.layout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: groups,
	})
	if err != nil {
		return gpucore.InvalidID, translate("create pipeline layout "+desc.Label, err)
	}
	p.pipeline, err = d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: desc.VertexEntry,
			Buffers:    desc.VertexBuffers,
		},
		Primitive:   desc.Primitive,
		Multisample: gputypes.DefaultMultisampleState(),
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    d.format,
				Blend:     desc.Blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return gpucore.InvalidID, translate("create render pipeline "+desc.Label, err)
	}

	id := gpucore.PipelineID(d.ids.Next())
	d.pipelines[id] = p
	return id, nil
}

// CreateBindGroup implements device.Device.
func (d *Device) CreateBindGroup(desc *device.BindGroupDescriptor) (gpucore.BindGroupID, error) {
	if err := d.check(); err != nil {
		return gpucore.InvalidID, err
	}
	p, ok := d.pipelines[desc.Pipeline]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: %s", device.ErrUnknownResource, desc.Pipeline)
	}
	if p.group == nil {
		return gpucore.InvalidID, fmt.Errorf("%w: %s has no bindings", device.ErrInvalidDescriptor, desc.Pipeline)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer.Valid():
			b, ok := d.buffers[e.Buffer]
			if !ok {
				return gpucore.InvalidID, fmt.Errorf("%w: %s", device.ErrUnknownResource, e.Buffer)
			}
			entry.Buffer = b.buf
		case e.Texture.Valid():
			t, ok := d.textures[e.Texture]
			if !ok {
				return gpucore.InvalidID, fmt.Errorf("%w: %s", device.ErrUnknownResource, e.Texture)
			}
			entry.TextureView = t.view
		default:
			return gpucore.InvalidID, fmt.Errorf("%w: binding %d has no resource", device.ErrInvalidDescriptor, e.Binding)
		}
		entries = append(entries, entry)
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  p.group,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, translate("create bind group "+desc.Label, err)
	}
	id := gpucore.BindGroupID(d.ids.Next())
	d.bindGroups[id] = bg
	return id, nil
}

// ReleaseBuffer implements device.Device.
func (d *Device) ReleaseBuffer(id gpucore.BufferID) {
	if b, ok := d.buffers[id]; ok {
		b.buf.Release()
		delete(d.buffers, id)
	}
}

// ReleaseTexture implements device.Device.
func (d *Device) ReleaseTexture(id gpucore.TextureID) {
	if t, ok := d.textures[id]; ok {
		t.release()
		delete(d.textures, id)
	}
}

// ReleasePipeline implements device.Device.
func (d *Device) ReleasePipeline(id gpucore.PipelineID) {
	if p, ok := d.pipelines[id]; ok {
		p.release()
		delete(d.pipelines, id)
	}
}

// ReleaseBindGroup implements device.Device.
func (d *Device) ReleaseBindGroup(id gpucore.BindGroupID) {
	if bg, ok := d.bindGroups[id]; ok {
		bg.Release()
		delete(d.bindGroups, id)
	}
}
