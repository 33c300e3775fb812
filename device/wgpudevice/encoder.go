// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpudevice

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/recording"
)

var errNoPass = errors.New("wgpudevice: no render pass open")

// passEncoder replays a recording onto a wgpu command encoder.
type passEncoder struct {
	d      *Device
	enc    *wgpu.CommandEncoder
	target *wgpu.TextureView
	pass   *wgpu.RenderPassEncoder
}

var _ recording.Encoder = (*passEncoder)(nil)

func (e *passEncoder) BeginPass(label string, clear gputypes.Color) error {
	if e.target == nil {
		return fmt.Errorf("%w: no frame target", device.ErrStaleFrame)
	}
	pass, err := e.enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       e.target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	})
	if err != nil {
		return translate("begin render pass", err)
	}
	e.pass = pass
	return nil
}

func (e *passEncoder) EndPass() error {
	if e.pass == nil {
		return errNoPass
	}
	err := e.pass.End()
	e.pass = nil
	return translate("end render pass", err)
}

// abort closes a pass left open by a failed playback.
func (e *passEncoder) abort() {
	if e.pass != nil {
		_ = e.pass.End()
		e.pass = nil
	}
}

func (e *passEncoder) SetPipeline(id gpucore.PipelineID) error {
	p, ok := e.d.pipelines[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	e.pass.SetPipeline(p.pipeline)
	return nil
}

func (e *passEncoder) SetBindGroup(index uint32, id gpucore.BindGroupID) error {
	bg, ok := e.d.bindGroups[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	e.pass.SetBindGroup(index, bg, nil)
	return nil
}

func (e *passEncoder) SetVertexBuffer(slot uint32, id gpucore.BufferID, offset uint64) error {
	b, ok := e.d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	e.pass.SetVertexBuffer(slot, b.buf, offset)
	return nil
}

func (e *passEncoder) SetIndexBuffer(id gpucore.BufferID, format gputypes.IndexFormat, offset uint64) error {
	b, ok := e.d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	e.pass.SetIndexBuffer(b.buf, format, offset)
	return nil
}

func (e *passEncoder) Draw(cmd recording.DrawCommand) {
	e.pass.Draw(cmd.VertexCount, cmd.InstanceCount, cmd.FirstVertex, cmd.FirstInstance)
}

func (e *passEncoder) DrawIndexed(cmd recording.DrawIndexedCommand) {
	e.pass.DrawIndexed(cmd.IndexCount, cmd.InstanceCount, cmd.FirstIndex, cmd.BaseVertex, cmd.FirstInstance)
}
