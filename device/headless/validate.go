package headless

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/recording"
)

type vertexBinding struct {
	buf    *Buffer
	offset uint64
}

// validator replays a recording against the device's live objects.
// Draw commands cannot return errors, so the first draw failure is kept in
// err and checked after playback.
type validator struct {
	d   *Device
	err error

	pipeline    *Pipeline
	bindGroup   bool
	vertex      map[uint32]vertexBinding
	index       *Buffer
	indexOffset uint64
	indexFormat gputypes.IndexFormat
}

func (v *validator) BeginPass(string, gputypes.Color) error {
	v.pipeline = nil
	v.bindGroup = false
	v.vertex = make(map[uint32]vertexBinding)
	v.index = nil
	return nil
}

func (v *validator) EndPass() error { return nil }

func (v *validator) SetPipeline(id gpucore.PipelineID) error {
	p, ok := v.d.pipelines[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	v.pipeline = p
	return nil
}

func (v *validator) SetBindGroup(index uint32, id gpucore.BindGroupID) error {
	g, ok := v.d.bindGroups[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	if index != 0 {
		return fmt.Errorf("%w: bind group index %d (only group 0 exists)", device.ErrInvalidDescriptor, index)
	}
	if v.pipeline == nil || v.d.pipelines[g.Desc.Pipeline] != v.pipeline {
		return fmt.Errorf("%w: %s was created for another pipeline", device.ErrInvalidDescriptor, id)
	}
	v.bindGroup = true
	return nil
}

func (v *validator) SetVertexBuffer(slot uint32, id gpucore.BufferID, offset uint64) error {
	b, ok := v.d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	if b.Usage&gputypes.BufferUsageVertex == 0 {
		return fmt.Errorf("%w: %s %q lacks Vertex usage", device.ErrInvalidDescriptor, id, b.Label)
	}
	v.vertex[slot] = vertexBinding{buf: b, offset: offset}
	return nil
}

func (v *validator) SetIndexBuffer(id gpucore.BufferID, format gputypes.IndexFormat, offset uint64) error {
	b, ok := v.d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownResource, id)
	}
	if b.Usage&gputypes.BufferUsageIndex == 0 {
		return fmt.Errorf("%w: %s %q lacks Index usage", device.ErrInvalidDescriptor, id, b.Label)
	}
	v.index, v.indexOffset, v.indexFormat = b, offset, format
	return nil
}

func (v *validator) Draw(cmd recording.DrawCommand) {
	v.fail(v.checkDraw(cmd.FirstVertex+cmd.VertexCount, cmd.FirstInstance+cmd.InstanceCount))
}

func (v *validator) DrawIndexed(cmd recording.DrawIndexedCommand) {
	if v.err != nil {
		return
	}
	size := uint64(2)
	if v.indexFormat == gputypes.IndexFormatUint32 {
		size = 4
	}
	end := v.indexOffset + uint64(cmd.FirstIndex+cmd.IndexCount)*size
	if end > uint64(len(v.index.Data)) {
		v.fail(fmt.Errorf("%w: indexed draw reads %d bytes of a %d-byte index buffer",
			device.ErrInvalidDescriptor, end, len(v.index.Data)))
		return
	}
	v.fail(v.checkDraw(0, cmd.FirstInstance+cmd.InstanceCount))
}

// checkDraw verifies the bind group and vertex buffers required by the
// pipeline. vertexEnd is checked only for non-indexed draws.
func (v *validator) checkDraw(vertexEnd, instanceEnd uint32) error {
	p := v.pipeline.Desc
	if len(p.Bindings) > 0 && !v.bindGroup {
		return fmt.Errorf("%w: pipeline %q drawn without its bind group", device.ErrInvalidDescriptor, p.Label)
	}
	for slot, layout := range p.VertexBuffers {
		vb, ok := v.vertex[uint32(slot)]
		if !ok {
			return fmt.Errorf("%w: pipeline %q: vertex buffer slot %d unbound", device.ErrInvalidDescriptor, p.Label, slot)
		}
		var need uint64
		switch layout.StepMode {
		case gputypes.VertexStepModeInstance:
			need = vb.offset + uint64(instanceEnd)*layout.ArrayStride
		default:
			need = vb.offset + uint64(vertexEnd)*layout.ArrayStride
		}
		if need > uint64(len(vb.buf.Data)) {
			return fmt.Errorf("%w: pipeline %q: slot %d reads %d bytes of a %d-byte buffer",
				device.ErrInvalidDescriptor, p.Label, slot, need, len(vb.buf.Data))
		}
	}
	return nil
}

func (v *validator) fail(err error) {
	if v.err == nil && err != nil {
		v.err = err
	}
}
