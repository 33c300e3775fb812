package resource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/device"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/shader"
	"github.com/gogpu/g3d/texture"
)

// Pipeline is a compiled technique together with the device objects it
// owns privately. Fields other than ID and BindGroup are zero for
// techniques that do not use them.
type Pipeline struct {
	Technique Technique
	ID        gpucore.PipelineID
	BindGroup gpucore.BindGroupID

	// Uniform holds the view-projection matrix.
	Uniform gpucore.BufferID
	// Texture is the R8Uint texture bound at BindingTexture.
	Texture gpucore.TextureID
	// Instances holds one model matrix per scene instance.
	Instances gpucore.BufferID

	instanceCap int
	scene       uint64
	revision    uint64
	uploaded    bool
}

// HasBindGroup reports whether the pipeline binds group 0.
func (p *Pipeline) HasBindGroup() bool { return p.BindGroup.Valid() }

// WriteViewProjection uploads the camera matrix. It is a no-op for
// techniques without a uniform buffer.
func (p *Pipeline) WriteViewProjection(dev device.Device, vp mgl32.Mat4) error {
	if !p.Uniform.Valid() {
		return nil
	}
	if err := dev.WriteBuffer(p.Uniform, 0, PackMatrices(vp)); err != nil {
		return fmt.Errorf("resource: %s: write view-projection: %w", p.Technique, err)
	}
	return nil
}

// InstancesCurrent reports whether the instance buffer holds the matrices
// of the given revision of the scene identified by scene.
func (p *Pipeline) InstancesCurrent(scene, revision uint64) bool {
	return p.uploaded && p.scene == scene && p.revision == revision
}

// UploadInstances writes the model matrices for a scene revision, growing
// the instance buffer when it is too small. It is a no-op for techniques
// without per-instance data.
func (p *Pipeline) UploadInstances(dev device.Device, scene, revision uint64, models []mgl32.Mat4) error {
	if p.Technique != TechniqueTexturedMesh {
		p.scene, p.revision, p.uploaded = scene, revision, true
		return nil
	}
	if len(models) > p.instanceCap || !p.Instances.Valid() {
		capacity := max(len(models), 2*p.instanceCap, 16)
		id, err := dev.CreateBuffer(&device.BufferDescriptor{
			Label: p.Technique.String() + " instances",
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
			Size:  uint64(capacity * MatrixSize),
		})
		if err != nil {
			return fmt.Errorf("resource: %s: grow instance buffer: %w", p.Technique, err)
		}
		if p.Instances.Valid() {
			dev.ReleaseBuffer(p.Instances)
		}
		p.Instances = id
		p.instanceCap = capacity
	}
	if len(models) > 0 {
		if err := dev.WriteBuffer(p.Instances, 0, PackMatrices(models...)); err != nil {
			return fmt.Errorf("resource: %s: write instances: %w", p.Technique, err)
		}
	}
	p.scene, p.revision = scene, revision
	p.uploaded = true
	return nil
}

// release frees every device object of the pipeline, dependents first.
func (p *Pipeline) release(dev device.Device) {
	if p.BindGroup.Valid() {
		dev.ReleaseBindGroup(p.BindGroup)
	}
	if p.ID.Valid() {
		dev.ReleasePipeline(p.ID)
	}
	if p.Instances.Valid() {
		dev.ReleaseBuffer(p.Instances)
	}
	if p.Uniform.Valid() {
		dev.ReleaseBuffer(p.Uniform)
	}
	if p.Texture.Valid() {
		dev.ReleaseTexture(p.Texture)
	}
	*p = Pipeline{Technique: p.Technique}
}

// buildPipeline creates the pipeline for t from source. On failure every
// object created so far is released.
func buildPipeline(dev device.Device, t Technique, source string, texels texture.Texels) (_ *Pipeline, err error) {
	p := &Pipeline{Technique: t}
	defer func() {
		if err != nil {
			p.release(dev)
		}
	}()

	layout := techniques[t].layout()
	p.ID, err = dev.CreatePipeline(&device.PipelineDescriptor{
		Label:         t.String(),
		Shader:        source,
		VertexEntry:   shader.VertexEntry,
		FragmentEntry: shader.FragmentEntry,
		VertexBuffers: layout.buffers,
		Bindings:      layout.bindings,
		Primitive:     layout.primitive,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: %s: create pipeline: %w", t, err)
	}
	if len(layout.bindings) == 0 {
		return p, nil
	}

	p.Uniform, err = dev.CreateBuffer(&device.BufferDescriptor{
		Label:    t.String() + " view-projection",
		Usage:    gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		Contents: PackMatrices(mgl32.Ident4()),
	})
	if err != nil {
		return nil, fmt.Errorf("resource: %s: create uniform buffer: %w", t, err)
	}

	p.Texture, err = dev.CreateTexture(&device.TextureDescriptor{
		Label:  t.String() + " texture",
		Width:  texels.Size,
		Height: texels.Size,
		Format: gputypes.TextureFormatR8Uint,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		Data:   texels.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: %s: create texture: %w", t, err)
	}

	p.BindGroup, err = dev.CreateBindGroup(&device.BindGroupDescriptor{
		Label:    t.String() + " bind group",
		Pipeline: p.ID,
		Entries: []device.BindGroupEntry{
			{Binding: BindingViewProjection, Buffer: p.Uniform},
			{Binding: BindingTexture, Texture: p.Texture},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("resource: %s: create bind group: %w", t, err)
	}
	return p, nil
}

// PackMatrices packs column-major matrices as little-endian float32.
func PackMatrices(ms ...mgl32.Mat4) []byte {
	out := make([]byte, 0, len(ms)*MatrixSize)
	for _, m := range ms {
		for _, f := range m {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}
