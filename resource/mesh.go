package resource

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/gpucore"
)

// Mesh is GPU-resident geometry identified by a string key. A Mesh is
// immutable once created.
type Mesh struct {
	Key       string
	Technique Technique

	VertexBuffer gpucore.BufferID
	IndexBuffer  gpucore.BufferID
	IndexCount   uint32
	IndexFormat  gputypes.IndexFormat
}

// Indexed reports whether the mesh carries vertex and index buffers.
func (m *Mesh) Indexed() bool { return m.IndexBuffer.Valid() }

// MeshOption configures mesh creation.
type MeshOption func(*meshOptions)

type meshOptions struct {
	technique Technique
}

// WithTechnique selects the technique a mesh is drawn with. The default is
// TechniqueTexturedMesh.
func WithTechnique(t Technique) MeshOption {
	return func(o *meshOptions) { o.technique = t }
}
