// Package geometry builds vertex and index data for the meshes the renderer
// draws.
package geometry

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the size in bytes of one packed Vertex.
const VertexStride = 24

// Vertex is a mesh vertex: a homogeneous position and a texture coordinate.
type Vertex struct {
	Pos [4]float32
	UV  [2]float32
}

// Mesh is indexed triangle-list geometry.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// VertexLayout describes Vertex for pipeline creation (slot 0, per vertex).
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
		},
	}
}

func vertex(x, y, z, u, v float32) Vertex {
	return Vertex{Pos: [4]float32{x, y, z, 1}, UV: [2]float32{u, v}}
}

// Cube returns a unit cube centered on the origin with edge length 2.
// Each face has its own four vertices so texture coordinates stay per face.
// Triangles wind counter-clockwise seen from outside.
func Cube() Mesh {
	vertices := []Vertex{
		// top (0, 0, 1)
		vertex(-1, -1, 1, 0, 0),
		vertex(1, -1, 1, 1, 0),
		vertex(1, 1, 1, 1, 1),
		vertex(-1, 1, 1, 0, 1),
		// bottom (0, 0, -1)
		vertex(-1, 1, -1, 1, 0),
		vertex(1, 1, -1, 0, 0),
		vertex(1, -1, -1, 0, 1),
		vertex(-1, -1, -1, 1, 1),
		// right (1, 0, 0)
		vertex(1, -1, -1, 0, 0),
		vertex(1, 1, -1, 1, 0),
		vertex(1, 1, 1, 1, 1),
		vertex(1, -1, 1, 0, 1),
		// left (-1, 0, 0)
		vertex(-1, -1, 1, 1, 0),
		vertex(-1, 1, 1, 0, 0),
		vertex(-1, 1, -1, 0, 1),
		vertex(-1, -1, -1, 1, 1),
		// front (0, 1, 0)
		vertex(1, 1, -1, 1, 0),
		vertex(-1, 1, -1, 0, 0),
		vertex(-1, 1, 1, 0, 1),
		vertex(1, 1, 1, 1, 1),
		// back (0, -1, 0)
		vertex(1, -1, 1, 0, 0),
		vertex(-1, -1, 1, 1, 0),
		vertex(-1, -1, -1, 1, 1),
		vertex(1, -1, -1, 0, 1),
	}

	indices := make([]uint16, 0, 36)
	for face := uint16(0); face < 6; face++ {
		b := face * 4
		indices = append(indices, b, b+1, b+2, b+2, b+3, b)
	}
	return Mesh{Vertices: vertices, Indices: indices}
}

// VertexBytes packs the vertices in little-endian order, VertexStride bytes
// each.
func (m Mesh) VertexBytes() []byte {
	out := make([]byte, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		for _, f := range v.Pos {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		for _, f := range v.UV {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// IndexBytes packs the indices as little-endian uint16.
func (m Mesh) IndexBytes() []byte {
	out := make([]byte, 0, len(m.Indices)*2)
	for _, i := range m.Indices {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}

// IndexCount returns the number of indices.
func (m Mesh) IndexCount() uint32 { return uint32(len(m.Indices)) }
