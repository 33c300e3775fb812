package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/shader"
)

// Technique names a way of drawing a mesh: a shader, its bindings and its
// fixed-function state.
type Technique uint8

const (
	// TechniqueTexturedMesh draws indexed meshes with a view-projection
	// uniform, a per-instance model matrix and an R8Uint texture.
	TechniqueTexturedMesh Technique = iota
	// TechniqueTriangle draws a hard-coded triangle with no buffers.
	TechniqueTriangle

	techniqueCount
)

// Techniques lists every technique.
var Techniques = []Technique{TechniqueTexturedMesh, TechniqueTriangle}

// Buffer slots and binding numbers of the textured mesh technique.
const (
	VertexSlot   = 0
	InstanceSlot = 1

	BindingViewProjection = 0
	BindingTexture        = 1
)

// MatrixSize is the size in bytes of a packed 4x4 float32 matrix.
const MatrixSize = 64

// ClearColor is the background the textured mesh technique clears to.
var ClearColor = gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}

type techniqueInfo struct {
	name    string
	shader  string
	indexed bool
	layout  func() techniqueLayout
}

type techniqueLayout struct {
	buffers   []gputypes.VertexBufferLayout
	bindings  []gputypes.BindGroupLayoutEntry
	primitive gputypes.PrimitiveState
}

var techniques = [techniqueCount]techniqueInfo{
	TechniqueTexturedMesh: {
		name:    "textured_mesh",
		shader:  shader.TexturedMesh,
		indexed: true,
		layout:  texturedMeshLayout,
	},
	TechniqueTriangle: {
		name:   "triangle",
		shader: shader.Triangle,
		layout: triangleLayout,
	},
}

// String returns the technique name.
func (t Technique) String() string {
	if t < techniqueCount {
		return techniques[t].name
	}
	return fmt.Sprintf("Technique(%d)", uint8(t))
}

// Valid reports whether t is a known technique.
func (t Technique) Valid() bool { return t < techniqueCount }

// Indexed reports whether meshes drawn with t carry vertex and index
// buffers.
func (t Technique) Indexed() bool { return t.Valid() && techniques[t].indexed }

// Shader returns the shader library name the technique compiles.
func (t Technique) Shader() string {
	if !t.Valid() {
		return ""
	}
	return techniques[t].shader
}

// TechniqueForShader returns the technique compiled from the named shader.
func TechniqueForShader(name string) (Technique, bool) {
	for _, t := range Techniques {
		if techniques[t].shader == name {
			return t, true
		}
	}
	return 0, false
}

// InstanceLayout is the per-instance model matrix, one column per
// attribute at locations 2 to 5.
func InstanceLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = gputypes.VertexAttribute{
			Format:         gputypes.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),
			ShaderLocation: uint32(2 + i),
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: MatrixSize,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

func texturedMeshLayout() techniqueLayout {
	return techniqueLayout{
		buffers: []gputypes.VertexBufferLayout{geometry.VertexLayout(), InstanceLayout()},
		bindings: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    BindingViewProjection,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: MatrixSize,
				},
			},
			{
				Binding:    BindingTexture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUint,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
		primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
	}
}

func triangleLayout() techniqueLayout {
	return techniqueLayout{
		primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
	}
}
