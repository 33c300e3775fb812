// Package scene holds the ordered list of mesh instances drawn each frame.
//
// A Scene only references meshes owned by a resource cache; it never
// creates or frees GPU objects. Insertion order is draw order.
package scene

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/resource"
)

// ErrUnknownMesh is returned by Add when no mesh is stored under the key.
var ErrUnknownMesh = errors.New("scene: unknown mesh")

// MeshResolver resolves mesh keys. *resource.Cache implements it.
type MeshResolver interface {
	LookupMesh(key string) (*resource.Mesh, bool)
}

// Instance is one placement of a mesh. Instances are immutable.
type Instance struct {
	key      string
	mesh     *resource.Mesh
	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
	model    mgl32.Mat4
}

// MeshKey returns the key of the instanced mesh.
func (i *Instance) MeshKey() string { return i.key }

// Mesh returns the mesh resolved when the instance was added.
func (i *Instance) Mesh() *resource.Mesh { return i.mesh }

// Position returns the translation.
func (i *Instance) Position() mgl32.Vec3 { return i.position }

// Rotation returns the Euler angles in radians.
func (i *Instance) Rotation() mgl32.Vec3 { return i.rotation }

// Scale returns the per-axis scale.
func (i *Instance) Scale() mgl32.Vec3 { return i.scale }

// Model returns the model matrix.
func (i *Instance) Model() mgl32.Mat4 { return i.model }

// ModelMatrix returns T(position) * Rz * Ry * Rx * S(scale). Rotation
// angles are in radians.
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DZ(rotation.Z()).
		Mul4(mgl32.HomogRotate3DY(rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(rotation.X()))
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Scene is an ordered collection of instances. It is not safe for
// concurrent use.
type Scene struct {
	id        uint64
	meshes    MeshResolver
	instances []*Instance

	// revision is incremented on each modification
	revision uint64
}

// lastID numbers scenes in creation order.
var lastID atomic.Uint64

// New returns an empty scene resolving mesh keys through meshes.
func New(meshes MeshResolver) *Scene {
	return &Scene{id: lastID.Add(1), meshes: meshes}
}

// ID returns a process-unique identifier of the scene. Together with
// Revision it names one exact instance list.
func (s *Scene) ID() uint64 { return s.id }

// Add appends an instance of the mesh stored under key.
func (s *Scene) Add(key string, position, rotation, scale mgl32.Vec3) (*Instance, error) {
	mesh, ok := s.meshes.LookupMesh(key)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMesh, key)
	}
	inst := &Instance{
		key:      key,
		mesh:     mesh,
		position: position,
		rotation: rotation,
		scale:    scale,
		model:    ModelMatrix(position, rotation, scale),
	}
	s.instances = append(s.instances, inst)
	s.revision++
	return inst, nil
}

// Instances iterates over the instances in draw order, yielding each with
// its index.
func (s *Scene) Instances() iter.Seq2[int, *Instance] {
	return func(yield func(int, *Instance) bool) {
		for i, inst := range s.instances {
			if !yield(i, inst) {
				return
			}
		}
	}
}

// Models returns the model matrices in draw order.
func (s *Scene) Models() []mgl32.Mat4 {
	models := make([]mgl32.Mat4, len(s.instances))
	for i, inst := range s.instances {
		models[i] = inst.model
	}
	return models
}

// Remove removes inst and reports whether it was in the scene.
func (s *Scene) Remove(inst *Instance) bool {
	i := slices.Index(s.instances, inst)
	if i < 0 {
		return false
	}
	s.instances = slices.Delete(s.instances, i, i+1)
	s.revision++
	return true
}

// Clear removes every instance.
func (s *Scene) Clear() {
	if len(s.instances) == 0 {
		return
	}
	clear(s.instances)
	s.instances = s.instances[:0]
	s.revision++
}

// Len returns the number of instances.
func (s *Scene) Len() int { return len(s.instances) }

// Revision changes whenever the instance list changes.
func (s *Scene) Revision() uint64 { return s.revision }
