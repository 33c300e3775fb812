package engine

import "github.com/go-gl/mathgl/mgl32"

// Built-in mesh keys.
const (
	MeshCube     = "cube"
	MeshTriangle = "triangle"
)

// InstanceSpec places one mesh in the scene.
type InstanceSpec struct {
	Mesh     string
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// DefaultScene returns the three cubes the engine starts with. The first
// has zero scale and so covers no pixels.
func DefaultScene() []InstanceSpec {
	return []InstanceSpec{
		{Mesh: MeshCube, Position: mgl32.Vec3{0, 0, 0}, Rotation: mgl32.Vec3{0, 0, 0}, Scale: mgl32.Vec3{0, 0, 0}},
		{Mesh: MeshCube, Position: mgl32.Vec3{3, 3, 3}, Rotation: mgl32.Vec3{0.5, 1, 2}, Scale: mgl32.Vec3{1, 2, 3}},
		{Mesh: MeshCube, Position: mgl32.Vec3{3, 0, 3}, Rotation: mgl32.Vec3{0.5, 0, 3.14}, Scale: mgl32.Vec3{1, 2, 3}},
	}
}
