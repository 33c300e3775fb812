package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Basis is the camera's orthonormal frame.
type Basis struct {
	// Front is the view direction.
	Front mgl32.Vec3
	// Right is Front x worldUp.
	Right mgl32.Vec3
	// Up is Right x Front.
	Up mgl32.Vec3
	// Forward is the view direction projected onto the ground plane.
	Forward mgl32.Vec3
}

// NewBasis computes the frame for yaw and pitch in degrees.
func NewBasis(yaw, pitch float32) Basis {
	sy, cy := math32.Sincos(mgl32.DegToRad(yaw))
	sp, cp := math32.Sincos(mgl32.DegToRad(pitch))

	front := mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
	right := front.Cross(worldUp).Normalize()
	return Basis{
		Front:   front,
		Right:   right,
		Up:      right.Cross(front).Normalize(),
		Forward: worldUp.Cross(right).Normalize(),
	}
}
