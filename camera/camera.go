// Package camera implements a free-look perspective camera driven by the
// input command bits and pointer delta.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/input"
)

// Pitch limits in degrees. Looking straight up or down would make the
// right vector degenerate.
const (
	MinPitch = -89
	MaxPitch = 89
)

// Defaults used when no option overrides them.
const (
	DefaultSpeed       = 1.0
	DefaultSensitivity = 0.3
)

// epsilon is the float32 machine epsilon. Pointer deltas at or below it on
// both axes do not rotate the camera.
const epsilon = 1.1920929e-7

var worldUp = mgl32.Vec3{0, 1, 0}

// depthCorrection maps OpenGL clip depth [-1, 1] to the [0, 1] range used by
// WebGPU.
var depthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Option configures a Camera.
type Option func(*Camera)

// WithSpeed sets the movement speed in world units per second.
func WithSpeed(speed float32) Option {
	return func(c *Camera) { c.speed = speed }
}

// WithSensitivity sets the rotation in degrees per pointer unit.
func WithSensitivity(s float32) Option {
	return func(c *Camera) { c.sensitivity = s }
}

// Camera is a perspective camera with yaw and pitch in degrees.
//
// Every mutating method recomputes the derived matrices before returning, so
// ViewProjection always reflects the current state.
type Camera struct {
	position   mgl32.Vec3
	yaw, pitch float32

	fov, aspect, near, far float32
	speed, sensitivity     float32

	basis      Basis
	view       mgl32.Mat4
	projection mgl32.Mat4
	viewProj   mgl32.Mat4
}

// New returns a camera at position looking down +X (yaw and pitch zero).
// fov is the vertical field of view in radians.
func New(position mgl32.Vec3, fov, aspect, near, far float32, opts ...Option) *Camera {
	c := &Camera{
		position:    position,
		fov:         fov,
		aspect:      aspect,
		near:        near,
		far:         far,
		speed:       DefaultSpeed,
		sensitivity: DefaultSensitivity,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updateProjection()
	c.updateView()
	return c
}

// Tick advances the camera by dt seconds. Held movement bits translate the
// camera: forward and backward along the horizontal forward vector, left and
// right along the right vector, up and down along world Y. A pointer delta
// above epsilon rotates it, with the Y axis inverted.
func (c *Camera) Tick(dt float32, cmd input.Command, delta mgl32.Vec2) {
	if cmd&input.Movement != 0 {
		velocity := c.speed * dt
		if cmd&input.Forward != 0 {
			c.position = c.position.Add(c.basis.Forward.Mul(velocity))
		}
		if cmd&input.Backward != 0 {
			c.position = c.position.Sub(c.basis.Forward.Mul(velocity))
		}
		if cmd&input.Left != 0 {
			c.position = c.position.Sub(c.basis.Right.Mul(velocity))
		}
		if cmd&input.Right != 0 {
			c.position = c.position.Add(c.basis.Right.Mul(velocity))
		}
		if cmd&input.Up != 0 {
			c.position = c.position.Add(worldUp.Mul(velocity))
		}
		if cmd&input.Down != 0 {
			c.position = c.position.Sub(worldUp.Mul(velocity))
		}
	}

	if math32.Abs(delta.X()) > epsilon || math32.Abs(delta.Y()) > epsilon {
		c.yaw += delta.X() * c.sensitivity
		c.pitch = clampPitch(c.pitch - delta.Y()*c.sensitivity)
	}
	c.updateView()
}

// SetAspectRatio changes the aspect ratio. Only the projection changes.
func (c *Camera) SetAspectRatio(aspect float32) {
	c.aspect = aspect
	c.updateProjection()
	c.viewProj = c.projection.Mul4(c.view)
}

// SetPosition moves the camera.
func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.updateView()
}

// SetYaw sets the yaw in degrees.
func (c *Camera) SetYaw(deg float32) {
	c.yaw = deg
	c.updateView()
}

// SetPitch sets the pitch in degrees, clamped to [MinPitch, MaxPitch].
func (c *Camera) SetPitch(deg float32) {
	c.pitch = clampPitch(deg)
	c.updateView()
}

// Position returns the eye position in world space.
func (c *Camera) Position() mgl32.Vec3 { return c.position }

// Yaw returns the heading in degrees.
func (c *Camera) Yaw() float32 { return c.yaw }

// Pitch returns the elevation in degrees, within [MinPitch, MaxPitch].
func (c *Camera) Pitch() float32 { return c.pitch }

// FOV returns the vertical field of view in radians.
func (c *Camera) FOV() float32 { return c.fov }

// AspectRatio returns width divided by height.
func (c *Camera) AspectRatio() float32 { return c.aspect }

// Near returns the near clip distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float32 { return c.far }

// Basis returns the orientation vectors for the current yaw and pitch.
func (c *Camera) Basis() Basis { return c.basis }

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl32.Mat4 { return c.view }

// Projection returns the perspective matrix.
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 { return c.viewProj }

func (c *Camera) updateProjection() {
	c.projection = depthCorrection.Mul4(mgl32.Perspective(c.fov, c.aspect, c.near, c.far))
}

func (c *Camera) updateView() {
	c.basis = NewBasis(c.yaw, c.pitch)
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.basis.Front), c.basis.Up)
	c.viewProj = c.projection.Mul4(c.view)
}

func clampPitch(p float32) float32 {
	return mgl32.Clamp(p, MinPitch, MaxPitch)
}
