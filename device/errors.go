package device

import "errors"

// Surface conditions that are resolved by reconfiguring and retrying.
var (
	// ErrSurfaceOutdated is returned when the surface no longer matches
	// the window (typically after a resize).
	ErrSurfaceOutdated = errors.New("device: surface outdated")

	// ErrSurfaceLost is returned when the surface must be recreated.
	ErrSurfaceLost = errors.New("device: surface lost")
)

// Fatal device errors.
var (
	// ErrDeviceLost is returned when the GPU device was lost.
	ErrDeviceLost = errors.New("device: device lost")

	// ErrOutOfMemory is returned when a GPU allocation fails.
	ErrOutOfMemory = errors.New("device: out of memory")
)

// Usage errors.
var (
	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("device: closed")

	// ErrUnknownResource is returned when an ID does not name a live object.
	ErrUnknownResource = errors.New("device: unknown resource")

	// ErrInvalidDescriptor is returned for malformed descriptors.
	ErrInvalidDescriptor = errors.New("device: invalid descriptor")

	// ErrStaleFrame is returned when Submit or Present is called with a
	// frame that is not the most recently acquired one.
	ErrStaleFrame = errors.New("device: stale frame")

	// ErrUnknownDriver is returned by Open for an unregistered driver name.
	ErrUnknownDriver = errors.New("device: unknown driver")
)

// IsRecoverable reports whether err is a surface condition that is fixed
// by reconfiguring the surface and acquiring again on the next frame.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceOutdated) || errors.Is(err, ErrSurfaceLost)
}
