// Package headless provides a device.Device that keeps every object in
// memory and renders nothing.
//
// It validates what the GPU would validate: shader source is compiled with
// naga, bind groups must match their pipeline's layout, and submitted
// recordings are replayed against the live objects with bounds checks on
// every draw. Tests use it as a recording fake; the demo uses it when no
// GPU is available.
//
// Importing the package registers the "headless" driver:
//
//	import _ "github.com/gogpu/g3d/device/headless"
package headless
