// Package device defines the graphics device collaborator of the rendering
// core.
//
// The core never talks to a native graphics API directly. It creates
// buffers, textures, pipelines and bind groups through [Device], gets
// opaque gpucore IDs back, records each frame into a
// [recording.Recording] and hands it to [Device.Submit].
//
// # Drivers
//
// Implementations register themselves by name, following the database/sql
// driver pattern:
//
//	import _ "github.com/gogpu/g3d/device/wgpudevice" // registers "wgpu"
//	import _ "github.com/gogpu/g3d/device/headless"   // registers "headless"
//
//	dev, err := device.Open("wgpu", device.Config{Width: 1280, Height: 720})
//
// Open with an empty name picks the highest-priority registered driver
// (wgpu before headless).
//
// # Errors
//
// Frame acquisition distinguishes recoverable surface conditions
// ([ErrSurfaceOutdated], [ErrSurfaceLost]) from fatal device errors
// ([ErrDeviceLost], [ErrOutOfMemory], shader failures). Use [IsRecoverable]
// to classify an error returned by AcquireFrame, Submit or Present.
package device
