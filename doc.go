// Package g3d provides a minimal real-time 3D rendering core for Go.
//
// # Overview
//
// g3d owns a set of GPU-resident resources (pipelines, meshes), composes
// them into a scene and drives a per-frame update/render cycle from camera
// state and user input. It is built on the GoGPU ecosystem: gogpu/wgpu for
// the graphics device, gogpu/naga for shader validation and gogpu/gpucontext
// for window events.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/g3d/device"
//	    _ "github.com/gogpu/g3d/device/headless"
//	    "github.com/gogpu/g3d/engine"
//	)
//
//	dev, err := device.Open("headless", device.Config{Width: 800, Height: 600})
//	if err != nil {
//	    return err
//	}
//	e, err := engine.New(dev, engine.WithSize(800, 600))
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	for {
//	    e.Tick(dt)
//	    if err := e.Render(); err != nil {
//	        return err
//	    }
//	}
//
// # Architecture
//
// Components, leaves first:
//   - camera: free-look camera integrator, view/projection matrices
//   - input: command bitmask and pointer delta accumulated from raw events
//   - resource: cache of pipelines (one per technique) and meshes (one per key)
//   - scene: ordered drawable instances referencing cached meshes
//   - render: one frame of draw commands from camera, scene and cache
//   - engine: frame driver (resize, tick, render)
//
// The graphics device is an interface (package device) with a wgpu
// implementation (device/wgpudevice) and a headless recording
// implementation (device/headless).
//
// # Coordinate System
//
// Right-handed, Y up. Camera yaw and pitch are in degrees; instance
// rotations are in radians. Clip-space depth is [0, 1].
//
// # Logging
//
// g3d is silent by default. See [SetLogger].
package g3d

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
