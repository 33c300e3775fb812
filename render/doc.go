// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render records and submits one frame of a scene.
//
// A Pass reads the camera, the scene and the resource cache, and never
// mutates any of them. Each frame it:
//
//  1. writes the view-projection matrix into every live pipeline's uniform
//     buffer, and uploads instance model matrices when the scene changed;
//  2. acquires a frame target from the device;
//  3. records one draw per instance, in scene order, skipping instances
//     whose mesh or pipeline is missing;
//  4. submits the recording once and presents the frame.
//
// Surface conditions reported by AcquireFrame are returned wrapped, so the
// caller can test them with device.IsRecoverable.
package render
