// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpudevice implements device.Device on github.com/gogpu/wgpu.
//
// A device renders to a window surface when device.Config.Window is set,
// and to an offscreen texture otherwise. A host that already owns a wgpu
// device (for example a gogpu application) passes it through
// device.Config.Provider; the adopted device is drawn on but never
// released.
//
// Importing the package registers the "wgpu" driver. A HAL backend must be
// registered too:
//
//	import (
//	    _ "github.com/gogpu/g3d/device/wgpudevice"
//	    _ "github.com/gogpu/wgpu/hal/allbackends"
//	)
package wgpudevice
