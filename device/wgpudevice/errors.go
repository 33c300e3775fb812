// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpudevice

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/g3d/device"
)

// translate maps wgpu errors onto the device sentinels. The result wraps
// both, so callers may test either.
func translate(op string, err error) error {
	var sentinel error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wgpu.ErrSurfaceOutdated):
		sentinel = device.ErrSurfaceOutdated
	case errors.Is(err, wgpu.ErrSurfaceLost):
		sentinel = device.ErrSurfaceLost
	case errors.Is(err, wgpu.ErrDeviceLost):
		sentinel = device.ErrDeviceLost
	case errors.Is(err, wgpu.ErrOutOfMemory):
		sentinel = device.ErrOutOfMemory
	case errors.Is(err, wgpu.ErrReleased):
		sentinel = device.ErrClosed
	default:
		return fmt.Errorf("wgpudevice: %s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, op, err)
}
