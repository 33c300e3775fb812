// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpudevice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/wgpu"
	"github.com/stretchr/testify/assert"

	"github.com/gogpu/g3d/device"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		want        error
		recoverable bool
	}{
		{"outdated", wgpu.ErrSurfaceOutdated, device.ErrSurfaceOutdated, true},
		{"lost surface", fmt.Errorf("acquire: %w", wgpu.ErrSurfaceLost), device.ErrSurfaceLost, true},
		{"device lost", wgpu.ErrDeviceLost, device.ErrDeviceLost, false},
		{"oom", wgpu.ErrOutOfMemory, device.ErrOutOfMemory, false},
		{"released", wgpu.ErrReleased, device.ErrClosed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate("acquire frame", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.recoverable, device.IsRecoverable(got))
			assert.Contains(t, got.Error(), "acquire frame")
		})
	}
}

func TestTranslateOther(t *testing.T) {
	assert.NoError(t, translate("submit", nil))

	cause := errors.New("validation failed")
	got := translate("submit", cause)
	assert.ErrorIs(t, got, cause)
	assert.False(t, device.IsRecoverable(got))
	assert.EqualError(t, got, "wgpudevice: submit: validation failed")
}
