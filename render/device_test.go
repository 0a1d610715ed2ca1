// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var h DeviceHandle = NullDeviceHandle{}

	if h.Device() != nil {
		t.Error("Device() must return nil")
	}
	if h.Queue() != nil {
		t.Error("Queue() must return nil")
	}
	if h.Adapter() != nil {
		t.Error("Adapter() must return nil")
	}
	if got := h.SurfaceFormat(); got != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v, want undefined", got)
	}
}
