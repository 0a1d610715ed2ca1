// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// This interface is the primary integration point between the ribbon
// renderer and GPU frameworks like gogpu. The host application implements
// DeviceHandle (or passes its gpucontext provider directly) and hands it to
// the renderer, allowing the renderer to use the shared GPU device.
//
// Key principle: the renderer RECEIVES the device from the host, it does
// NOT create one. This enables:
//   - Shared GPU resources between the ribbon renderer and the host
//   - Zero device creation overhead in this library
//   - Consistent resource management across the stack
//
// Example implementation in gogpu:
//
//	type contextDeviceHandle struct {
//	    ctx *gogpu.Context
//	}
//
//	func (h *contextDeviceHandle) Device() gpucontext.Device {
//	    return h.ctx.device
//	}
//
//	func (h *contextDeviceHandle) Queue() gpucontext.Queue {
//	    return h.ctx.queue
//	}
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// local name for the interface while maintaining full compatibility with
// the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used in tests and in hosts that have not brought up a GPU yet.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
