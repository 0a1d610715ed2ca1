// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the host-integration surface of the ribbon
// renderer: the device handoff interface through which a host application
// (such as a gogpu app) shares its GPU device, and the target surface type
// that wraps the texture view a frame is composited onto.
//
// The ribbon renderer never creates a GPU device of its own; it always
// receives one from the host. This keeps GPU resources shared across the
// stack and leaves swapchain and presentation concerns entirely with the
// host.
package render
