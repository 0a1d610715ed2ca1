// Package gpu implements the two-pass WebGPU pipeline behind the ribbon
// renderer: an offscreen rectification pass that unrolls photo content into
// rail-distance coordinates, and an animated compositing pass that projects
// the rectified strip back onto the ribbon's on-screen geometry.
package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources.

//go:embed shaders/rectify.wgsl
var rectifyShaderSource string

//go:embed shaders/composite.wgsl
var compositeShaderSource string

// compileShader compiles WGSL source to SPIR-V with naga and creates the
// shader module. Going through SPIR-V keeps shader translation uniform
// across hal backends.
func compileShader(device hal.Device, label, source string) (hal.ShaderModule, error) {
	if source == "" {
		return nil, fmt.Errorf("%s shader source is empty", label)
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}

	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", label, err)
	}
	return module, nil
}
