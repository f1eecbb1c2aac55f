// Package nv2a translates the vertex pipeline of the Xbox NV2A GPU, as
// driven by its Direct3D 8 runtime, onto a modern host rendering API.
//
// # Overview
//
// A [Translator] owns every table and cache the translation needs:
//
//   - vertex program memory and the shader cache, which decodes NV2A
//     microcode and compiles it to a host vertex shader in the background
//   - per-handle vertex declarations recompiled from legacy attribute
//     formats or FVF bitmasks
//   - the vertex stream converter, which rewrites elements the host cannot
//     read and caches the converted streams by content
//   - the render-state converter, which reads the legacy render-state block
//     from emulated memory and pushes only the states that changed
//
// The host device is reached through the narrow [host.Device] interface.
// Package host/halhost implements it on top of github.com/gogpu/wgpu/hal.
//
// # Quick Start
//
//	dev, err := halhost.FromProvider(provider)
//	if err != nil {
//	    return err
//	}
//	t, err := nv2a.New(nv2a.WithDevice(dev), nv2a.WithSymbols(syms), nv2a.WithMemory(mem))
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//
//	// Per draw:
//	t.SetVertexShader(handle)
//	t.SetStreamSource(0, vertices, stride)
//	ctx := &nv2a.DrawContext{PrimitiveType: nv2a.TriangleList, VertexCount: n}
//	if err := t.PrepareDraw(ctx); err != nil {
//	    return err
//	}
//	t.ApplyRenderStates()
//	// Submit ctx.HostPrimitiveType / ctx.HostPrimitiveCount to the host.
//
// # Constant Registers
//
// Generated shaders read 218 vec4 registers. Registers 0-191 hold the
// legacy constants c[-96]..c[95]; the rest carry per-input defaults, input
// presence and color swizzle flags, and the viewport transform.
//
// # Thread Safety
//
// A Translator is driven from a single draw thread. Shader compiles run on
// background goroutines; Stats, SetLogger and Logger may be called from any
// goroutine.
//
// # Logging
//
// nv2a is silent by default. Call [SetLogger] to receive diagnostics from the
// translator and all of its sub-packages.
package nv2a
