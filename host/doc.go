// Package host defines the narrow surface of the host rendering API that the
// nv2a translator drives.
//
// The translator never submits draws itself. It creates and fills vertex
// buffers, declarations and shader objects, binds them, and pushes render
// state. Everything else (pipelines, passes, presentation) belongs to the
// caller that owns the host device.
//
// Enumerated render-state values use the gputypes vocabulary wherever WebGPU
// has an equivalent (compare functions, blend factors and operations, stencil
// operations, cull mode, color write mask). States without a WebGPU
// counterpart use the small enums declared here.
//
// The package ships no implementation. See host/halhost for one backed by
// github.com/gogpu/wgpu/hal.
package host
