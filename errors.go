package nv2a

import "errors"

var (
	// ErrNoDevice is returned by PrepareDraw when no host device is bound.
	ErrNoDevice = errors.New("nv2a: no host device")

	// ErrNoVertexShader is returned by PrepareDraw before any vertex shader
	// or FVF was selected.
	ErrNoVertexShader = errors.New("nv2a: no vertex shader selected")

	// ErrUnknownHandle is returned for vertex shader handles that were never
	// created or were already deleted.
	ErrUnknownHandle = errors.New("nv2a: unknown vertex shader handle")

	// ErrDeclaration wraps host failures creating or binding a vertex
	// declaration.
	ErrDeclaration = errors.New("nv2a: vertex declaration")
)
