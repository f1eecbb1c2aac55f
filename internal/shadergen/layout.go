package shadergen

// Host vertex shader constant register layout. Every generated shader reads
// one uniform array of RegisterCount vec4 registers.
const (
	// RegisterLegacy holds the 192 legacy constants. Legacy c[-96] is at 0.
	RegisterLegacy = 0

	// RegisterDefaults holds one default value per input register, used
	// when the input is absent from the bound declaration.
	RegisterDefaults = 192

	// RegisterAbsent holds 16 flags packed four per vec4. A flag of 1.0
	// selects the default value of its input.
	RegisterAbsent = 208

	// RegisterSwizzle holds 16 flags packed four per vec4. A flag of 1.0
	// marks an input fetched from a D3DCOLOR element, stored as BGRA.
	RegisterSwizzle = 212

	// RegisterViewportScale and RegisterViewportOffset undo the screen
	// space transform the legacy program applies to oPos.
	RegisterViewportScale  = 216
	RegisterViewportOffset = 217

	RegisterCount = 218
)

// FlagRegister returns the register and component that hold the flag of
// input in the flag block starting at block.
func FlagRegister(block, input int) (register, component int) {
	return block + input/4, input % 4
}
