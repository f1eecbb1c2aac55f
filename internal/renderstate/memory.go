package renderstate

// Symbol names resolved at Init.
const (
	// SymbolDeferredRenderState is the address of the first deferred state.
	SymbolDeferredRenderState = "D3DDeferredRenderState"
	// SymbolCullMode is the address of the CULLMODE state, used to verify
	// the deferred address.
	SymbolCullMode = "D3DRS_CULLMODE"
)

// Symbols resolves runtime symbols to guest addresses.
type Symbols interface {
	Lookup(name string) (addr uint32, ok bool)
}

// Memory reads and writes 32-bit words of guest memory.
type Memory interface {
	ReadUint32(addr uint32) uint32
	WriteUint32(addr, v uint32)
}

// SymbolTable is a map backed Symbols.
type SymbolTable map[string]uint32

// Lookup implements Symbols. Zero addresses count as unresolved.
func (t SymbolTable) Lookup(name string) (uint32, bool) {
	addr, ok := t[name]
	return addr, ok && addr != 0
}

// Block is a word-addressed Memory starting at Base. Reads outside the
// block return 0 and writes outside it are dropped.
type Block struct {
	Base  uint32
	Words []uint32
}

// NewBlock returns a zeroed block of n words at base.
func NewBlock(base uint32, n int) *Block {
	return &Block{Base: base, Words: make([]uint32, n)}
}

func (b *Block) index(addr uint32) (int, bool) {
	if addr < b.Base || (addr-b.Base)%4 != 0 {
		return 0, false
	}
	i := int((addr - b.Base) / 4)
	return i, i < len(b.Words)
}

func (b *Block) ReadUint32(addr uint32) uint32 {
	if i, ok := b.index(addr); ok {
		return b.Words[i]
	}
	return 0
}

func (b *Block) WriteUint32(addr, v uint32) {
	if i, ok := b.index(addr); ok {
		b.Words[i] = v
	}
}
