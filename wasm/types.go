package wasm

// Module is a parsed core WebAssembly module.
//
// Only the sections that describe a module's interface are decoded into
// structured form. Element, data and data-count sections are kept as raw
// payloads in Opaque so that Encode can reproduce them.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // type indices of declared (non-imported) functions
	Tables   []TableType
	Memories []MemoryType
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Code     []FuncBody
	Opaque   []Section

	CustomSections []CustomSection
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType is a WebAssembly value type.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	default:
		return "unknown"
	}
}

// Valid reports whether v is a value type this package understands.
func (v ValType) Valid() bool {
	return v.String() != "unknown"
}

// Import is an imported function, table, memory, global or tag.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item. Kind selects which field is set.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32 // functions and tags
	Kind    byte
}

// TableType describes a table.
type TableType struct {
	Limits   Limits
	ElemType ValType
}

// MemoryType describes a linear memory.
type MemoryType struct {
	Limits Limits
}

// Limits are the size constraints of a table or memory.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// GlobalType is a global's value type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global is a declared global with its raw constant init expression.
type Global struct {
	Type GlobalType
	Init []byte
}

// Export is an exported item. Idx is into the index space selected by Kind.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody is a function body: local declarations and raw instruction bytes
// terminated by OpEnd.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte
}

// LocalEntry declares Count locals of one type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// Section is a raw, uninterpreted section payload.
type Section struct {
	Data []byte
	ID   byte
}

// CustomSection is a named custom section.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImported returns how many imports of the given kind the module declares.
// Imported items occupy the low indices of each index space.
func (m *Module) NumImported(kind byte) uint32 {
	var n uint32
	for _, imp := range m.Imports {
		if imp.Desc.Kind == kind {
			n++
		}
	}
	return n
}

// FuncTypeAt resolves a function index (imports first, then declared
// functions) to its signature.
func (m *Module) FuncTypeAt(funcIdx uint32) (FuncType, bool) {
	var seen uint32
	for _, imp := range m.Imports {
		if imp.Desc.Kind != KindFunc {
			continue
		}
		if seen == funcIdx {
			return m.typeAt(imp.Desc.TypeIdx)
		}
		seen++
	}
	local := funcIdx - seen
	if funcIdx < seen || int(local) >= len(m.Funcs) {
		return FuncType{}, false
	}
	return m.typeAt(m.Funcs[local])
}

// GlobalTypeAt resolves a global index (imports first) to its type.
func (m *Module) GlobalTypeAt(globalIdx uint32) (GlobalType, bool) {
	var seen uint32
	for _, imp := range m.Imports {
		if imp.Desc.Kind != KindGlobal {
			continue
		}
		if seen == globalIdx {
			if imp.Desc.Global == nil {
				return GlobalType{}, false
			}
			return *imp.Desc.Global, true
		}
		seen++
	}
	local := globalIdx - seen
	if globalIdx < seen || int(local) >= len(m.Globals) {
		return GlobalType{}, false
	}
	return m.Globals[local].Type, true
}

func (m *Module) typeAt(typeIdx uint32) (FuncType, bool) {
	if int(typeIdx) >= len(m.Types) {
		return FuncType{}, false
	}
	return m.Types[typeIdx], true
}
