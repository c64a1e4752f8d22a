package wasm

import (
	"github.com/megs-sim/megs/wasm/internal/binary"
)

// Encode serializes the module to the WebAssembly binary format. Sections
// are written in canonical order; custom sections are appended last.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	opaque := make(map[byte][]byte, len(m.Opaque))
	for _, s := range m.Opaque {
		opaque[s.ID] = s.Data
	}
	writeOpaque := func(id byte) {
		if data, ok := opaque[id]; ok {
			writeSection(w, id, data)
		}
	}

	if len(m.Types) > 0 {
		writeSection(w, SectionType, m.encodeTypes())
	}
	if len(m.Imports) > 0 {
		writeSection(w, SectionImport, m.encodeImports())
	}
	if len(m.Funcs) > 0 {
		s := binary.NewWriter()
		s.WriteU32(uint32(len(m.Funcs)))
		for _, idx := range m.Funcs {
			s.WriteU32(idx)
		}
		writeSection(w, SectionFunction, s.Bytes())
	}
	if len(m.Tables) > 0 {
		s := binary.NewWriter()
		s.WriteU32(uint32(len(m.Tables)))
		for _, t := range m.Tables {
			writeTableType(s, t)
		}
		writeSection(w, SectionTable, s.Bytes())
	}
	if len(m.Memories) > 0 {
		s := binary.NewWriter()
		s.WriteU32(uint32(len(m.Memories)))
		for _, mem := range m.Memories {
			writeLimits(s, mem.Limits)
		}
		writeSection(w, SectionMemory, s.Bytes())
	}
	writeOpaque(SectionTag)
	if len(m.Globals) > 0 {
		s := binary.NewWriter()
		s.WriteU32(uint32(len(m.Globals)))
		for _, g := range m.Globals {
			writeGlobalType(s, g.Type)
			s.WriteBytes(g.Init)
		}
		writeSection(w, SectionGlobal, s.Bytes())
	}
	if len(m.Exports) > 0 {
		s := binary.NewWriter()
		s.WriteU32(uint32(len(m.Exports)))
		for _, e := range m.Exports {
			s.WriteName(e.Name)
			s.Byte(e.Kind)
			s.WriteU32(e.Idx)
		}
		writeSection(w, SectionExport, s.Bytes())
	}
	if m.Start != nil {
		s := binary.NewWriter()
		s.WriteU32(*m.Start)
		writeSection(w, SectionStart, s.Bytes())
	}
	writeOpaque(SectionElement)
	writeOpaque(SectionDataCount)
	if len(m.Code) > 0 {
		writeSection(w, SectionCode, m.encodeCode())
	}
	writeOpaque(SectionData)

	for _, cs := range m.CustomSections {
		s := binary.NewWriter()
		s.WriteName(cs.Name)
		s.WriteBytes(cs.Data)
		writeSection(w, SectionCustom, s.Bytes())
	}

	return w.Bytes()
}

func (m *Module) encodeTypes() []byte {
	s := binary.NewWriter()
	s.WriteU32(uint32(len(m.Types)))
	for _, ft := range m.Types {
		s.Byte(FuncTypeByte)
		writeValTypes(s, ft.Params)
		writeValTypes(s, ft.Results)
	}
	return s.Bytes()
}

func (m *Module) encodeImports() []byte {
	s := binary.NewWriter()
	s.WriteU32(uint32(len(m.Imports)))
	for _, imp := range m.Imports {
		s.WriteName(imp.Module)
		s.WriteName(imp.Name)
		s.Byte(imp.Desc.Kind)
		switch imp.Desc.Kind {
		case KindFunc:
			s.WriteU32(imp.Desc.TypeIdx)
		case KindTable:
			writeTableType(s, derefOr(imp.Desc.Table))
		case KindMemory:
			writeLimits(s, derefOr(imp.Desc.Memory).Limits)
		case KindGlobal:
			writeGlobalType(s, derefOr(imp.Desc.Global))
		case KindTag:
			s.Byte(0)
			s.WriteU32(imp.Desc.TypeIdx)
		}
	}
	return s.Bytes()
}

func (m *Module) encodeCode() []byte {
	s := binary.NewWriter()
	s.WriteU32(uint32(len(m.Code)))
	for _, body := range m.Code {
		b := binary.NewWriter()
		b.WriteU32(uint32(len(body.Locals)))
		for _, l := range body.Locals {
			b.WriteU32(l.Count)
			b.Byte(byte(l.ValType))
		}
		b.WriteBytes(body.Code)
		s.WriteU32(uint32(b.Len()))
		s.WriteBytes(b.Bytes())
	}
	return s.Bytes()
}

func writeSection(w *binary.Writer, id byte, payload []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(payload)))
	w.WriteBytes(payload)
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, vt := range types {
		w.Byte(byte(vt))
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)
	w.WriteU64(l.Min)
	if l.Max != nil {
		w.WriteU64(*l.Max)
	}
}

func writeTableType(w *binary.Writer, t TableType) {
	elem := t.ElemType
	if elem == 0 {
		elem = ValFuncRef
	}
	w.Byte(byte(elem))
	writeLimits(w, t.Limits)
}

func writeGlobalType(w *binary.Writer, g GlobalType) {
	w.Byte(byte(g.ValType))
	if g.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func derefOr[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
