package wasm

import (
	"bytes"
	"errors"
	"testing"
)

func sampleModule() *Module {
	maxPages := uint64(4)
	start := uint32(1)
	return &Module{
		Types: []FuncType{
			{Params: []ValType{ValF32, ValF32}},
			{Results: []ValType{ValF32}},
			{},
		},
		Imports: []Import{
			{Module: "env", Name: "draw", Desc: ImportDesc{Kind: KindFunc, TypeIdx: 0}},
			{Module: "env", Name: "scale", Desc: ImportDesc{Kind: KindGlobal, Global: &GlobalType{ValType: ValF32}}},
		},
		Funcs:    []uint32{1, 2},
		Tables:   []TableType{{ElemType: ValFuncRef, Limits: Limits{Min: 1}}},
		Memories: []MemoryType{{Limits: Limits{Min: 1, Max: &maxPages}}},
		Globals: []Global{
			{Type: GlobalType{ValType: ValI32, Mutable: true}, Init: []byte{OpI32Const, 0x0B, OpEnd}},
		},
		Exports: []Export{
			{Name: "width", Kind: KindFunc, Idx: 1},
			{Name: "counter", Kind: KindGlobal, Idx: 1},
			{Name: "memory", Kind: KindMemory, Idx: 0},
		},
		Start: &start,
		Code: []FuncBody{
			{Code: []byte{OpF32Const, 0x00, 0x00, 0x80, 0x3f, OpEnd}},
			{Locals: []LocalEntry{{Count: 2, ValType: ValI32}}, Code: []byte{OpNop, OpEnd}},
		},
		Opaque: []Section{
			{ID: SectionData, Data: []byte{0x00}},
		},
		CustomSections: []CustomSection{{Name: "name", Data: []byte{0x01, 0x02}}},
	}
}

func TestParseModuleRoundTrip(t *testing.T) {
	data := sampleModule().Encode()

	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	if len(m.Types) != 3 || len(m.Types[0].Params) != 2 || m.Types[1].Results[0] != ValF32 {
		t.Errorf("types = %+v", m.Types)
	}
	if len(m.Imports) != 2 || m.Imports[1].Desc.Global == nil || m.Imports[1].Desc.Global.ValType != ValF32 {
		t.Errorf("imports = %+v", m.Imports)
	}
	if len(m.Memories) != 1 || m.Memories[0].Limits.Max == nil || *m.Memories[0].Limits.Max != 4 {
		t.Errorf("memories = %+v", m.Memories)
	}
	if !bytes.Equal(m.Globals[0].Init, []byte{OpI32Const, 0x0B, OpEnd}) {
		t.Errorf("global init = %x", m.Globals[0].Init)
	}
	if m.Start == nil || *m.Start != 1 {
		t.Errorf("start = %v", m.Start)
	}
	if m.Code[1].Locals[0].Count != 2 {
		t.Errorf("locals = %+v", m.Code[1].Locals)
	}
	if len(m.Opaque) != 1 || m.Opaque[0].ID != SectionData {
		t.Errorf("opaque = %+v", m.Opaque)
	}
	if len(m.CustomSections) != 1 || m.CustomSections[0].Name != "name" {
		t.Errorf("custom = %+v", m.CustomSections)
	}

	if again := m.Encode(); !bytes.Equal(again, data) {
		t.Errorf("re-encoded module differs:\n got %x\nwant %x", again, data)
	}
}

func TestParseModuleHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x6e, 0x01, 0x00, 0x00, 0x00}, ErrInvalidMagic},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModule(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseModule([]byte{0x00, 0x61}); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestParseModuleEmpty(t *testing.T) {
	m, err := ParseModule((&Module{}).Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Exports) != 0 || len(m.Imports) != 0 {
		t.Errorf("unexpected contents: %+v", m)
	}
}

func TestParseModuleRejects(t *testing.T) {
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	tests := []struct {
		name     string
		sections []byte
	}{
		{"out of order", []byte{
			SectionExport, 0x01, 0x00,
			SectionType, 0x01, 0x00,
		}},
		{"duplicate section", []byte{
			SectionType, 0x01, 0x00,
			SectionType, 0x01, 0x00,
		}},
		{"unknown section", []byte{0x20, 0x00}},
		{"truncated section", []byte{SectionType, 0x05, 0x01}},
		{"trailing bytes", []byte{SectionType, 0x02, 0x00, 0x00}},
		{"unsupported type form", []byte{SectionType, 0x02, 0x01, 0x5f}},
		{"bad value type", []byte{SectionType, 0x04, 0x01, FuncTypeByte, 0x01, 0x40}},
		{"function without code", []byte{
			SectionType, 0x04, 0x01, FuncTypeByte, 0x00, 0x00,
			SectionFunction, 0x02, 0x01, 0x00,
		}},
		{"bad export kind", []byte{SectionExport, 0x05, 0x01, 0x01, 'x', 0x09, 0x00}},
		{"import count exceeds section", []byte{SectionImport, 0x05, 0xff, 0xff, 0xff, 0xff, 0x0f}},
		{"function count exceeds section", []byte{SectionFunction, 0x03, 0x80, 0x80, 0x04}},
		{"simd opcode other than v128.const", []byte{
			SectionGlobal, 0x06, 0x01, byte(ValV128), 0x00, OpSIMDPrefix, 0x0d, OpEnd,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(append([]byte{}, header...), tt.sections...)
			if _, err := ParseModule(data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadConstExprRejectsNonConstant(t *testing.T) {
	m := &Module{
		Globals: []Global{{Type: GlobalType{ValType: ValI32}, Init: []byte{OpLocalGet, 0x00, OpEnd}}},
	}
	if _, err := ParseModule(m.Encode()); err == nil {
		t.Error("expected error for local.get in constant expression")
	}
}

func TestReadConstExprV128(t *testing.T) {
	expr := append([]byte{OpSIMDPrefix, byte(OpV128Const)}, make([]byte, 16)...)
	expr[5] = OpEnd // an immediate byte equal to end must not terminate the expression
	expr = append(expr, OpEnd)
	m := &Module{
		Globals: []Global{{Type: GlobalType{ValType: ValV128}, Init: expr}},
		Exports: []Export{{Name: "vec", Kind: KindGlobal, Idx: 0}},
	}
	data := m.Encode()

	parsed, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Globals) != 1 || !bytes.Equal(parsed.Globals[0].Init, expr) {
		t.Errorf("globals = %+v", parsed.Globals)
	}
	if !bytes.Equal(parsed.Encode(), data) {
		t.Error("re-encoded bytes differ")
	}
}

func TestFuncTypeAt(t *testing.T) {
	m := sampleModule()

	ft, ok := m.FuncTypeAt(0)
	if !ok || len(ft.Params) != 2 {
		t.Errorf("FuncTypeAt(0) = %+v, %v", ft, ok)
	}
	ft, ok = m.FuncTypeAt(1)
	if !ok || len(ft.Results) != 1 || ft.Results[0] != ValF32 {
		t.Errorf("FuncTypeAt(1) = %+v, %v", ft, ok)
	}
	if _, ok := m.FuncTypeAt(3); ok {
		t.Error("FuncTypeAt(3) should be out of range")
	}
}

func TestGlobalTypeAt(t *testing.T) {
	m := sampleModule()

	gt, ok := m.GlobalTypeAt(0)
	if !ok || gt.ValType != ValF32 || gt.Mutable {
		t.Errorf("GlobalTypeAt(0) = %+v, %v", gt, ok)
	}
	gt, ok = m.GlobalTypeAt(1)
	if !ok || gt.ValType != ValI32 || !gt.Mutable {
		t.Errorf("GlobalTypeAt(1) = %+v, %v", gt, ok)
	}
	if _, ok := m.GlobalTypeAt(2); ok {
		t.Error("GlobalTypeAt(2) should be out of range")
	}
}

func TestNumImported(t *testing.T) {
	m := sampleModule()
	if n := m.NumImported(KindFunc); n != 1 {
		t.Errorf("NumImported(func) = %d", n)
	}
	if n := m.NumImported(KindMemory); n != 0 {
		t.Errorf("NumImported(memory) = %d", n)
	}
}

func TestValTypeString(t *testing.T) {
	if ValF32.String() != "f32" || ValExtern.String() != "externref" {
		t.Error("unexpected value type names")
	}
	if ValType(0x40).Valid() {
		t.Error("0x40 should not be a valid value type")
	}
}
