// Package testbed assembles small wasm binaries for tests.
package testbed

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/megs-sim/megs/wasm"
)

// Builder accumulates module declarations. Imports must be added before
// any local function or global so indices stay stable.
type Builder struct {
	m wasm.Module

	importedFuncs   uint32
	importedGlobals uint32
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) typeIndex(params, results []wasm.ValType) uint32 {
	for i, ft := range b.m.Types {
		if slices.Equal(ft.Params, params) && slices.Equal(ft.Results, results) {
			return uint32(i)
		}
	}
	b.m.Types = append(b.m.Types, wasm.FuncType{
		Params:  slices.Clone(params),
		Results: slices.Clone(results),
	})
	return uint32(len(b.m.Types) - 1)
}

// ImportFunc declares a function import and returns its function index.
func (b *Builder) ImportFunc(module, name string, params, results []wasm.ValType) uint32 {
	if len(b.m.Funcs) > 0 {
		panic("testbed: function import after local function")
	}
	b.m.Imports = append(b.m.Imports, wasm.Import{
		Module: module,
		Name:   name,
		Desc:   wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: b.typeIndex(params, results)},
	})
	b.importedFuncs++
	return b.importedFuncs - 1
}

// ImportGlobal declares a global import and returns its global index.
func (b *Builder) ImportGlobal(module, name string, vt wasm.ValType, mutable bool) uint32 {
	if len(b.m.Globals) > 0 {
		panic("testbed: global import after local global")
	}
	b.m.Imports = append(b.m.Imports, wasm.Import{
		Module: module,
		Name:   name,
		Desc:   wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &wasm.GlobalType{ValType: vt, Mutable: mutable}},
	})
	b.importedGlobals++
	return b.importedGlobals - 1
}

// ImportMemory declares a memory import.
func (b *Builder) ImportMemory(module, name string, minPages uint64) {
	b.m.Imports = append(b.m.Imports, wasm.Import{
		Module: module,
		Name:   name,
		Desc:   wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: wasm.Limits{Min: minPages}}},
	})
}

// Func declares a local function whose body is the concatenation of code
// followed by end, and returns its function index.
func (b *Builder) Func(params, results []wasm.ValType, code ...[]byte) uint32 {
	b.m.Funcs = append(b.m.Funcs, b.typeIndex(params, results))
	var body []byte
	for _, c := range code {
		body = append(body, c...)
	}
	body = append(body, wasm.OpEnd)
	b.m.Code = append(b.m.Code, wasm.FuncBody{Code: body})
	return b.importedFuncs + uint32(len(b.m.Funcs)-1)
}

// Global declares a local global with a constant initializer and returns
// its global index.
func (b *Builder) Global(vt wasm.ValType, mutable bool, init []byte) uint32 {
	b.m.Globals = append(b.m.Globals, wasm.Global{
		Type: wasm.GlobalType{ValType: vt, Mutable: mutable},
		Init: append(slices.Clone(init), wasm.OpEnd),
	})
	return b.importedGlobals + uint32(len(b.m.Globals)-1)
}

// Memory declares a local memory and returns its index.
func (b *Builder) Memory(minPages uint64) uint32 {
	b.m.Memories = append(b.m.Memories, wasm.MemoryType{Limits: wasm.Limits{Min: minPages}})
	return uint32(len(b.m.Memories) - 1)
}

// Table declares a local funcref table and returns its index.
func (b *Builder) Table(min uint64) uint32 {
	b.m.Tables = append(b.m.Tables, wasm.TableType{ElemType: wasm.ValFuncRef, Limits: wasm.Limits{Min: min}})
	return uint32(len(b.m.Tables) - 1)
}

// Export exports the item idx of the given kind under name.
func (b *Builder) Export(name string, kind byte, idx uint32) *Builder {
	b.m.Exports = append(b.m.Exports, wasm.Export{Name: name, Kind: kind, Idx: idx})
	return b
}

// Start sets the start function.
func (b *Builder) Start(funcIdx uint32) *Builder {
	b.m.Start = &funcIdx
	return b
}

// Bytes encodes the module.
func (b *Builder) Bytes() []byte {
	return b.m.Encode()
}

// Instruction encoders for function bodies.

// F32Const encodes f32.const v.
func F32Const(v float32) []byte {
	buf := []byte{wasm.OpF32Const, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(buf[1:], math.Float32bits(v))
	return buf
}

// I32Const encodes i32.const v.
func I32Const(v int32) []byte {
	return append([]byte{wasm.OpI32Const}, sleb(int64(v))...)
}

// V128Const encodes v128.const with all sixteen bytes set to v.
func V128Const(v byte) []byte {
	out := []byte{wasm.OpSIMDPrefix, byte(wasm.OpV128Const)}
	for range 16 {
		out = append(out, v)
	}
	return out
}

// LocalGet encodes local.get idx.
func LocalGet(idx uint32) []byte {
	return append([]byte{wasm.OpLocalGet}, uleb(idx)...)
}

// GlobalGet encodes global.get idx.
func GlobalGet(idx uint32) []byte {
	return append([]byte{wasm.OpGlobalGet}, uleb(idx)...)
}

// GlobalSet encodes global.set idx.
func GlobalSet(idx uint32) []byte {
	return append([]byte{wasm.OpGlobalSet}, uleb(idx)...)
}

// Call encodes call funcIdx.
func Call(funcIdx uint32) []byte {
	return append([]byte{wasm.OpCall}, uleb(funcIdx)...)
}

// Unreachable encodes unreachable.
func Unreachable() []byte {
	return []byte{wasm.OpUnreachable}
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		out = append(out, c)
		if done {
			return out
		}
	}
}

// F32s returns n f32 value types.
func F32s(n int) []wasm.ValType {
	out := make([]wasm.ValType, n)
	for i := range out {
		out[i] = wasm.ValF32
	}
	return out
}
