package testbed

import (
	"github.com/megs-sim/megs/wasm"
)

// Gate describes a logic module that satisfies the default host contract.
// draw(x, y, rotation) paints one Width x Height rectangle at (x, y) through
// env::draw_rectangle.
type Gate struct {
	Width  float32
	Height float32
	Color  [3]float32

	// CursorCoords adds cursor_coords(x, y), which paints a radius-2 circle
	// at the cursor through env::draw_circle.
	CursorCoords bool

	// DrawRotation passes the rotation argument as the rectangle's red
	// channel instead of Color[0].
	DrawRotation bool

	// TrapOnDraw makes draw execute unreachable.
	TrapOnDraw bool

	// TrapOnStart adds a start function that executes unreachable.
	TrapOnStart bool

	// Omit drops the named required export.
	Omit string

	// ExtraImport adds env::<name>() with no params, which no host defines.
	ExtraImport string
}

// Bytes encodes the gate module.
func (g Gate) Bytes() []byte {
	return g.Builder().Bytes()
}

// Builder returns the gate as a Builder for further changes.
func (g Gate) Builder() *Builder {
	b := New()

	rect := b.ImportFunc("env", "draw_rectangle", F32s(7), nil)
	var circle uint32
	if g.CursorCoords {
		circle = b.ImportFunc("env", "draw_circle", F32s(6), nil)
	}
	if g.ExtraImport != "" {
		b.ImportFunc("env", g.ExtraImport, nil, nil)
	}

	result := []wasm.ValType{wasm.ValF32}
	width := b.Func(nil, result, F32Const(g.Width))
	height := b.Func(nil, result, F32Const(g.Height))

	var draw uint32
	if g.TrapOnDraw {
		draw = b.Func(F32s(3), nil, Unreachable())
	} else {
		red := F32Const(g.Color[0])
		if g.DrawRotation {
			red = LocalGet(2)
		}
		draw = b.Func(F32s(3), nil,
			LocalGet(0),
			LocalGet(1),
			F32Const(g.Width),
			F32Const(g.Height),
			red,
			F32Const(g.Color[1]),
			F32Const(g.Color[2]),
			Call(rect),
		)
	}

	if g.Omit != "width" {
		b.Export("width", wasm.KindFunc, width)
	}
	if g.Omit != "height" {
		b.Export("height", wasm.KindFunc, height)
	}
	if g.Omit != "draw" {
		b.Export("draw", wasm.KindFunc, draw)
	}

	if g.CursorCoords {
		cursor := b.Func(F32s(2), nil,
			LocalGet(0),
			LocalGet(1),
			F32Const(2),
			F32Const(g.Color[0]),
			F32Const(g.Color[1]),
			F32Const(g.Color[2]),
			Call(circle),
		)
		b.Export("cursor_coords", wasm.KindFunc, cursor)
	}

	if g.TrapOnStart {
		b.Start(b.Func(nil, nil, Unreachable()))
	}

	return b
}
