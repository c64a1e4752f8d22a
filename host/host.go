package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/megs-sim/megs/contract"
	"github.com/megs-sim/megs/engine"
)

// Namespace is the import namespace of every host capability.
const Namespace = "env"

// Host function names.
const (
	DrawRectangle   = "draw_rectangle"
	DrawCircle      = "draw_circle"
	DrawCircleLines = "draw_circle_lines"
	DrawLine        = "draw_line"
)

// Entry points a logic module exports.
const (
	ExportWidth        = "width"
	ExportHeight       = "height"
	ExportDraw         = "draw"
	ExportCursorCoords = "cursor_coords"
)

// Color is an RGB color with channels in [0, 1].
type Color struct {
	R, G, B float32
}

// Canvas receives the drawing calls guests make.
type Canvas interface {
	Rectangle(x, y, w, h float32, c Color)
	Circle(x, y, radius float32, c Color)
	CircleLines(x, y, radius, thickness float32, c Color)
	Line(x1, y1, x2, y2, thickness float32, c Color)
}

// Functions returns the host functions that forward guest drawing calls to
// canvas.
func Functions(canvas Canvas) []engine.HostFunc {
	return []engine.HostFunc{
		hostFunc(DrawRectangle, 7, func(a []float32) {
			canvas.Rectangle(a[0], a[1], a[2], a[3], color(a[4:]))
		}),
		hostFunc(DrawCircle, 6, func(a []float32) {
			canvas.Circle(a[0], a[1], a[2], color(a[3:]))
		}),
		hostFunc(DrawCircleLines, 7, func(a []float32) {
			canvas.CircleLines(a[0], a[1], a[2], a[3], color(a[4:]))
		}),
		hostFunc(DrawLine, 8, func(a []float32) {
			canvas.Line(a[0], a[1], a[2], a[3], a[4], color(a[5:]))
		}),
	}
}

// Contract returns the default logic module contract: width() -> f32,
// height() -> f32 and draw(x, y, rotation) are required, and any of allowed
// may be imported.
func Contract(allowed []contract.Signature) *contract.Contract {
	return contract.New(RequiredExports(), allowed)
}

// RequiredExports returns the exports every logic module must provide.
func RequiredExports() []contract.Signature {
	f32 := []contract.ValueType{contract.F32}
	return []contract.Signature{
		contract.Func(ExportWidth, nil, f32),
		contract.Func(ExportHeight, nil, f32),
		contract.Func(ExportDraw, []contract.ValueType{contract.F32, contract.F32, contract.F32}, nil),
	}
}

func hostFunc(name string, arity int, fn func([]float32)) engine.HostFunc {
	params := make([]api.ValueType, arity)
	for i := range params {
		params[i] = api.ValueTypeF32
	}
	return engine.HostFunc{
		Namespace: Namespace,
		Name:      name,
		ParamVT:   params,
		Raw: func(_ context.Context, _ api.Module, stack []uint64) {
			args := make([]float32, arity)
			for i := range args {
				args[i] = api.DecodeF32(stack[i])
			}
			fn(args)
		},
	}
}

func color(a []float32) Color {
	return Color{R: a[0], G: a[1], B: a[2]}
}
