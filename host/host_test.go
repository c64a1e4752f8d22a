package host

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/megs-sim/megs/engine"
	"github.com/megs-sim/megs/internal/testbed"
	"github.com/megs-sim/megs/wasm"
)

func setup(t *testing.T) (*engine.WazeroEngine, *engine.ImportTable, *Recorder) {
	t.Helper()
	ctx := context.Background()
	eng, err := engine.NewWazeroEngine(ctx)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close(ctx) })

	rec := NewRecorder()
	table, err := eng.Define(ctx, Functions(rec))
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	return eng, table, rec
}

func TestFunctionsSignatures(t *testing.T) {
	_, table, _ := setup(t)

	want := []string{
		"env::draw_rectangle(param F32 F32 F32 F32 F32 F32 F32)(result) [function]",
		"env::draw_circle(param F32 F32 F32 F32 F32 F32)(result) [function]",
		"env::draw_circle_lines(param F32 F32 F32 F32 F32 F32 F32)(result) [function]",
		"env::draw_line(param F32 F32 F32 F32 F32 F32 F32 F32)(result) [function]",
	}
	sigs := table.Signatures()
	if len(sigs) != len(want) {
		t.Fatalf("got %d signatures, want %d", len(sigs), len(want))
	}
	for i := range want {
		if sigs[i].String() != want[i] {
			t.Errorf("signature %d = %s, want %s", i, sigs[i], want[i])
		}
	}
}

func TestContractAcceptsGate(t *testing.T) {
	ctx := context.Background()
	eng, table, _ := setup(t)

	m, err := eng.Compile(ctx, testbed.Gate{Width: 10, Height: 10, CursorCoords: true}.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if err := Contract(table.Signatures()).Check(m); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestContractRejectsMissingWidth(t *testing.T) {
	ctx := context.Background()
	eng, table, _ := setup(t)

	m, err := eng.Compile(ctx, testbed.Gate{Omit: ExportWidth}.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	err = Contract(table.Signatures()).Check(m)
	want := "missing export `width(param)(result F32) [function]`"
	if err == nil || err.Error() != want {
		t.Errorf("Check = %v, want %q", err, want)
	}
}

func TestDrawForwarding(t *testing.T) {
	ctx := context.Background()
	eng, _, rec := setup(t)

	b := testbed.New()
	rect := b.ImportFunc(Namespace, DrawRectangle, testbed.F32s(7), nil)
	circle := b.ImportFunc(Namespace, DrawCircle, testbed.F32s(6), nil)
	ring := b.ImportFunc(Namespace, DrawCircleLines, testbed.F32s(7), nil)
	line := b.ImportFunc(Namespace, DrawLine, testbed.F32s(8), nil)

	consts := func(vs ...float32) [][]byte {
		out := make([][]byte, 0, len(vs)+1)
		for _, v := range vs {
			out = append(out, testbed.F32Const(v))
		}
		return out
	}
	var body [][]byte
	body = append(body, consts(1, 2, 3, 4, 0.1, 0.2, 0.3)...)
	body = append(body, testbed.Call(rect))
	body = append(body, consts(5, 6, 7, 1, 0, 0)...)
	body = append(body, testbed.Call(circle))
	body = append(body, consts(8, 9, 10, 2, 0, 1, 0)...)
	body = append(body, testbed.Call(ring))
	body = append(body, consts(0, 0, 20, 20, 3, 0, 0, 1)...)
	body = append(body, testbed.Call(line))
	b.Export("paint", wasm.KindFunc, b.Func(nil, nil, body...))

	m, err := eng.Compile(ctx, b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	inst, err := eng.Instantiate(ctx, m, "paint")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Function("paint").Call(ctx); err != nil {
		t.Fatal(err)
	}

	want := []DrawCall{
		{Op: DrawRectangle, Args: []float32{1, 2, 3, 4}, Color: Color{0.1, 0.2, 0.3}},
		{Op: DrawCircle, Args: []float32{5, 6, 7}, Color: Color{1, 0, 0}},
		{Op: DrawCircleLines, Args: []float32{8, 9, 10, 2}, Color: Color{0, 1, 0}},
		{Op: DrawLine, Args: []float32{0, 0, 20, 20, 3}, Color: Color{0, 0, 1}},
	}
	got := rec.Calls()
	if len(got) != len(want) {
		t.Fatalf("got %d calls: %v", len(got), got)
	}
	for i := range want {
		if got[i].String() != want[i].String() {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Rectangle(1, 2, 3, 4, Color{R: 1})
	rec.Line(0, 0, 1, 1, 0.5, Color{})

	calls := rec.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d calls", len(calls))
	}
	if calls[0].String() != "draw_rectangle(1, 2, 3, 4) rgb(1, 0, 0)" {
		t.Errorf("String() = %q", calls[0].String())
	}

	calls[0].Op = "mutated"
	if rec.Calls()[0].Op != DrawRectangle {
		t.Error("Calls returned shared storage")
	}

	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Error("Reset left calls behind")
	}
}

func TestHostFuncDecodesF32(t *testing.T) {
	rec := NewRecorder()
	fn := Functions(rec)[1]
	stack := []uint64{
		api.EncodeF32(1.5), api.EncodeF32(-2), api.EncodeF32(4),
		api.EncodeF32(0), api.EncodeF32(1), api.EncodeF32(0.25),
	}
	fn.Raw(context.Background(), nil, stack)

	got := rec.Calls()
	if len(got) != 1 || got[0].String() != "draw_circle(1.5, -2, 4) rgb(0, 1, 0.25)" {
		t.Errorf("calls = %v", got)
	}
}
