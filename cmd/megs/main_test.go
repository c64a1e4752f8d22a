package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/config"
	"github.com/megs-sim/megs/env"
	"github.com/megs-sim/megs/internal/testbed"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    megs.Point
		wantErr bool
	}{
		{in: "0,0", want: megs.Point{}},
		{in: "50,30", want: megs.Point{X: 50, Y: 30}},
		{in: " -15 , 200 ", want: megs.Point{X: -15, Y: 200}},
		{in: "1.5,2,3", want: megs.Point{X: 1.5, Y: 2, Z: 3}},
		{in: "1", wantErr: true},
		{in: "1,2,3,4", wantErr: true},
		{in: "a,2", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parsePoint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := newLogger(config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("newLogger(%s): %v", format, err)
		}
		if !l.Core().Enabled(zap.DebugLevel) {
			t.Errorf("newLogger(%s): debug not enabled", format)
		}
	}

	if _, err := newLogger(config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("newLogger with unknown level: expected error")
	}
}

func writeModule(t *testing.T, root, category, name string, g testbed.Gate) string {
	t.Helper()
	dir := filepath.Join(root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+".wasm")
	if err := os.WriteFile(path, g.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T, root string) *app {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Modules.Root = root
	a, err := newApp(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(ctx); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return a
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "gates", "and", testbed.Gate{Width: 10, Height: 5, Color: [3]float32{1, 0, 0}})
	writeModule(t, root, "gates", "or", testbed.Gate{Width: 20, Height: 5, Color: [3]float32{0, 1, 0}})

	a := newTestApp(t, root)
	var out bytes.Buffer
	if err := run(context.Background(), &out, a, 2, megs.Point{X: 5, Y: 1}); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"gates/and at (5, 1)",
		"gates/or at (15, 1)",
		"draw_rectangle(5, 1, 10, 5) rgb(1, 0, 0)",
		"draw_rectangle(15, 1, 20, 5) rgb(0, 1, 0)",
		"tick 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "draw_rectangle"); n != 4 {
		t.Errorf("draw_rectangle count = %d, want 4", n)
	}
}

func TestRunMissingRoot(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "missing"))
	err := run(context.Background(), &bytes.Buffer{}, a, 1, megs.Point{})
	if !stderrors.Is(err, env.ErrIO) {
		t.Fatalf("run error = %v, want ErrIO", err)
	}
}

func TestRunSkipsInvalidModules(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "gates", "and", testbed.Gate{Width: 10, Height: 5})
	writeModule(t, root, "gates", "broken", testbed.Gate{Width: 10, Height: 5, Omit: "draw"})

	a := newTestApp(t, root)
	var out bytes.Buffer
	if err := run(context.Background(), &out, a, 1, megs.Point{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out.String(), "gates/broken") {
		t.Errorf("broken module was instantiated:\n%s", out.String())
	}
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	good := writeModule(t, root, "gates", "and", testbed.Gate{Width: 10, Height: 5})
	bad := writeModule(t, root, "gates", "tall", testbed.Gate{Width: 10, Height: 5, Omit: "height"})
	a := newTestApp(t, root)
	ctx := context.Background()

	var out bytes.Buffer
	if err := check(ctx, &out, a, good); err != nil {
		t.Fatalf("check(good): %v", err)
	}
	if !strings.Contains(out.String(), "ok") {
		t.Errorf("check(good) output:\n%s", out.String())
	}

	out.Reset()
	err := check(ctx, &out, a, bad)
	if !stderrors.Is(err, env.ErrContractExport) {
		t.Fatalf("check(bad) error = %v, want ErrContractExport", err)
	}
	if !strings.Contains(err.Error(), "missing export `height") {
		t.Errorf("check(bad) error = %q", err)
	}
	if strings.Contains(out.String(), "missing export") {
		t.Errorf("check(bad) printed the diagnostic itself:\n%s", out.String())
	}

	if err := check(ctx, &out, a, filepath.Join(root, "nope.wasm")); !stderrors.Is(err, env.ErrIO) {
		t.Errorf("check(missing) error = %v, want ErrIO", err)
	}
}

func TestPrintCatalog(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "gates", "and", testbed.Gate{Width: 10, Height: 5})
	writeModule(t, root, "gates", "or", testbed.Gate{Width: 10, Height: 5})
	writeModule(t, root, "io", "lamp", testbed.Gate{Width: 4, Height: 4})

	a := newTestApp(t, root)
	if n, err := a.load(context.Background()); err != nil || n != 3 {
		t.Fatalf("load = %d, %v", n, err)
	}

	var out bytes.Buffer
	printCatalog(&out, a)
	got := out.String()
	for _, want := range []string{"gates", "io", "and", "or", "lamp", "in 2 out 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("catalog missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "gates") > strings.Index(got, "io") {
		t.Errorf("categories not sorted:\n%s", got)
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "log-level"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
	want := map[string]bool{"check": true, "list": true, "run": true, "browse": true}
	for _, sub := range cmd.Commands() {
		delete(want, sub.Name())
	}
	if len(want) != 0 {
		t.Errorf("missing subcommands: %v", want)
	}
}
