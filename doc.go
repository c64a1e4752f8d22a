// Package megs hosts sandboxed logic modules for a circuit simulator.
//
// Logic modules are core WebAssembly binaries. Each one is compiled,
// verified against a contract of required exports and allowed imports,
// cataloged under a category, and instantiated at positions on a canvas.
// Every tick the host calls each instance's draw entry point, which paints
// through a small set of host drawing functions.
//
// # Architecture Overview
//
//	megs/              Root package with Point and Arity
//	├── contract/      Signatures, contracts and HCL contract manifests
//	├── engine/        Engine interfaces and the wazero implementation
//	├── host/          Drawing capabilities in the "env" namespace
//	├── env/           Module catalog, instance registry and tick dispatch
//	├── wasm/          Core wasm binary decoding and encoding
//	├── config/        Configuration loading
//	├── errors/        Structured error types
//	└── cmd/megs/      Command line interface
//
// # Quick Start
//
//	eng, err := engine.NewWazeroEngine(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	canvas := host.NewRecorder()
//	table, err := eng.Define(ctx, host.Functions(canvas))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	e := env.New(eng, host.Contract(table.Signatures()))
//	defer e.Close(ctx)
//
//	if err := e.AddModuleFromPath(ctx, "modules/Gates/and.wasm"); err != nil {
//	    log.Fatal(err)
//	}
//	id, err := e.Instantiate(ctx, "Gates", "and", megs.Point{X: 50, Y: 30})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := e.OnTick(ctx); err != nil {
//	    log.Print(err)
//	}
//
// # Error Handling
//
// Failures are *errors.Error values carrying the phase and kind:
//
//	if errors.Is(err, env.ErrContractExport) {
//	    // module lacks a required export
//	}
package megs
