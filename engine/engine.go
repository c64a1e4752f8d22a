package engine

import (
	"context"

	"github.com/megs-sim/megs/contract"
)

// Engine compiles wasm bytes and creates instances from compiled modules.
type Engine interface {
	// Compile validates and compiles a module. The returned Module reports
	// the module's full interface.
	Compile(ctx context.Context, wasmBytes []byte) (Module, error)

	// Instantiate creates a new instance of m. name identifies the instance
	// inside the engine and must be unique among live instances.
	Instantiate(ctx context.Context, m Module, name string) (Instance, error)

	Close(ctx context.Context) error
}

// Module is a compiled, not yet instantiated module.
type Module interface {
	contract.Interface
	Close(ctx context.Context) error
}

// Instance is a live module instance with its own memory and globals.
type Instance interface {
	// Function returns the exported function name, or nil if the instance
	// has no function export by that name.
	Function(name string) Function
	Close(ctx context.Context) error
}

// Function is an exported function. Parameters and results use the wasm
// core encoding: f32 values are api.EncodeF32 bit patterns.
type Function interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}
