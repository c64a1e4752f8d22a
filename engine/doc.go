// Package engine runs logic modules.
//
// The Engine interface is what the rest of the host consumes: compile bytes
// into a Module that reports its interface as contract signatures, create
// named Instances from it, and call their exported Functions. WazeroEngine
// implements it on wazero.
//
// # Host Imports
//
// Host functions are described as HostFunc values and defined once per
// engine with Define, which returns the ImportTable of signatures a guest
// is allowed to import:
//
//	eng, _ := engine.NewWazeroEngine(ctx)
//	table, err := eng.Define(ctx, host.Functions(canvas))
//	if err != nil {
//	    return err
//	}
//	c := host.Contract(table.Signatures())
//
// # Values
//
// Function parameters and results are raw uint64 stack values. Use
// api.EncodeF32 and api.DecodeF32 for f32.
//
// # Logging
//
// The package logs through Logger, a no-op zap logger unless SetLogger is
// called.
package engine
