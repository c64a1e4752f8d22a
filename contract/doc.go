// Package contract describes the interface a logic module must present to
// the host and verifies compiled modules against it.
//
// A Contract lists the exports a module is required to provide and the
// imports it is allowed to request. Check compares a module's introspected
// interface against both lists, exports first, and reports the first
// mismatch:
//
//	missing export `width(param)(result F32) [function]`
//	missing import `env::draw_line(param F32 F32)(result) [function]`
//
// Contracts can be built in code with Func, GlobalOf, TableOf and MemoryOf,
// or loaded from an HCL manifest with LoadFile.
package contract
