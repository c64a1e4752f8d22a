// Package wasm decodes and encodes core WebAssembly binary modules.
//
// Decoding covers the sections that describe a module's interface and
// executable code: type, import, function, table, memory, global, export,
// start and code. Element, data, data count and tag sections are carried as
// raw payloads so a decoded module can be encoded again unchanged.
//
// # Parsing
//
//	m, err := wasm.ParseModule(data)
//	if err != nil {
//	    return err
//	}
//	for _, exp := range m.Exports {
//	    if exp.Kind == wasm.KindFunc {
//	        ft, _ := m.FuncTypeAt(exp.Idx)
//	        fmt.Println(exp.Name, ft.Params, ft.Results)
//	    }
//	}
//
// # Index Spaces
//
// Imported items occupy the low indices of each index space, followed by
// the module's own declarations. FuncTypeAt and GlobalTypeAt resolve an
// index through both.
package wasm
