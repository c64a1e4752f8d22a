package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/megs-sim/megs/contract"
	"github.com/megs-sim/megs/errors"
	"github.com/megs-sim/megs/wasm"
)

// WazeroEngine implements Engine using wazero runtime
type WazeroEngine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &WazeroEngine{runtime: runtime}, nil
}

// Compile validates wasmBytes with wazero and reads the module's interface.
func (e *WazeroEngine) Compile(ctx context.Context, wasmBytes []byte) (Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Compile(err)
	}

	// wazero exposes function exports and imports only; globals and tables
	// come from decoding the binary.
	parsed, err := wasm.ParseModule(wasmBytes)
	if err != nil {
		return nil, multierr.Append(errors.Compile(err), compiled.Close(ctx))
	}

	exports, imports, err := describe(parsed)
	if err != nil {
		return nil, multierr.Append(errors.Compile(err), compiled.Close(ctx))
	}

	Logger().Debug("compiled module",
		zap.Int("size", len(wasmBytes)),
		zap.Int("exports", len(exports)),
		zap.Int("imports", len(imports)))

	return &WazeroModule{
		engine:   e,
		compiled: compiled,
		exports:  exports,
		imports:  imports,
	}, nil
}

// Instantiate creates an instance of a module compiled by this engine.
// Host imports must already be defined with Define.
func (e *WazeroEngine) Instantiate(ctx context.Context, m Module, name string) (Instance, error) {
	wm, ok := m.(*WazeroModule)
	if !ok || wm.engine != e {
		return nil, errors.InvalidInput(errors.PhaseInstantiate, "module was not compiled by this engine")
	}
	if wm.compiled == nil {
		return nil, errors.InvalidInput(errors.PhaseInstantiate, "module is closed")
	}

	// Only the binary's own start section runs; exported "_start" is not
	// special here.
	modConfig := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions()

	instance, err := e.runtime.InstantiateModule(ctx, wm.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	return &WazeroInstance{name: name, instance: instance}, nil
}

func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// WazeroModule is a compiled WASM module
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
	exports  []contract.Signature
	imports  []contract.Signature
}

// Exports returns the module's exports in declaration order.
func (m *WazeroModule) Exports() []contract.Signature {
	return append([]contract.Signature(nil), m.exports...)
}

// Imports returns the module's imports in declaration order.
func (m *WazeroModule) Imports() []contract.Signature {
	return append([]contract.Signature(nil), m.imports...)
}

func (m *WazeroModule) Close(ctx context.Context) error {
	if m.compiled == nil {
		return nil
	}
	err := m.compiled.Close(ctx)
	m.compiled = nil
	return err
}

// WazeroInstance is an instantiated module
type WazeroInstance struct {
	instance api.Module
	name     string
}

// Function returns the exported function name, or nil if absent.
func (i *WazeroInstance) Function(name string) Function {
	if i.instance == nil {
		return nil
	}
	fn := i.instance.ExportedFunction(name)
	if fn == nil {
		return nil
	}
	return &wazeroFunction{fn: fn, name: name}
}

func (i *WazeroInstance) Close(ctx context.Context) error {
	if i.instance == nil {
		return nil
	}
	err := i.instance.Close(ctx)
	i.instance = nil
	return err
}

type wazeroFunction struct {
	fn   api.Function
	name string
}

func (f *wazeroFunction) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	results, err := f.fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.Trap(f.name, err)
	}
	return results, nil
}

// describe translates a decoded module's exports and imports into contract
// signatures. Tag externs have no contract representation and are skipped.
func describe(m *wasm.Module) (exports, imports []contract.Signature, err error) {
	for _, exp := range m.Exports {
		var sig contract.Signature
		switch exp.Kind {
		case wasm.KindFunc:
			ft, ok := m.FuncTypeAt(exp.Idx)
			if !ok {
				return nil, nil, fmt.Errorf("export %q: function index %d out of range", exp.Name, exp.Idx)
			}
			if sig, err = funcSignature(exp.Name, ft); err != nil {
				return nil, nil, fmt.Errorf("export %q: %w", exp.Name, err)
			}
		case wasm.KindGlobal:
			gt, ok := m.GlobalTypeAt(exp.Idx)
			if !ok {
				return nil, nil, fmt.Errorf("export %q: global index %d out of range", exp.Name, exp.Idx)
			}
			if sig, err = globalSignature(exp.Name, gt); err != nil {
				return nil, nil, fmt.Errorf("export %q: %w", exp.Name, err)
			}
		case wasm.KindTable:
			sig = contract.TableOf(exp.Name)
		case wasm.KindMemory:
			sig = contract.MemoryOf(exp.Name)
		default:
			continue
		}
		exports = append(exports, sig)
	}

	for _, imp := range m.Imports {
		var sig contract.Signature
		switch imp.Desc.Kind {
		case wasm.KindFunc:
			if int(imp.Desc.TypeIdx) >= len(m.Types) {
				return nil, nil, fmt.Errorf("import %s::%s: type index %d out of range", imp.Module, imp.Name, imp.Desc.TypeIdx)
			}
			sig, err = funcSignature(imp.Name, m.Types[imp.Desc.TypeIdx])
		case wasm.KindGlobal:
			if imp.Desc.Global == nil {
				return nil, nil, fmt.Errorf("import %s::%s: missing global type", imp.Module, imp.Name)
			}
			sig, err = globalSignature(imp.Name, *imp.Desc.Global)
		case wasm.KindTable:
			sig = contract.TableOf(imp.Name)
		case wasm.KindMemory:
			sig = contract.MemoryOf(imp.Name)
		default:
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("import %s::%s: %w", imp.Module, imp.Name, err)
		}
		imports = append(imports, sig.In(imp.Module))
	}

	return exports, imports, nil
}

func funcSignature(name string, ft wasm.FuncType) (contract.Signature, error) {
	params, err := valueTypes(ft.Params)
	if err != nil {
		return contract.Signature{}, err
	}
	results, err := valueTypes(ft.Results)
	if err != nil {
		return contract.Signature{}, err
	}
	return contract.Func(name, params, results), nil
}

func globalSignature(name string, gt wasm.GlobalType) (contract.Signature, error) {
	vt, err := valueType(gt.ValType)
	if err != nil {
		return contract.Signature{}, err
	}
	return contract.GlobalOf(name, vt, gt.Mutable), nil
}

func valueTypes(in []wasm.ValType) ([]contract.ValueType, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]contract.ValueType, len(in))
	for i, vt := range in {
		t, err := valueType(vt)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func valueType(vt wasm.ValType) (contract.ValueType, error) {
	switch vt {
	case wasm.ValI32:
		return contract.I32, nil
	case wasm.ValI64:
		return contract.I64, nil
	case wasm.ValF32:
		return contract.F32, nil
	case wasm.ValF64:
		return contract.F64, nil
	case wasm.ValV128:
		return contract.V128, nil
	case wasm.ValFuncRef:
		return contract.FuncRef, nil
	case wasm.ValExtern:
		return contract.ExternRef, nil
	}
	return 0, errors.Unsupported(errors.PhaseCompile, fmt.Sprintf("value type 0x%02x", byte(vt)))
}
