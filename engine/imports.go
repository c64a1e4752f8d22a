package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/megs-sim/megs/contract"
	"github.com/megs-sim/megs/errors"
	"github.com/megs-sim/megs/wasm"
)

// HostFunc is a Go function exposed to guests under Namespace::Name with an
// explicit core signature.
type HostFunc struct {
	Raw       api.GoModuleFunc
	Namespace string
	Name      string
	ParamVT   []api.ValueType
	ResultVT  []api.ValueType
}

// Signature returns the import signature a guest must declare to bind f.
func (f HostFunc) Signature() (contract.Signature, error) {
	params, err := apiValueTypes(f.ParamVT)
	if err != nil {
		return contract.Signature{}, err
	}
	results, err := apiValueTypes(f.ResultVT)
	if err != nil {
		return contract.Signature{}, err
	}
	return contract.Func(f.Name, params, results).In(f.Namespace), nil
}

func apiValueTypes(in []api.ValueType) ([]contract.ValueType, error) {
	wt := make([]wasm.ValType, len(in))
	for i, vt := range in {
		wt[i] = wasm.ValType(vt)
	}
	return valueTypes(wt)
}

// ImportTable is the set of host functions defined in an engine. Its
// signatures are the imports a guest module may request.
type ImportTable struct {
	modules    []api.Module
	signatures []contract.Signature
}

// Signatures returns the signatures of every defined host function, in
// definition order.
func (t *ImportTable) Signatures() []contract.Signature {
	return append([]contract.Signature(nil), t.signatures...)
}

// Close removes the host modules from the engine.
func (t *ImportTable) Close(ctx context.Context) error {
	var err error
	for _, m := range t.modules {
		err = multierr.Append(err, m.Close(ctx))
	}
	t.modules = nil
	return err
}

// Define instantiates one host module per namespace in funcs. Guests
// instantiated afterwards resolve their imports against them. A namespace
// can be defined only once per engine.
func (e *WazeroEngine) Define(ctx context.Context, funcs []HostFunc) (*ImportTable, error) {
	var order []string
	byNamespace := make(map[string][]HostFunc)
	seen := make(map[string]bool)

	table := &ImportTable{}
	for _, f := range funcs {
		if f.Raw == nil {
			return nil, errors.Registration(f.Namespace, f.Name, fmt.Errorf("nil function"))
		}
		key := f.Namespace + "::" + f.Name
		if seen[key] {
			return nil, errors.Registration(f.Namespace, f.Name, fmt.Errorf("duplicate definition"))
		}
		seen[key] = true

		sig, err := f.Signature()
		if err != nil {
			return nil, errors.Registration(f.Namespace, f.Name, err)
		}
		table.signatures = append(table.signatures, sig)

		if _, ok := byNamespace[f.Namespace]; !ok {
			order = append(order, f.Namespace)
		}
		byNamespace[f.Namespace] = append(byNamespace[f.Namespace], f)
	}

	for _, ns := range order {
		if e.runtime.Module(ns) != nil {
			return nil, multierr.Append(
				errors.Registration(ns, "*", fmt.Errorf("namespace already defined")),
				table.Close(ctx))
		}

		builder := e.runtime.NewHostModuleBuilder(ns)
		for _, f := range byNamespace[ns] {
			builder.NewFunctionBuilder().
				WithGoModuleFunction(f.Raw, f.ParamVT, f.ResultVT).
				WithName(f.Name).
				Export(f.Name)
		}

		mod, err := builder.Instantiate(ctx)
		if err != nil {
			return nil, multierr.Append(errors.Registration(ns, "*", err), table.Close(ctx))
		}
		table.modules = append(table.modules, mod)

		Logger().Debug("defined host module",
			zap.String("namespace", ns),
			zap.Int("functions", len(byNamespace[ns])))
	}

	return table, nil
}
