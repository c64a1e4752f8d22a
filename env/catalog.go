package env

import (
	"context"
	stderrors "errors"
	"os"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/contract"
	"github.com/megs-sim/megs/engine"
	"github.com/megs-sim/megs/errors"
)

// definition is a verified module ready to be instantiated.
type definition struct {
	compiled engine.Module
	name     string
	inputs   megs.Arity
	outputs  megs.Arity
	id       uint64
}

type category struct {
	modules map[string]*definition
	name    string
	id      uint64
}

// ModuleInfo describes a cataloged module definition.
type ModuleInfo struct {
	Category string
	Name     string
	Inputs   megs.Arity
	Outputs  megs.Arity
	ID       uint64
}

// CategoryInfo describes a category and its modules, sorted by name.
type CategoryInfo struct {
	Name    string
	Modules []ModuleInfo
	ID      uint64
}

// AddCategory inserts an empty category. An existing category of the same
// name is replaced and its modules leave the catalog; instances created
// from them keep running.
func (e *Environment) AddCategory(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addCategoryLocked(name)
}

func (e *Environment) addCategoryLocked(name string) *category {
	if old, ok := e.categories[name]; ok {
		for _, def := range old.modules {
			e.retired = append(e.retired, def.compiled)
		}
		e.logger.Debug("replacing category",
			zap.String("category", name),
			zap.Int("modules", len(old.modules)))
	}
	cat := &category{
		name:    name,
		id:      e.nextCategoryID,
		modules: make(map[string]*definition),
	}
	e.categories[name] = cat
	e.nextCategoryID++
	return cat
}

// AddModuleFromBytes compiles wasmBytes, verifies the result against the
// environment's contract and stores it as module in category. The category
// is created if it does not exist. A module of the same name is replaced.
//
// On failure the catalog is unchanged and no module id is consumed.
func (e *Environment) AddModuleFromBytes(ctx context.Context, categoryName, moduleName string, wasmBytes []byte) error {
	compiled, err := e.engine.Compile(ctx, wasmBytes)
	if err != nil {
		return errors.New(errors.PhaseCompile, errors.KindCompile).
			Path(categoryName, moduleName).
			Detail("compile module").
			Cause(err).
			Build()
	}

	if err := e.contract.Check(compiled); err != nil {
		kind := errors.KindMissingExport
		var cerr *contract.Error
		if stderrors.As(err, &cerr) && cerr.Kind == contract.ImportError {
			kind = errors.KindMissingImport
		}
		e.logger.Debug("module rejected",
			zap.String("category", categoryName),
			zap.String("module", moduleName),
			zap.Error(err))
		rejected := errors.New(errors.PhaseContract, kind).
			Path(categoryName, moduleName).
			Cause(err).
			Build()
		return multierr.Append(rejected, compiled.Close(ctx))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cat, ok := e.categories[categoryName]
	if !ok {
		cat = e.addCategoryLocked(categoryName)
	}
	if old, ok := cat.modules[moduleName]; ok {
		e.retired = append(e.retired, old.compiled)
	}

	def := &definition{
		compiled: compiled,
		name:     moduleName,
		id:       e.nextModuleID,
		inputs:   e.inputs,
		outputs:  e.outputs,
	}
	cat.modules[moduleName] = def
	e.nextModuleID++

	e.logger.Info("module added",
		zap.String("category", categoryName),
		zap.String("module", moduleName),
		zap.Uint64("id", def.id))
	return nil
}

// AddModuleFromPath loads <category>/<module>.<ext> from disk. The parent
// directory names the category and the file stem names the module.
func (e *Environment) AddModuleFromPath(ctx context.Context, path string) error {
	categoryName, moduleName, err := ParsePath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(path, err)
	}
	return e.AddModuleFromBytes(ctx, categoryName, moduleName, data)
}

// Categories returns every category with its modules, sorted by name.
func (e *Environment) Categories() []CategoryInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]CategoryInfo, 0, len(e.categories))
	for _, cat := range e.categories {
		info := CategoryInfo{Name: cat.name, ID: cat.id}
		for _, def := range cat.modules {
			info.Modules = append(info.Modules, def.info(cat.name))
		}
		sort.Slice(info.Modules, func(i, j int) bool { return info.Modules[i].Name < info.Modules[j].Name })
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CategoryNames returns the category names, sorted.
func (e *Environment) CategoryNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.categories))
	for name := range e.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleNames returns the module names of a category, sorted. ok is false
// if the category does not exist.
func (e *Environment) ModuleNames(categoryName string) (names []string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cat, ok := e.categories[categoryName]
	if !ok {
		return nil, false
	}
	names = make([]string, 0, len(cat.modules))
	for name := range cat.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true
}

// Module returns the definition stored under category and name.
func (e *Environment) Module(categoryName, moduleName string) (ModuleInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.lookupLocked(categoryName, moduleName)
	if !ok {
		return ModuleInfo{}, false
	}
	return def.info(categoryName), true
}

func (e *Environment) lookupLocked(categoryName, moduleName string) (*definition, bool) {
	cat, ok := e.categories[categoryName]
	if !ok {
		return nil, false
	}
	def, ok := cat.modules[moduleName]
	return def, ok
}

func (d *definition) info(categoryName string) ModuleInfo {
	return ModuleInfo{
		Category: categoryName,
		Name:     d.name,
		ID:       d.id,
		Inputs:   d.inputs,
		Outputs:  d.outputs,
	}
}
