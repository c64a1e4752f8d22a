package contract

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/megs-sim/megs/errors"
)

// hclManifest is the top-level structure of a contract manifest:
//
//	export "width" {
//	  results = ["f32"]
//	}
//
//	import "env" "draw_line" {
//	  params = ["f32", "f32", "f32", "f32", "f32", "f32", "f32", "f32"]
//	}
type hclManifest struct {
	Exports []*hclExport `hcl:"export,block"`
	Imports []*hclImport `hcl:"import,block"`
}

type hclExport struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type hclImport struct {
	Namespace string   `hcl:"namespace,label"`
	Name      string   `hcl:"name,label"`
	Body      hcl.Body `hcl:",remain"`
}

type hclExtern struct {
	Kind    *string  `hcl:"kind,optional"`
	Params  []string `hcl:"params,optional"`
	Results []string `hcl:"results,optional"`
	Type    *string  `hcl:"type,optional"`
	Mutable *bool    `hcl:"mutable,optional"`
}

// ParseHCL decodes a contract manifest. filename is used in diagnostics
// only.
func ParseHCL(src []byte, filename string) (*Contract, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.ParseFailed("contract manifest "+filename, diags)
	}

	var manifest hclManifest
	if diags := gohcl.DecodeBody(file.Body, nil, &manifest); diags.HasErrors() {
		return nil, errors.ParseFailed("contract manifest "+filename, diags)
	}

	exports := make([]Signature, 0, len(manifest.Exports))
	for _, exp := range manifest.Exports {
		sig, err := decodeExtern(exp.Name, exp.Body)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(filename, "export", exp.Name).
				Cause(err).
				Build()
		}
		exports = append(exports, sig)
	}

	imports := make([]Signature, 0, len(manifest.Imports))
	for _, imp := range manifest.Imports {
		sig, err := decodeExtern(imp.Name, imp.Body)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(filename, "import", imp.Namespace, imp.Name).
				Cause(err).
				Build()
		}
		imports = append(imports, sig.In(imp.Namespace))
	}

	return New(exports, imports), nil
}

// LoadFile reads and decodes a contract manifest from disk.
func LoadFile(path string) (*Contract, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindIO, err, "read contract manifest "+path)
	}
	return ParseHCL(src, path)
}

func decodeExtern(name string, body hcl.Body) (Signature, error) {
	var ext hclExtern
	if diags := gohcl.DecodeBody(body, nil, &ext); diags.HasErrors() {
		return Signature{}, diags
	}

	kind := Function
	if ext.Kind != nil {
		k, err := ParseKind(*ext.Kind)
		if err != nil {
			return Signature{}, err
		}
		kind = k
	}

	if kind != Function && (len(ext.Params) > 0 || len(ext.Results) > 0) {
		return Signature{}, fmt.Errorf("params and results only apply to functions, not %s", kind)
	}
	if kind != Global && (ext.Type != nil || ext.Mutable != nil) {
		return Signature{}, fmt.Errorf("type and mutable only apply to globals, not %s", kind)
	}

	switch kind {
	case Global:
		if ext.Type == nil {
			return Signature{}, fmt.Errorf("global %q needs a type", name)
		}
		vt, err := ParseValueType(*ext.Type)
		if err != nil {
			return Signature{}, err
		}
		return GlobalOf(name, vt, ext.Mutable != nil && *ext.Mutable), nil
	case Table:
		return TableOf(name), nil
	case Memory:
		return MemoryOf(name), nil
	}

	params, err := parseValueTypes(ext.Params)
	if err != nil {
		return Signature{}, err
	}
	results, err := parseValueTypes(ext.Results)
	if err != nil {
		return Signature{}, err
	}
	return Func(name, params, results), nil
}

func parseValueTypes(names []string) ([]ValueType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]ValueType, len(names))
	for i, n := range names {
		vt, err := ParseValueType(n)
		if err != nil {
			return nil, err
		}
		out[i] = vt
	}
	return out, nil
}
