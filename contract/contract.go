package contract

import (
	"fmt"
	"slices"

	"github.com/megs-sim/megs/errors"
)

// Interface is the introspected surface of a compiled module.
type Interface interface {
	Exports() []Signature
	Imports() []Signature
}

// Contract is the set of exports a module must provide and the set of
// imports it is allowed to request. It is read-only after New.
type Contract struct {
	exports []Signature
	imports []Signature
}

// New creates a contract from required exports and allowed imports.
func New(exports, imports []Signature) *Contract {
	return &Contract{
		exports: cloneAll(exports),
		imports: cloneAll(imports),
	}
}

// Exports returns a copy of the required exports.
func (c *Contract) Exports() []Signature { return cloneAll(c.exports) }

// Imports returns a copy of the allowed imports.
func (c *Contract) Imports() []Signature { return cloneAll(c.imports) }

// Check verifies m against the contract. Every required export is looked up
// in contract order first; only when all are present are the module's
// imports checked, in module order, against the allowed set. The first
// mismatch is returned as an *Error.
func (c *Contract) Check(m Interface) error {
	exports := m.Exports()
	for _, want := range c.exports {
		if !contains(exports, want) {
			return &Error{Kind: ExportError, Signature: want}
		}
	}

	for _, imp := range m.Imports() {
		if !contains(c.imports, imp) {
			return &Error{Kind: ImportError, Signature: imp}
		}
	}
	return nil
}

func contains(list []Signature, s Signature) bool {
	return slices.ContainsFunc(list, s.Equal)
}

func cloneAll(list []Signature) []Signature {
	out := make([]Signature, len(list))
	for i, s := range list {
		out[i] = s.clone()
	}
	return out
}

// ErrorKind says which half of a contract a module failed.
type ErrorKind uint8

const (
	ExportError ErrorKind = iota
	ImportError
)

func (k ErrorKind) String() string {
	if k == ImportError {
		return "import"
	}
	return "export"
}

// Error is a contract violation naming the first offending signature.
type Error struct {
	Signature Signature
	Kind      ErrorKind
}

func (e *Error) Error() string {
	return fmt.Sprintf("missing %s `%s`", e.Kind, e.Signature)
}

// Is matches the structured contract errors so callers can test with
// errors.Is against an *errors.Error carrying PhaseContract.
func (e *Error) Is(target error) bool {
	t, ok := target.(*errors.Error)
	if !ok || t.Phase != errors.PhaseContract {
		return false
	}
	switch e.Kind {
	case ExportError:
		return t.Kind == errors.KindMissingExport
	case ImportError:
		return t.Kind == errors.KindMissingImport
	}
	return false
}
