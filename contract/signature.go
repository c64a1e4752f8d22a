package contract

import (
	"fmt"
	"slices"
	"strings"
)

// ValueType is a wasm value type as it appears in a contract.
type ValueType uint8

const (
	I32 ValueType = iota + 1
	I64
	F32
	F64
	V128
	FuncRef
	ExternRef
)

var valueTypeNames = map[ValueType]string{
	I32:       "I32",
	I64:       "I64",
	F32:       "F32",
	F64:       "F64",
	V128:      "V128",
	FuncRef:   "FuncRef",
	ExternRef: "ExternRef",
}

func (v ValueType) String() string {
	if name, ok := valueTypeNames[v]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", uint8(v))
}

// ParseValueType accepts wasm text names ("f32", "externref") as well as the
// rendered forms ("F32", "ExternRef"), case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i32":
		return I32, nil
	case "i64":
		return I64, nil
	case "f32":
		return F32, nil
	case "f64":
		return F64, nil
	case "v128":
		return V128, nil
	case "funcref":
		return FuncRef, nil
	case "externref":
		return ExternRef, nil
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// Kind is the category of an extern.
type Kind uint8

const (
	Function Kind = iota
	Global
	Table
	Memory
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Global:
		return "global"
	case Table:
		return "table"
	case Memory:
		return "memory"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses a rendered kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "function", "func":
		return Function, nil
	case "global":
		return Global, nil
	case "table":
		return Table, nil
	case "memory":
		return Memory, nil
	}
	return 0, fmt.Errorf("unknown extern kind %q", s)
}

// Signature describes one export or import: its name, namespace (imports
// only), kind and type. Signatures are values; slices passed in or read out
// are copied so a Signature never changes after construction.
type Signature struct {
	name      string
	namespace string
	params    []ValueType
	results   []ValueType
	kind      Kind
	global    ValueType
	mutable   bool
}

// Func returns a function signature.
func Func(name string, params, results []ValueType) Signature {
	return Signature{
		name:    name,
		kind:    Function,
		params:  slices.Clone(params),
		results: slices.Clone(results),
	}
}

// GlobalOf returns a global signature.
func GlobalOf(name string, vt ValueType, mutable bool) Signature {
	return Signature{name: name, kind: Global, global: vt, mutable: mutable}
}

// TableOf returns a table signature. Table element types and limits are not
// part of the comparison.
func TableOf(name string) Signature {
	return Signature{name: name, kind: Table}
}

// MemoryOf returns a memory signature. Limits are not part of the comparison.
func MemoryOf(name string) Signature {
	return Signature{name: name, kind: Memory}
}

// In returns a copy of s attributed to the import namespace ns.
func (s Signature) In(namespace string) Signature {
	c := s.clone()
	c.namespace = namespace
	return c
}

func (s Signature) Name() string      { return s.name }
func (s Signature) Namespace() string { return s.namespace }
func (s Signature) Kind() Kind        { return s.kind }

// Params returns a copy of a function's parameter types.
func (s Signature) Params() []ValueType { return slices.Clone(s.params) }

// Results returns a copy of a function's result types.
func (s Signature) Results() []ValueType { return slices.Clone(s.results) }

// GlobalType returns a global's value type and mutability.
func (s Signature) GlobalType() (ValueType, bool) { return s.global, s.mutable }

// Equal reports structural equality.
func (s Signature) Equal(o Signature) bool {
	return s.name == o.name &&
		s.namespace == o.namespace &&
		s.kind == o.kind &&
		slices.Equal(s.params, o.params) &&
		slices.Equal(s.results, o.results) &&
		s.global == o.global &&
		s.mutable == o.mutable
}

// String renders the signature in diagnostic form, for example
// "env::draw_line(param F32 F32)(result) [function]".
func (s Signature) String() string {
	var b strings.Builder
	if s.namespace != "" {
		b.WriteString(s.namespace)
		b.WriteString("::")
	}
	b.WriteString(s.name)

	switch s.kind {
	case Function:
		writeTypes(&b, "param", s.params)
		writeTypes(&b, "result", s.results)
	case Global:
		if s.mutable {
			b.WriteString("(mut ")
		} else {
			b.WriteString("(const ")
		}
		b.WriteString(s.global.String())
		b.WriteByte(')')
	}

	b.WriteString(" [")
	b.WriteString(s.kind.String())
	b.WriteByte(']')
	return b.String()
}

func writeTypes(b *strings.Builder, label string, types []ValueType) {
	b.WriteByte('(')
	b.WriteString(label)
	for _, t := range types {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	b.WriteByte(')')
}

func (s Signature) clone() Signature {
	c := s
	c.params = slices.Clone(s.params)
	c.results = slices.Clone(s.results)
	return c
}
