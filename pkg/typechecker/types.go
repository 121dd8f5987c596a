package typechecker

import (
	"fmt"
	"sort"
	"strings"

	"semcore/pkg/ast"
)

// Type is the closed sum described in spec.md §3.1. Every variant below
// implements it; the unexported marker method is what keeps the sum
// closed to this package, mirroring the teacher's tagged-interface Type
// pattern in pkg/typechecker/types.go.
type Type interface {
	typeMarker()
	String() string
}

type markerEmbed struct{}

func (markerEmbed) typeMarker() {}

// ErrorType is the single absorbing singleton; every CompilerContext owns
// exactly one instance, reachable via ErrorType().
type ErrorTy struct{ markerEmbed }

func (*ErrorTy) String() string { return "<error>" }

// TypeVariable is never interned: each call to NewTypeVariable mints a
// fresh instance with a monotonically increasing ID, and it is the only
// variant the substitution table ever binds.
type TypeVariable struct {
	markerEmbed
	ID int
}

func (v *TypeVariable) String() string { return fmt.Sprintf("$%d", v.ID) }

// PlaceholderType is a generic parameter, e.g. `T` on `Box<T>`, still
// awaiting instantiation. CompilerContext.Placeholder interns it by the
// declaring owner's name string and does not set Owner, so Owner is nil on
// every placeholder the context creates.
type PlaceholderType struct {
	markerEmbed
	Name  string
	Owner Type
}

func (p *PlaceholderType) String() string { return p.Name }

// NominalType is a user-declared struct, interface or union.
type NominalType struct {
	markerEmbed
	Name         string
	Kind         ast.NominalKind
	Decl         *ast.NominalDecl
	MemberScope  *ast.Scope
	Placeholders []*PlaceholderType
}

func (n *NominalType) String() string {
	if len(n.Placeholders) == 0 {
		return n.Name
	}
	names := make([]string, len(n.Placeholders))
	for i, p := range n.Placeholders {
		names[i] = p.Name
	}
	return fmt.Sprintf("%s<%s>", n.Name, strings.Join(names, ", "))
}

// FunctionParam is one (optional label, type) pair in a FunctionType's
// parameter list.
type FunctionParam struct {
	Label string
	Type  Type
}

// FunctionType is a function or method signature. For a method, this is
// the curried `(Self) -> (params...) -> codomain` shape spec.md §4.2
// describes; MethodSelf is non-nil in that case and Params/Codomain
// describe the inner function.
type FunctionType struct {
	markerEmbed
	Params       []FunctionParam
	Codomain     Type
	Placeholders []*PlaceholderType
	MethodSelf   Type
}

func (f *FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p.Label != "" {
			parts[i] = fmt.Sprintf("%s: %s", p.Label, p.Type)
		} else {
			parts[i] = p.Type.String()
		}
	}
	sig := fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Codomain)
	if f.MethodSelf != nil {
		return fmt.Sprintf("(%s) -> %s", f.MethodSelf, sig)
	}
	return sig
}

// BoundGenericType pairs a generic NominalType or FunctionType with a
// (possibly partial) placeholder→type substitution, produced by Close.
type BoundGenericType struct {
	markerEmbed
	Generic  Type
	Bindings map[*PlaceholderType]Type
}

func (b *BoundGenericType) String() string {
	parts := make([]string, 0, len(b.Bindings))
	for ph, t := range b.Bindings {
		parts = append(parts, fmt.Sprintf("%s: %s", ph.Name, t))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s{%s}", b.Generic, strings.Join(parts, ", "))
}

// OpenedNominalType wraps a nominal mid-inference: its placeholders have
// been mapped to fresh type variables (rather than the nominal being
// recursively rewritten), which preserves nominal identity through
// unification while still letting its placeholders participate.
type OpenedNominalType struct {
	markerEmbed
	Nominal  *NominalType
	Bindings map[*PlaceholderType]*TypeVariable
}

func (o *OpenedNominalType) String() string {
	return fmt.Sprintf("Opened(%s)", o.Nominal)
}

// Metatype is the type of a type: the value produced when a type name is
// used in value position (the callee of a constructor invocation, or the
// owner of a static member select).
type Metatype struct {
	markerEmbed
	Inner Type
}

func (m *Metatype) String() string { return fmt.Sprintf("Metatype(%s)", m.Inner) }

// BuiltinType names one of the language's primitive or universal types.
type BuiltinType struct {
	markerEmbed
	Name string
}

func (b *BuiltinType) String() string { return b.Name }

const (
	BuiltinBool      = "Bool"
	BuiltinInt       = "Int"
	BuiltinFloat     = "Float"
	BuiltinString    = "String"
	BuiltinAnything  = "Anything"
	BuiltinNothing   = "Nothing"
)

// Qualifier is a bitflag set modifying the memory/ownership semantics of
// a type: cst/mut (constness), stk/shd (storage), val/ref (indirection).
type Qualifier uint8

const (
	QualCst Qualifier = 1 << iota
	QualMut
	QualStk
	QualShd
	QualVal
	QualRef
)

func (q Qualifier) Has(flag Qualifier) bool { return q&flag != 0 }

func (q Qualifier) String() string {
	var names []string
	for flag, name := range map[Qualifier]string{
		QualCst: "cst", QualMut: "mut", QualStk: "stk",
		QualShd: "shd", QualVal: "val", QualRef: "ref",
	} {
		if q.Has(flag) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}

// qualifierNames maps each of spec.md §3.1's qualifier spellings to its
// flag bit. Shared by config.go's "cst+stk+val"-shaped YAML parsing and
// by a QualifiedTypeExpr annotation's bare name list.
var qualifierNames = map[string]Qualifier{
	"cst": QualCst, "mut": QualMut, "stk": QualStk,
	"shd": QualShd, "val": QualVal, "ref": QualRef,
}

// ParseQualifiers folds a list of bare qualifier names, as written on a
// QualifiedTypeExpr annotation (e.g. ["mut", "stk", "val"]), into one
// bitflag set. Unrecognized names are silently dropped.
func ParseQualifiers(names []string) Qualifier {
	var q Qualifier
	for _, n := range names {
		q |= qualifierNames[n]
	}
	return q
}

// defaultQualifierCombinations is the language-level list of qualifier
// sets spec.md §3.1 permits. Config.QualifierCombinations overrides this
// when a non-default combination table is loaded from YAML.
var defaultQualifierCombinations = []Qualifier{
	QualCst | QualStk | QualVal,
	QualCst | QualStk | QualRef,
	QualMut | QualStk | QualVal,
	QualMut | QualStk | QualRef,
	QualMut | QualShd | QualVal,
}

// QualifiedType pairs an unqualified type with a qualifier set.
type QualifiedType struct {
	markerEmbed
	Inner      Type
	Qualifiers Qualifier
}

func (q *QualifiedType) String() string {
	return fmt.Sprintf("%s %s", q.Qualifiers, q.Inner)
}

// Unqualify strips a QualifiedType wrapper if present, returning the bare
// type and its qualifier set (zero if t was not qualified).
func Unqualify(t Type) (Type, Qualifier) {
	if q, ok := t.(*QualifiedType); ok {
		return q.Inner, q.Qualifiers
	}
	return t, 0
}
