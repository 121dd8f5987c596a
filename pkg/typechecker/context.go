package typechecker

import (
	"fmt"
	"sort"
	"strings"

	"semcore/pkg/ast"
)

// CompilerContext is the process-scoped owner of everything a single
// compilation shares: the interning tables, the type-variable counter,
// the constraint accumulator, and the diagnostic sink. Nothing under this
// package allocates a type or a diagnostic except through a context,
// mirroring the teacher's single-Checker-instance-per-compilation
// discipline (pkg/typechecker/checker.go) generalized to spec.md §3.4's
// lifecycle rules.
type CompilerContext struct {
	Config *Config

	nextVarID int

	errorType *ErrorTy
	builtins  map[string]*BuiltinType

	nominalTypes  map[*ast.NominalDecl]*NominalType
	functionTypes map[string]*FunctionType
	boundGenerics map[string]*BoundGenericType
	metatypes     map[string]*Metatype
	placeholders  map[string]*PlaceholderType

	Constraints *ConstraintSet
	Diagnostics []Diagnostic
}

// NewContext creates a fresh CompilerContext, pre-populated with the
// builtin types spec.md §6 requires to exist before the first pass runs.
func NewContext(cfg *Config) *CompilerContext {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx := &CompilerContext{
		Config:        cfg,
		errorType:     &ErrorTy{},
		builtins:      make(map[string]*BuiltinType),
		nominalTypes:  make(map[*ast.NominalDecl]*NominalType),
		functionTypes: make(map[string]*FunctionType),
		boundGenerics: make(map[string]*BoundGenericType),
		metatypes:     make(map[string]*Metatype),
		placeholders:  make(map[string]*PlaceholderType),
		Constraints:   NewConstraintSet(),
	}
	for _, name := range []string{BuiltinBool, BuiltinInt, BuiltinFloat, BuiltinString, BuiltinAnything, BuiltinNothing} {
		ctx.builtins[name] = &BuiltinType{Name: name}
	}
	return ctx
}

func (ctx *CompilerContext) Report(d Diagnostic) {
	ctx.Diagnostics = append(ctx.Diagnostics, d)
}

// ErrorType returns the single absorbing ErrorType instance.
func (ctx *CompilerContext) ErrorType() Type { return ctx.errorType }

// NewTypeVariable mints a fresh, never-interned TypeVariable with a
// monotonically increasing id.
func (ctx *CompilerContext) NewTypeVariable() *TypeVariable {
	ctx.nextVarID++
	return &TypeVariable{ID: ctx.nextVarID}
}

// Builtin returns the canonical instance for one of the names in
// spec.md §3.1's BuiltinType row; it panics on an unknown name because
// every caller in this package passes a compile-time constant.
func (ctx *CompilerContext) Builtin(name string) *BuiltinType {
	b, ok := ctx.builtins[name]
	if !ok {
		panic(fmt.Sprintf("typechecker: unknown builtin %q", name))
	}
	return b
}

// Placeholder interns one (owner, name) placeholder. owner is whichever
// NominalType or FunctionType is mid-declaration when the placeholder is
// first named; the same owner+name pair always yields the same pointer.
func (ctx *CompilerContext) Placeholder(ownerKey string, name string) *PlaceholderType {
	key := ownerKey + "#" + name
	if p, ok := ctx.placeholders[key]; ok {
		return p
	}
	p := &PlaceholderType{Name: name}
	ctx.placeholders[key] = p
	return p
}

// NominalType interns (by decl identity — a NominalDecl is only ever
// declared once) the NominalType for decl, constructing its placeholder
// list from decl.TypeParams on first creation so every reference to the
// same declaration shares one instance.
func (ctx *CompilerContext) NominalType(decl *ast.NominalDecl) *NominalType {
	if n, ok := ctx.nominalTypes[decl]; ok {
		return n
	}
	n := &NominalType{
		Name:        decl.Name,
		Kind:        decl.Kind,
		Decl:        decl,
		MemberScope: decl.Scope,
	}
	ctx.nominalTypes[decl] = n
	for _, tp := range decl.TypeParams {
		n.Placeholders = append(n.Placeholders, ctx.Placeholder(decl.Name, tp.Name))
	}
	return n
}

// FunctionType interns a function signature keyed by its full structural
// shape, per spec.md §3.1's interning law ("two independently constructed
// FunctionTypes with equal parameter labels, parameter types, codomain
// and placeholder lists share one pointer").
func (ctx *CompilerContext) FunctionType(params []FunctionParam, codomain Type, placeholders []*PlaceholderType, methodSelf Type) *FunctionType {
	key := functionTypeKey(params, codomain, placeholders, methodSelf)
	if f, ok := ctx.functionTypes[key]; ok {
		return f
	}
	f := &FunctionType{Params: params, Codomain: codomain, Placeholders: placeholders, MethodSelf: methodSelf}
	ctx.functionTypes[key] = f
	return f
}

func functionTypeKey(params []FunctionParam, codomain Type, placeholders []*PlaceholderType, methodSelf Type) string {
	var b strings.Builder
	if methodSelf != nil {
		fmt.Fprintf(&b, "self(%s)|", typeIdentity(methodSelf))
	}
	for _, p := range params {
		fmt.Fprintf(&b, "%s:%s,", p.Label, typeIdentity(p.Type))
	}
	fmt.Fprintf(&b, "->%s|", typeIdentity(codomain))
	for _, ph := range placeholders {
		fmt.Fprintf(&b, "ph:%p,", ph)
	}
	return b.String()
}

// typeIdentity returns the identity token for t used in interning keys: a
// TypeVariable folds in its id, since two distinct variables must never
// collide but neither may ever be interned; any other type contributes its
// own address. The address stands in for structure only for types that
// come from this context's factories. QualifiedType and OpenedNominalType
// values, and the FunctionType/BoundGenericType values Open and Reify build
// directly, are not interned, so two structurally equal components of
// those kinds yield different tokens.
func typeIdentity(t Type) string {
	if t == nil {
		return "nil"
	}
	if v, ok := t.(*TypeVariable); ok {
		return fmt.Sprintf("var#%d", v.ID)
	}
	return fmt.Sprintf("%p", t)
}

// Metatype interns the type-of-a-type wrapper for inner.
func (ctx *CompilerContext) Metatype(inner Type) *Metatype {
	key := typeIdentity(inner)
	if m, ok := ctx.metatypes[key]; ok {
		return m
	}
	m := &Metatype{Inner: inner}
	ctx.metatypes[key] = m
	return m
}

// BoundGeneric interns a (generic, bindings) pair, wrapping rather than
// reifying the nominal so call sites retain the specialization arguments
// (spec.md §4.1's Close contract).
func (ctx *CompilerContext) BoundGeneric(generic Type, bindings map[*PlaceholderType]Type) *BoundGenericType {
	key := boundGenericKey(generic, bindings)
	if b, ok := ctx.boundGenerics[key]; ok {
		return b
	}
	b := &BoundGenericType{Generic: generic, Bindings: bindings}
	ctx.boundGenerics[key] = b
	return b
}

func boundGenericKey(generic Type, bindings map[*PlaceholderType]Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|", typeIdentity(generic))
	type entry struct {
		name string
		val  string
	}
	entries := make([]entry, 0, len(bindings))
	for ph, t := range bindings {
		entries = append(entries, entry{ph.Name, typeIdentity(t)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for _, e := range entries {
		fmt.Fprintf(&b, "%s=%s,", e.name, e.val)
	}
	return b.String()
}
