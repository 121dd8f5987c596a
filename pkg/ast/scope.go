package ast

// Scope and Symbol are the input contract spec.md §6 hands the core: a
// name binder upstream of this module has already walked the AST, built
// one Scope per lexical block, and attached a Symbol to every Identifier
// that resolves. This package only declares the shape; the only Scope
// pkg/typechecker constructs is the builtin root scope (NewBuiltinScope).
type Scope struct {
	Parent  *Scope
	Symbols map[string][]*Symbol
}

// NewScope creates an empty scope chained to parent. parent is nil for the
// module-level root scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Symbols: make(map[string][]*Symbol)}
}

// Declare records sym under name in this scope, appending to any existing
// entries so overloadable symbols (functions) can coexist under one name.
func (s *Scope) Declare(name string, sym *Symbol) {
	s.Symbols[name] = append(s.Symbols[name], sym)
}

// Lookup walks the scope chain outward and returns every symbol bound to
// name in the nearest enclosing scope that binds it at all. It does not
// merge candidates across scopes: a name in an inner scope shadows the
// whole outer binding set, matching ordinary lexical shadowing.
func (s *Scope) Lookup(name string) []*Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if syms, ok := scope.Symbols[name]; ok {
			return syms
		}
	}
	return nil
}

// LookupOverloadSet implements the Dispatcher's candidate-gathering rule
// (spec.md §4.4 bullet 1): starting from the nearest scope binding name,
// keep merging in parent scopes' bindings of the same name as long as
// every symbol seen so far is overloadable, stopping (without merging
// that parent in) the moment a non-overloadable symbol is found there.
func (s *Scope) LookupOverloadSet(name string) []*Symbol {
	var all []*Symbol
	for scope := s; scope != nil; scope = scope.Parent {
		syms, ok := scope.Symbols[name]
		if !ok {
			continue
		}
		hasNonOverloadable := false
		for _, sym := range syms {
			if !sym.IsOverloadable {
				hasNonOverloadable = true
				break
			}
		}
		if hasNonOverloadable && len(all) > 0 {
			break
		}
		all = append(all, syms...)
		if hasNonOverloadable {
			break
		}
	}
	return all
}

// SymbolKind distinguishes the handful of declaration forms the core
// cares about when deciding how a Disjunction constraint should branch.
type SymbolKind string

const (
	SymbolProp      SymbolKind = "prop"
	SymbolParam     SymbolKind = "param"
	SymbolFunction  SymbolKind = "function"
	SymbolNominal   SymbolKind = "nominal"
	SymbolTypeParam SymbolKind = "typeParam"
	SymbolBuiltin   SymbolKind = "builtin"
)

// Symbol is the resolved binding an Identifier points to. Decl is the
// declaration node that introduced it, nil for a builtin symbol, which
// carries its type directly in PreboundType instead (there is no
// declaration node for `Int` or `Int.+`). PreboundType holds a
// typechecker.Type value behind `any` to avoid an import cycle between this
// package and pkg/typechecker.
type Symbol struct {
	Name           string
	Kind           SymbolKind
	Decl           Node
	IsOverloadable bool
	IsMethod       bool
	PreboundType   any
}
