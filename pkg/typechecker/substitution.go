package typechecker

// SubstitutionTable is a union-find map from TypeVariable to Type, with
// path compression on lookup. It is append-only during solving and
// snapshot-restorable across disjunction branch exploration (spec.md
// §3.3), which Clone backs: the solver snapshots by cloning the map
// before trying a branch and discards the clone (or adopts it wholesale
// on success) rather than maintaining an undo log.
type SubstitutionTable struct {
	bindings map[*TypeVariable]Type
}

func NewSubstitutionTable() *SubstitutionTable {
	return &SubstitutionTable{bindings: make(map[*TypeVariable]Type)}
}

// Walk follows chained substitutions to a fixed point: if t is a bound
// TypeVariable, it keeps resolving until it reaches an unbound variable or
// a non-variable type, compressing the chain it walked so later lookups
// are O(1).
func (s *SubstitutionTable) Walk(t Type) Type {
	v, ok := t.(*TypeVariable)
	if !ok {
		return t
	}
	var chain []*TypeVariable
	cur := v
	for {
		bound, ok := s.bindings[cur]
		if !ok {
			break
		}
		next, isVar := bound.(*TypeVariable)
		if !isVar {
			for _, c := range chain {
				s.bindings[c] = bound
			}
			return bound
		}
		chain = append(chain, cur)
		cur = next
	}
	for _, c := range chain {
		if cur != c {
			s.bindings[c] = cur
		}
	}
	return cur
}

// Bind extends the table with v → t. Callers must occurs-check before
// calling Bind; this method does not re-check.
func (s *SubstitutionTable) Bind(v *TypeVariable, t Type) {
	s.bindings[v] = t
}

// IsBound reports whether v currently resolves to something other than
// itself.
func (s *SubstitutionTable) IsBound(v *TypeVariable) bool {
	_, ok := s.bindings[v]
	return ok
}

// Clone returns an independent copy of the table, used by the solver to
// snapshot state before exploring a disjunction branch.
func (s *SubstitutionTable) Clone() *SubstitutionTable {
	clone := make(map[*TypeVariable]Type, len(s.bindings))
	for k, v := range s.bindings {
		clone[k] = v
	}
	return &SubstitutionTable{bindings: clone}
}

// Adopt replaces this table's bindings with other's, used when a strict
// disjunction trial succeeds and its substitution becomes authoritative.
func (s *SubstitutionTable) Adopt(other *SubstitutionTable) {
	s.bindings = other.bindings
}

// occursIn reports whether v appears free anywhere inside walk(t),
// recursing through every composite Type variant. The solver rejects any
// binding that would fail this check (spec.md §4.3 "Occurs-check").
func (s *SubstitutionTable) occursIn(v *TypeVariable, t Type) bool {
	t = s.Walk(t)
	switch u := t.(type) {
	case *TypeVariable:
		return u == v
	case *FunctionType:
		for _, p := range u.Params {
			if s.occursIn(v, p.Type) {
				return true
			}
		}
		if u.MethodSelf != nil && s.occursIn(v, u.MethodSelf) {
			return true
		}
		return s.occursIn(v, u.Codomain)
	case *OpenedNominalType:
		for _, tv := range u.Bindings {
			if s.occursIn(v, tv) {
				return true
			}
		}
		return false
	case *BoundGenericType:
		for _, bound := range u.Bindings {
			if s.occursIn(v, bound) {
				return true
			}
		}
		return false
	case *Metatype:
		return s.occursIn(v, u.Inner)
	case *QualifiedType:
		return s.occursIn(v, u.Inner)
	default:
		return false
	}
}

// Reify walks t to a fixed point and recursively substitutes inside every
// composite type, producing a concrete type with no remaining
// TypeVariable for a well-typed program, or ErrorType for a node that
// never got bound. Reify is idempotent: reifying an already-reified type
// returns it unchanged, since none of its components are variables.
func (ctx *CompilerContext) Reify(s *SubstitutionTable, t Type) Type {
	t = s.Walk(t)
	switch u := t.(type) {
	case *TypeVariable:
		// Never bound by the end of solving: the node it annotates never
		// had its type pinned down. Treat as ill-typed, matching spec.md
		// §8's "for any ill-typed node, node.type ≡ ErrorType" invariant.
		return ctx.ErrorType()
	case *FunctionType:
		params := make([]FunctionParam, len(u.Params))
		for i, p := range u.Params {
			params[i] = FunctionParam{Label: p.Label, Type: ctx.Reify(s, p.Type)}
		}
		codomain := ctx.Reify(s, u.Codomain)
		var self Type
		if u.MethodSelf != nil {
			self = ctx.Reify(s, u.MethodSelf)
		}
		return &FunctionType{Params: params, Codomain: codomain, Placeholders: u.Placeholders, MethodSelf: self}
	case *OpenedNominalType:
		bindings := make(map[*PlaceholderType]Type, len(u.Bindings))
		for ph, tv := range u.Bindings {
			bindings[ph] = ctx.Reify(s, tv)
		}
		return ctx.BoundGeneric(u.Nominal, bindings)
	case *BoundGenericType:
		bindings := make(map[*PlaceholderType]Type, len(u.Bindings))
		for ph, bound := range u.Bindings {
			bindings[ph] = ctx.Reify(s, bound)
		}
		return ctx.BoundGeneric(u.Generic, bindings)
	case *Metatype:
		return ctx.Metatype(ctx.Reify(s, u.Inner))
	case *QualifiedType:
		return &QualifiedType{Inner: ctx.Reify(s, u.Inner), Qualifiers: u.Qualifiers}
	default:
		return u
	}
}
