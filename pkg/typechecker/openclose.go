package typechecker

// Bindings is the placeholder→type map threaded through Open and Close.
// Passing the same map into two related Open calls (a nominal and its
// constructor's function type, say) ties their shared placeholders to the
// identical fresh variable, which is how scenario 4 of spec.md §8 (the
// `Box<T>` constructor) keeps the struct's `T` and the constructor's `T`
// resolved to one variable.
type Bindings map[*PlaceholderType]Type

// Open replaces every in-scope placeholder in t with a fresh type
// variable, inserting newly-minted variables into bindings as it goes
// (spec.md §4.1).
func (ctx *CompilerContext) Open(t Type, bindings Bindings) Type {
	switch v := t.(type) {
	case *PlaceholderType:
		if existing, ok := bindings[v]; ok {
			return existing
		}
		fresh := ctx.NewTypeVariable()
		bindings[v] = fresh
		return fresh

	case *FunctionType:
		ownBindings := make(Bindings, len(v.Placeholders))
		for _, ph := range v.Placeholders {
			if _, ok := bindings[ph]; !ok {
				bindings[ph] = ctx.NewTypeVariable()
			}
			ownBindings[ph] = bindings[ph]
		}
		params := make([]FunctionParam, len(v.Params))
		for i, p := range v.Params {
			params[i] = FunctionParam{Label: p.Label, Type: ctx.Open(p.Type, bindings)}
		}
		codomain := ctx.Open(v.Codomain, bindings)
		var self Type
		if v.MethodSelf != nil {
			self = ctx.Open(v.MethodSelf, bindings)
		}
		// Opened function types are monomorphic instances, not re-interned:
		// each call site gets its own fresh FunctionType value.
		return &FunctionType{Params: params, Codomain: codomain, MethodSelf: self}

	case *NominalType:
		// A nominal with no placeholders has nothing to open; returning it
		// unchanged keeps it unifiable with its own declared type (Close
		// treats the placeholder-free case the same way).
		if len(v.Placeholders) == 0 {
			return v
		}
		openedBindings := make(map[*PlaceholderType]*TypeVariable, len(v.Placeholders))
		for _, ph := range v.Placeholders {
			if _, ok := bindings[ph]; !ok {
				bindings[ph] = ctx.NewTypeVariable()
			}
			openedBindings[ph] = bindings[ph].(*TypeVariable)
		}
		return &OpenedNominalType{Nominal: v, Bindings: openedBindings}

	case *BoundGenericType:
		rewritten := make(map[*PlaceholderType]Type, len(v.Bindings))
		for ph, bound := range v.Bindings {
			if asPlaceholder, ok := bound.(*PlaceholderType); ok {
				if _, ok := bindings[asPlaceholder]; !ok {
					bindings[asPlaceholder] = ctx.NewTypeVariable()
				}
				rewritten[ph] = bindings[asPlaceholder]
				continue
			}
			rewritten[ph] = bound
		}
		return &BoundGenericType{Generic: v.Generic, Bindings: rewritten}

	case *Metatype:
		return ctx.Metatype(ctx.Open(v.Inner, bindings))

	case *TypeVariable:
		// Engineering decision #3 (spec.md §9 open question #3): opening a
		// TypeVariable is identity, not a BoundGenericType wrapper.
		return v

	case *ErrorTy:
		return v

	default:
		return v
	}
}

// Close substitutes every placeholder in t for its entry in subs, once
// inference has pinned down concrete types for all of them. Nominal
// results are wrapped in a BoundGenericType rather than reified directly,
// so call sites retain the specialization arguments for post-dispatch
// method lookup (spec.md §4.1).
func (ctx *CompilerContext) Close(t Type, subs map[*PlaceholderType]Type) Type {
	switch v := t.(type) {
	case *PlaceholderType:
		if bound, ok := subs[v]; ok {
			return bound
		}
		return v

	case *NominalType:
		if len(v.Placeholders) == 0 {
			return v
		}
		bindings := make(map[*PlaceholderType]Type, len(v.Placeholders))
		for _, ph := range v.Placeholders {
			if bound, ok := subs[ph]; ok {
				bindings[ph] = bound
			} else {
				bindings[ph] = ph
			}
		}
		return ctx.BoundGeneric(v, bindings)

	case *OpenedNominalType:
		bindings := make(map[*PlaceholderType]Type, len(v.Bindings))
		for ph, variable := range v.Bindings {
			bindings[ph] = ctx.Close(variable, subs)
		}
		return ctx.BoundGeneric(v.Nominal, bindings)

	case *FunctionType:
		params := make([]FunctionParam, len(v.Params))
		for i, p := range v.Params {
			params[i] = FunctionParam{Label: p.Label, Type: ctx.Close(p.Type, subs)}
		}
		codomain := ctx.Close(v.Codomain, subs)
		var self Type
		if v.MethodSelf != nil {
			self = ctx.Close(v.MethodSelf, subs)
		}
		return &FunctionType{Params: params, Codomain: codomain, MethodSelf: self}

	case *BoundGenericType:
		bindings := make(map[*PlaceholderType]Type, len(v.Bindings))
		for ph, bound := range v.Bindings {
			bindings[ph] = ctx.Close(bound, subs)
		}
		return ctx.BoundGeneric(v.Generic, bindings)

	case *Metatype:
		return ctx.Metatype(ctx.Close(v.Inner, subs))

	default:
		return v
	}
}
