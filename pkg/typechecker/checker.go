package typechecker

import (
	"fmt"

	"semcore/pkg/ast"
)

// TypeCheck is the single exported entry point: run the constraint
// generator over module's two passes, then the dispatcher, and return the
// (mutated in place) module alongside whatever diagnostics either stage
// raised. module is returned for convenience; callers never get a copy,
// since every Node's resolved-type slot is written through a pointer. The
// error return is reserved for programmer-error inputs like a nil module;
// every recoverable semantic problem becomes a Diagnostic instead.
func TypeCheck(module *ast.Module, ctx *CompilerContext) (*ast.Module, []Diagnostic, error) {
	if module == nil {
		return nil, nil, fmt.Errorf("typechecker: module is nil")
	}

	builtins := NewBuiltinScope(ctx)
	gen := NewGenerator(ctx, builtins)
	subst := gen.CheckModule(module)

	NewDispatcher(ctx, subst).Run(module)

	return module, ctx.Diagnostics, nil
}
