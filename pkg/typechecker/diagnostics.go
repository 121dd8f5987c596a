package typechecker

import (
	"fmt"

	"semcore/pkg/ast"
)

// Severity distinguishes hard failures from advisory notes; the core only
// ever raises Error today but the type exists so a future lint pass has
// somewhere to put warnings without changing the Diagnostic shape.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// DiagnosticKind enumerates the error taxonomy of spec.md §6/§7.
type DiagnosticKind string

const (
	DuplicateDeclaration        DiagnosticKind = "duplicateDeclaration"
	InvalidRedeclaration        DiagnosticKind = "invalidRedeclaration"
	InvalidTypeIdentifier       DiagnosticKind = "invalidTypeIdentifier"
	InvalidQualifierCombination DiagnosticKind = "invalidQualifierCombination"
	NonGenericType              DiagnosticKind = "nonGenericType"
	SuperfluousSpecialization   DiagnosticKind = "superfluousSpecialization"
	UndefinedSymbol             DiagnosticKind = "undefinedSymbol"
	UnsolvableConstraint        DiagnosticKind = "unsolvableConstraint"
)

// UnsolvableCause refines UnsolvableConstraint per spec.md §7.
type UnsolvableCause string

const (
	CauseMismatch        UnsolvableCause = "mismatch"
	CauseAmbiguous       UnsolvableCause = "ambiguous"
	CauseNoViableOverload UnsolvableCause = "noViableOverload"
)

// Diagnostic is a flat, range-anchored message. The core never panics or
// returns a Go error for a recoverable semantic problem (see SPEC_FULL.md
// §2); every one of those becomes one of these, appended to the context's
// sink, and the pass continues.
type Diagnostic struct {
	Severity Severity
	Kind     DiagnosticKind
	Cause    UnsolvableCause
	Message  string
	Range    ast.Range
	Node     ast.Node
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Kind)
}

func newDiagnostic(kind DiagnosticKind, node ast.Node, format string, args ...any) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
	}
	if node != nil {
		d.Range = node.SourceRange()
	}
	return d
}

func newUnsolvable(cause UnsolvableCause, node ast.Node, format string, args ...any) Diagnostic {
	d := newDiagnostic(UnsolvableConstraint, node, format, args...)
	d.Cause = cause
	return d
}
