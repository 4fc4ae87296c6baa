// Package kernelerr is the kernel's single error vocabulary: one struct per
// error kind from spec.md §7, each carrying the terms involved so a driver
// can render a diagnostic, grounded on internal/typesystem/error.go's
// SymbolNotFoundError shape (a struct, an Error() string, and a
// NewXxxError constructor), repeated once per kind.
package kernelerr

import (
	"fmt"
	"strings"

	"github.com/cicore/kernel/internal/term"
)

// UnboundError reports a variable, inductive, or constructor name missing
// from the context or registry.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string { return fmt.Sprintf("unbound: %s", e.Name) }

func NewUnboundError(name string) *UnboundError { return &UnboundError{Name: name} }

// MismatchError reports two types failing compare_terms.
type MismatchError struct {
	Expected term.Term
	Got      term.Term
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", term.Print(e.Expected), term.Print(e.Got))
}

func NewMismatchError(expected, got term.Term) *MismatchError {
	return &MismatchError{Expected: expected, Got: got}
}

// NotAProductError reports an application whose head's type does not
// reduce to a Product.
type NotAProductError struct {
	Ty term.Term
}

func (e *NotAProductError) Error() string {
	return fmt.Sprintf("not a product type: %s", term.Print(e.Ty))
}

func NewNotAProductError(ty term.Term) *NotAProductError { return &NotAProductError{Ty: ty} }

// NotASortError reports a position that required a sort but produced
// something else.
type NotASortError struct {
	Ty term.Term
}

func (e *NotASortError) Error() string {
	return fmt.Sprintf("not a sort: %s", term.Print(e.Ty))
}

func NewNotASortError(ty term.Term) *NotASortError { return &NotASortError{Ty: ty} }

// ArityShapeError reports an inductive arity that is not a chain of
// Products ending in a Sort.
type ArityShapeError struct {
	Inductive string
	Arity     term.Term
}

func (e *ArityShapeError) Error() string {
	return fmt.Sprintf("inductive %s: arity %s is not a product chain ending in a sort", e.Inductive, term.Print(e.Arity))
}

func NewArityShapeError(ind string, arity term.Term) *ArityShapeError {
	return &ArityShapeError{Inductive: ind, Arity: arity}
}

// BadConstructorSpineError reports a constructor type (or a match
// scrutinee's type) that does not end in its inductive applied to exactly
// its parameters and arity-saturating indices.
type BadConstructorSpineError struct {
	Inductive   string
	Constructor string // "" when the spine in question is a match scrutinee, not a constructor
	Ty          term.Term
}

func (e *BadConstructorSpineError) Error() string {
	if e.Inductive == "" {
		return fmt.Sprintf("%s is not headed by a declared inductive", term.Print(e.Ty))
	}
	if e.Constructor == "" {
		return fmt.Sprintf("%s does not have %s applied to its parameters and indices", term.Print(e.Ty), e.Inductive)
	}
	return fmt.Sprintf("constructor %s::%s: %s does not end in %s applied to its parameters and indices",
		e.Inductive, e.Constructor, term.Print(e.Ty), e.Inductive)
}

func NewBadConstructorSpineError(ind, con string, ty term.Term) *BadConstructorSpineError {
	return &BadConstructorSpineError{Inductive: ind, Constructor: con, Ty: ty}
}

// NonExhaustiveError reports a Match whose arms miss one or more
// constructors of the scrutinee's inductive.
type NonExhaustiveError struct {
	Inductive string
	Missing   []string
}

func (e *NonExhaustiveError) Error() string {
	return fmt.Sprintf("match on %s is missing constructors: %s", e.Inductive, strings.Join(e.Missing, ", "))
}

func NewNonExhaustiveError(ind string, missing []string) *NonExhaustiveError {
	return &NonExhaustiveError{Inductive: ind, Missing: missing}
}

// DuplicateError reports a Match covering one constructor twice, or a
// re-declaration of an inductive, constructor, or other name.
type DuplicateError struct {
	Kind string
	Name string
}

func (e *DuplicateError) Error() string { return fmt.Sprintf("duplicate %s: %s", e.Kind, e.Name) }

func NewDuplicateError(kind, name string) *DuplicateError {
	return &DuplicateError{Kind: kind, Name: name}
}

// HoleInferError reports Infer demanded on a Hole.
type HoleInferError struct {
	Tag string
}

func (e *HoleInferError) Error() string { return fmt.Sprintf("cannot infer type of hole %q", e.Tag) }

func NewHoleInferError(tag string) *HoleInferError { return &HoleInferError{Tag: tag} }

// GuardFailureError reports the positivity or fixpoint guard hook
// rejecting a declaration.
type GuardFailureError struct {
	Subject string
	Reason  string
}

func (e *GuardFailureError) Error() string {
	return fmt.Sprintf("%s failed guard/positivity check: %s", e.Subject, e.Reason)
}

func NewGuardFailureError(subject, reason string) *GuardFailureError {
	return &GuardFailureError{Subject: subject, Reason: reason}
}

// FuelExhaustedError reports normalization exceeding its step budget,
// standing in for a non-terminating reduction in the absence of the
// guard-condition checker spec.md leaves as a hook.
type FuelExhaustedError struct {
	Term term.Term
}

func (e *FuelExhaustedError) Error() string {
	return fmt.Sprintf("normalization fuel exhausted reducing %s", term.Print(e.Term))
}

func NewFuelExhaustedError(t term.Term) *FuelExhaustedError { return &FuelExhaustedError{Term: t} }

// RecursionDepthError reports Infer/Check's own call depth exceeding
// config.Config.MaxRecursionDepth, independent of normalization's fuel
// budget, so a pathological term is rejected before it can exhaust the Go
// stack.
type RecursionDepthError struct {
	Term term.Term
}

func (e *RecursionDepthError) Error() string {
	return fmt.Sprintf("type checker recursion depth exceeded at %s", term.Print(e.Term))
}

func NewRecursionDepthError(t term.Term) *RecursionDepthError { return &RecursionDepthError{Term: t} }
