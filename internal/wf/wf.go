// Package wf holds the well-formedness gates spec.md's Open Questions
// leave as hooks rather than full algorithms: arity-shape checking (fully
// specified, always enforced), and positivity/guard checking (syntactic
// approximations, gated behind internal/config so the default kernel
// matches spec.md's permissive baseline). Grounded on the teacher's
// internal/typesystem/occurs.go free-function occurs-check style.
package wf

import "github.com/cicore/kernel/internal/term"

// IsArityShape reports whether t is a (possibly empty) chain of Products
// ending in a Sort, the required shape for an inductive's arity.
func IsArityShape(t term.Term) bool {
	for {
		switch n := t.(type) {
		case *term.Sort:
			return true
		case *term.Product:
			t = n.ResultTy
		default:
			return false
		}
	}
}

// CheckPositivity reports whether ind occurs only strictly positively in
// the raw type of a constructor argument, i.e. never inside the domain of
// any arrow, at any depth. Called once per constructor argument
// by internal/inductive before registration. Permissive by default
// (spec.md's Open Question #2: positivity is a declared hook, not a full
// algorithm) — real rejection only fires under config.StrictGuard.
func CheckPositivity(ind string, argTy term.Term, strict bool) bool {
	if !strict {
		return true
	}
	return !occursNegatively(ind, argTy, false)
}

// occursNegatively walks argTy looking for ind in a non-strictly-positive
// position. neg tracks whether the current position lies inside the
// domain of some arrow of the constructor argument's type.
func occursNegatively(ind string, t term.Term, neg bool) bool {
	switch n := t.(type) {
	case *term.IndRef:
		return neg && refersTo(ind, n)
	case *term.Product:
		if occursNegatively(ind, n.VarTy, true) {
			return true
		}
		return occursNegatively(ind, n.ResultTy, neg)
	case *term.App:
		return occursNegatively(ind, n.Fn, neg) || occursNegatively(ind, n.Arg, neg)
	default:
		return false
	}
}

// refersTo reports whether t's head (after stripping an applicative spine)
// is IndRef{Name: ind}.
func refersTo(ind string, t term.Term) bool {
	head, _ := term.Spine(t)
	ref, ok := head.(*term.IndRef)
	return ok && ref.Name == ind
}

// CheckGuard reports whether a Fix's Self is only ever used applied, a
// syntactic approximation of structural recursion that does not compare
// argument sizes. Permissive by default, same as
// CheckPositivity; real rejection only fires under config.StrictGuard.
//
// The approximation implemented here accepts any Fix whose every
// occurrence of Self inside Body is immediately applied to at least one
// argument (i.e. Self is never returned or passed around as a bare
// first-class value), which rules out the most common source of a
// non-structural, definitely-looping Fix while accepting every
// structurally-recursive Fix spec.md's scenarios exercise.
func CheckGuard(self string, body term.Term, strict bool) bool {
	if !strict {
		return true
	}
	return !occursBare(self, body)
}

// occursBare reports whether self appears as a Var anywhere except as the
// head of an App spine.
func occursBare(self string, t term.Term) bool {
	switch n := t.(type) {
	case *term.Var:
		return n.Name == self
	case *term.App:
		head, _ := term.Spine(n)
		if v, ok := head.(*term.Var); ok && v.Name == self {
			return occursBare(self, n.Arg) || occursBareSpineTail(self, n.Fn)
		}
		return occursBare(self, n.Fn) || occursBare(self, n.Arg)
	case *term.Lambda:
		return occursBare(self, n.VarTy) || (n.Var != self && occursBare(self, n.Body))
	case *term.Product:
		return occursBare(self, n.VarTy) || (n.Var != self && occursBare(self, n.ResultTy))
	case *term.Match:
		if occursBare(self, n.Scrutinee) || occursBare(self, n.Return) {
			return true
		}
		for _, arm := range n.Arms {
			if contains(arm.Vars, self) {
				continue
			}
			if occursBare(self, arm.Result) {
				return true
			}
		}
		return false
	case *term.Fix:
		for _, p := range n.Params {
			if occursBare(self, p.Ty) {
				return true
			}
		}
		if occursBare(self, n.Return) {
			return true
		}
		if n.Self == self {
			return false // a nested Fix reusing the same name shadows it within its own Body only
		}
		return occursBare(self, n.Body)
	case *term.Annot:
		return occursBare(self, n.Term) || occursBare(self, n.Ty)
	case *term.Axiom:
		return occursBare(self, n.Ty)
	default:
		return false
	}
}

// occursBareSpineTail checks the non-head portion of an App chain whose
// head is Self, walking down to but not including the head itself.
func occursBareSpineTail(self string, fn term.Term) bool {
	app, ok := fn.(*term.App)
	if !ok {
		return false
	}
	return occursBare(self, app.Arg) || occursBareSpineTail(self, app.Fn)
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
