// Package subst implements shadowing-respecting substitution of a single
// variable by a term, grounded on the teacher's
// internal/typesystem/subst.go free-function substitution walker
// (adapted here from de Bruijn shifting back to spec.md's named-binder
// shadowing rule: a binder that rebinds the substituted name stops the
// substitution from descending into its own scope, since the occurrence
// there refers to the binder, not the outer variable).
package subst

import "github.com/cicore/kernel/internal/term"

// Subst returns t with every free occurrence of name replaced by repl.
// Binders that rebind name shadow it for their own scope: substitution
// does not descend past them. Binders are never renamed, so a binder
// whose name is free in repl captures that variable; callers keep such
// names distinct.
func Subst(t term.Term, name string, repl term.Term) term.Term {
	switch n := t.(type) {
	case nil:
		return nil
	case *term.Var:
		if n.Name == name {
			return repl
		}
		return n
	case *term.Sort:
		return n
	case *term.Product:
		varTy := Subst(n.VarTy, name, repl)
		if n.Var == name {
			return &term.Product{Var: n.Var, VarTy: varTy, ResultTy: n.ResultTy}
		}
		return &term.Product{Var: n.Var, VarTy: varTy, ResultTy: Subst(n.ResultTy, name, repl)}
	case *term.Lambda:
		varTy := Subst(n.VarTy, name, repl)
		if n.Var == name {
			return &term.Lambda{Var: n.Var, VarTy: varTy, Body: n.Body}
		}
		return &term.Lambda{Var: n.Var, VarTy: varTy, Body: Subst(n.Body, name, repl)}
	case *term.App:
		return &term.App{Fn: Subst(n.Fn, name, repl), Arg: Subst(n.Arg, name, repl)}
	case *term.IndRef:
		return n
	case *term.ConRef:
		return n
	case *term.Match:
		scrutinee := Subst(n.Scrutinee, name, repl)

		ret := n.Return
		if n.As != name && !containsStr(n.Indices, name) {
			ret = Subst(n.Return, name, repl)
		}

		arms := make([]term.Arm, len(n.Arms))
		for i, arm := range n.Arms {
			if containsStr(arm.Vars, name) {
				arms[i] = arm
				continue
			}
			arms[i] = term.Arm{Con: arm.Con, Vars: arm.Vars, Result: Subst(arm.Result, name, repl)}
		}
		return &term.Match{Scrutinee: scrutinee, As: n.As, Indices: n.Indices, Return: ret, Arms: arms}
	case *term.Fix:
		// Self is bound in Body only, never in Params or Return (those are
		// evaluated before Self exists), so a substitution for Self skips
		// only Body, not the whole node.
		params := make(term.Parameters, len(n.Params))
		shadowed := false
		for i, p := range n.Params {
			if shadowed {
				params[i] = p
				continue
			}
			params[i] = term.Param{Name: p.Name, Ty: Subst(p.Ty, name, repl)}
			if p.Name == name {
				shadowed = true
			}
		}
		ret := n.Return
		if !shadowed {
			ret = Subst(n.Return, name, repl)
		}
		body := n.Body
		if !shadowed && n.Self != name {
			body = Subst(n.Body, name, repl)
		}
		return &term.Fix{Self: n.Self, Params: params, Return: ret, Body: body}
	case *term.Annot:
		return &term.Annot{Term: Subst(n.Term, name, repl), Ty: Subst(n.Ty, name, repl)}
	case *term.Axiom:
		return &term.Axiom{Ty: Subst(n.Ty, name, repl)}
	case *term.Hole:
		return n
	default:
		return t
	}
}

func containsStr(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
