// Package normalize reduces terms to weak-head or full call-by-value
// normal form, grounded on the teacher's internal/vm/eval.go step-based
// evaluator (a fuel-bounded reduction loop sharing one step function
// between a lazy weak-head mode and a fully-forcing mode) adapted from
// the teacher's dynamic-language semantics to beta/delta/iota/fix
// reduction over typed terms.
package normalize

import (
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/kernelerr"
	"github.com/cicore/kernel/internal/subst"
	"github.com/cicore/kernel/internal/term"
)

// Strategy selects how far Normalize reduces.
type Strategy int

const (
	// WHNF reduces only the head, stopping as soon as further reduction
	// would require looking inside a Lambda, Product, Fix, or a
	// constructor-headed applicative spine's arguments.
	WHNF Strategy = iota
	// CBV additionally normalizes every subterm, producing a full normal
	// form.
	CBV
)

// normalizer threads a shared, mutable step budget through a single
// Normalize call. The budget is shared, not per-subtree, so a term with
// many small reducible parts can't evade the bound by spreading its work
// across them.
type normalizer struct {
	fuel     int
	original term.Term
}

func (n *normalizer) step() error {
	if n.fuel <= 0 {
		return kernelerr.NewFuelExhaustedError(n.original)
	}
	n.fuel--
	return nil
}

// Normalize reduces t under ctx according to strategy, stopping early
// with a FuelExhaustedError if more than fuel reduction steps are needed.
func Normalize(ctx *context.Context, t term.Term, strategy Strategy, fuel int) (term.Term, error) {
	n := &normalizer{fuel: fuel, original: t}
	w, err := n.whnf(ctx, t)
	if err != nil {
		return nil, err
	}
	if strategy == WHNF {
		return w, nil
	}
	return n.cbv(ctx, w)
}

// whnf reduces t to weak-head normal form under ctx.
func (n *normalizer) whnf(ctx *context.Context, t term.Term) (term.Term, error) {
	for {
		switch cur := t.(type) {
		case *term.Var:
			def, ok := ctx.LookupDef(cur.Name)
			if !ok {
				return cur, nil
			}
			if err := n.step(); err != nil {
				return nil, err
			}
			t = def
		case *term.Annot:
			t = cur.Term
		case *term.App:
			head, args := term.Spine(cur)
			headW, err := n.whnf(ctx, head)
			if err != nil {
				return nil, err
			}
			reduced, did, err := n.tryReduceSpine(ctx, headW, args)
			if err != nil {
				return nil, err
			}
			if !did {
				return rebuildSpine(headW, args), nil
			}
			t = reduced
		case *term.Match:
			reduced, did, err := n.tryReduceMatch(ctx, cur)
			if err != nil {
				return nil, err
			}
			if !did {
				return cur, nil
			}
			t = reduced
		default:
			return cur, nil
		}
	}
}

// tryReduceSpine attempts one beta or fix-unfold step given an
// already-whnf head applied to args (in original left-to-right order).
func (n *normalizer) tryReduceSpine(ctx *context.Context, head term.Term, args []term.Term) (term.Term, bool, error) {
	switch h := head.(type) {
	case *term.Lambda:
		if len(args) == 0 {
			return nil, false, nil
		}
		if err := n.step(); err != nil {
			return nil, false, err
		}
		result := subst.Subst(h.Body, h.Var, args[0])
		return rebuildSpine(result, args[1:]), true, nil
	case *term.Fix:
		if len(args) < len(h.Params) {
			return nil, false, nil
		}
		if err := n.step(); err != nil {
			return nil, false, err
		}
		body := h.Body
		for i, p := range h.Params {
			body = subst.Subst(body, p.Name, args[i])
		}
		extCtx := ctx.ExtendDef(h.Self, h)
		reducedHead, err := n.whnf(extCtx, body)
		if err != nil {
			return nil, false, err
		}
		// Self is bound only inside extCtx; any occurrence the head
		// reduction left behind (e.g. under a constructor) becomes the
		// Fix node itself so it can still unfold outside that context.
		reducedHead = subst.Subst(reducedHead, h.Self, h)
		return rebuildSpine(reducedHead, args[len(h.Params):]), true, nil
	default:
		return nil, false, nil
	}
}

// tryReduceMatch attempts one iota step: reducing m's scrutinee to
// constructor-headed form and substituting the matching arm.
func (n *normalizer) tryReduceMatch(ctx *context.Context, m *term.Match) (term.Term, bool, error) {
	scrutW, err := n.whnf(ctx, m.Scrutinee)
	if err != nil {
		return nil, false, err
	}
	head, args := term.Spine(scrutW)
	conRef, ok := head.(*term.ConRef)
	if !ok {
		return nil, false, nil
	}
	ind, ok := ctx.Inductives().Lookup(conRef.Ind)
	if !ok {
		return nil, false, kernelerr.NewUnboundError(conRef.Ind)
	}
	con, ok := ind.Lookup(conRef.Con)
	if !ok {
		return nil, false, kernelerr.NewUnboundError(conRef.Ind + "::" + conRef.Con)
	}
	var arm *term.Arm
	for i := range m.Arms {
		if m.Arms[i].Con == conRef.Con {
			arm = &m.Arms[i]
			break
		}
	}
	if arm == nil {
		return nil, false, kernelerr.NewNonExhaustiveError(conRef.Ind, []string{conRef.Con})
	}
	if len(args) < len(con.Args) {
		// Under-applied constructor head: stuck, leave the Match intact.
		return nil, false, nil
	}
	if err := n.step(); err != nil {
		return nil, false, err
	}
	conArgs := args[len(args)-len(con.Args):]
	result := arm.Result
	for i, v := range arm.Vars {
		result = subst.Subst(result, v, conArgs[i])
	}
	return result, true, nil
}

// rebuildSpine reapplies head to args in order, the inverse of
// term.Spine.
func rebuildSpine(head term.Term, args []term.Term) term.Term {
	return term.Apply(head, args...)
}

// cbv fully normalizes t by reducing it to whnf and then recursing into
// every subterm.
func (n *normalizer) cbv(ctx *context.Context, t term.Term) (term.Term, error) {
	t, err := n.whnf(ctx, t)
	if err != nil {
		return nil, err
	}
	switch cur := t.(type) {
	case *term.Var, *term.Sort, *term.IndRef, *term.ConRef, *term.Hole:
		return cur, nil
	case *term.Product:
		varTy, err := n.cbv(ctx, cur.VarTy)
		if err != nil {
			return nil, err
		}
		resultTyW, err := n.whnf(ctx.ExtendTy(cur.Var, varTy), cur.ResultTy)
		if err != nil {
			return nil, err
		}
		resultTy, err := n.cbv(ctx.ExtendTy(cur.Var, varTy), resultTyW)
		if err != nil {
			return nil, err
		}
		return &term.Product{Var: cur.Var, VarTy: varTy, ResultTy: resultTy}, nil
	case *term.Lambda:
		varTy, err := n.cbv(ctx, cur.VarTy)
		if err != nil {
			return nil, err
		}
		bodyW, err := n.whnf(ctx.ExtendTy(cur.Var, varTy), cur.Body)
		if err != nil {
			return nil, err
		}
		body, err := n.cbv(ctx.ExtendTy(cur.Var, varTy), bodyW)
		if err != nil {
			return nil, err
		}
		return &term.Lambda{Var: cur.Var, VarTy: varTy, Body: body}, nil
	case *term.App:
		fn, err := n.cbv(ctx, cur.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := n.cbv(ctx, cur.Arg)
		if err != nil {
			return nil, err
		}
		return &term.App{Fn: fn, Arg: arg}, nil
	case *term.Match:
		scrutinee, err := n.cbv(ctx, cur.Scrutinee)
		if err != nil {
			return nil, err
		}
		ret, err := n.cbv(ctx, cur.Return)
		if err != nil {
			return nil, err
		}
		arms := make([]term.Arm, len(cur.Arms))
		for i, arm := range cur.Arms {
			r, err := n.cbv(ctx, arm.Result)
			if err != nil {
				return nil, err
			}
			arms[i] = term.Arm{Con: arm.Con, Vars: arm.Vars, Result: r}
		}
		return &term.Match{Scrutinee: scrutinee, As: cur.As, Indices: cur.Indices, Return: ret, Arms: arms}, nil
	case *term.Fix:
		params := make(term.Parameters, len(cur.Params))
		c2 := ctx
		for i, p := range cur.Params {
			ty, err := n.cbv(c2, p.Ty)
			if err != nil {
				return nil, err
			}
			params[i] = term.Param{Name: p.Name, Ty: ty}
			c2 = c2.ExtendTy(p.Name, ty)
		}
		ret, err := n.cbv(c2, cur.Return)
		if err != nil {
			return nil, err
		}
		body, err := n.cbv(c2, cur.Body)
		if err != nil {
			return nil, err
		}
		return &term.Fix{Self: cur.Self, Params: params, Return: ret, Body: body}, nil
	case *term.Axiom:
		ty, err := n.cbv(ctx, cur.Ty)
		if err != nil {
			return nil, err
		}
		return &term.Axiom{Ty: ty}, nil
	default:
		return cur, nil
	}
}
