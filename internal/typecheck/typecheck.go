// Package typecheck implements the kernel's bidirectional Infer/Check
// pair, grounded on the teacher's internal/typesystem/checker.go
// mutually-recursive inferType/checkType functions (one free function per
// term shape, dispatched by a type switch, exactly mirroring
// internal/term's own redesign away from per-type methods).
package typecheck

import (
	"github.com/cicore/kernel/internal/config"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/kernelerr"
	"github.com/cicore/kernel/internal/normalize"
	"github.com/cicore/kernel/internal/subst"
	"github.com/cicore/kernel/internal/term"
	"github.com/cicore/kernel/internal/wf"
)

// Infer computes t's type under ctx, or fails with one of the error kinds
// in internal/kernelerr.
func Infer(ctx *context.Context, cfg config.Config, t term.Term) (term.Term, error) {
	return inferAt(ctx, cfg, t, 0)
}

// Check verifies that t has type expected under ctx.
func Check(ctx *context.Context, cfg config.Config, t term.Term, expected term.Term) error {
	return checkAt(ctx, cfg, t, expected, 0)
}

// depthCheck rejects a call once depth exceeds cfg.MaxRecursionDepth,
// mirroring the teacher's p.depth++/defer p.depth-- guard but as a plain
// threaded counter, since Infer/Check are free functions rather than
// methods on a stateful receiver.
func depthCheck(cfg config.Config, t term.Term, depth int) error {
	if depth > cfg.MaxRecursionDepth {
		return kernelerr.NewRecursionDepthError(t)
	}
	return nil
}

func inferAt(ctx *context.Context, cfg config.Config, t term.Term, depth int) (term.Term, error) {
	if err := depthCheck(cfg, t, depth); err != nil {
		return nil, err
	}
	switch n := t.(type) {
	case *term.Var:
		return inferVar(ctx, cfg, n, depth)
	case *term.Sort:
		return inferSort(cfg, n), nil
	case *term.Product:
		return inferProduct(ctx, cfg, n, depth)
	case *term.Lambda:
		return inferLambda(ctx, cfg, n, depth)
	case *term.App:
		return inferApp(ctx, cfg, n, depth)
	case *term.IndRef:
		return inferIndRef(ctx, n)
	case *term.ConRef:
		return inferConRef(ctx, n)
	case *term.Match:
		return inferMatch(ctx, cfg, n, depth)
	case *term.Fix:
		return inferFix(ctx, cfg, n, depth)
	case *term.Annot:
		return inferAnnot(ctx, cfg, n, depth)
	case *term.Axiom:
		return inferAxiom(ctx, cfg, n, depth)
	case *term.Hole:
		return nil, kernelerr.NewHoleInferError(n.Tag)
	default:
		return nil, kernelerr.NewUnboundError("<unrecognized term>")
	}
}

func checkAt(ctx *context.Context, cfg config.Config, t term.Term, expected term.Term, depth int) error {
	if err := depthCheck(cfg, t, depth); err != nil {
		return err
	}
	if h, ok := t.(*term.Hole); ok {
		return kernelerr.NewHoleInferError(h.Tag)
	}
	if lam, ok := t.(*term.Lambda); ok {
		return checkLambda(ctx, cfg, lam, expected, depth)
	}
	inferred, err := inferAt(ctx, cfg, t, depth+1)
	if err != nil {
		return err
	}
	eq, err := normalize.Compare(ctx, inferred, expected, cfg.DefaultFuel)
	if err != nil {
		return err
	}
	if !eq {
		return kernelerr.NewMismatchError(expected, inferred)
	}
	return nil
}

func checkLambda(ctx *context.Context, cfg config.Config, lam *term.Lambda, expected term.Term, depth int) error {
	expW, err := normalize.Normalize(ctx, expected, normalize.WHNF, cfg.DefaultFuel)
	if err != nil {
		return err
	}
	prod, ok := expW.(*term.Product)
	if !ok {
		return kernelerr.NewNotAProductError(expW)
	}
	eq, err := normalize.Compare(ctx, lam.VarTy, prod.VarTy, cfg.DefaultFuel)
	if err != nil {
		return err
	}
	if !eq {
		return kernelerr.NewMismatchError(prod.VarTy, lam.VarTy)
	}
	expectedBody := subst.Subst(prod.ResultTy, prod.Var, &term.Var{Name: lam.Var})
	bodyCtx := ctx.ExtendTy(lam.Var, lam.VarTy)
	return checkAt(bodyCtx, cfg, lam.Body, expectedBody, depth+1)
}

// inferAsSort infers ty's own type and demands it reduce to a Sort,
// returning that Sort. Used everywhere a binder's declared type must
// itself classify as a type.
func inferAsSort(ctx *context.Context, cfg config.Config, ty term.Term, depth int) (*term.Sort, error) {
	k, err := inferAt(ctx, cfg, ty, depth+1)
	if err != nil {
		return nil, err
	}
	kw, err := normalize.Normalize(ctx, k, normalize.WHNF, cfg.DefaultFuel)
	if err != nil {
		return nil, err
	}
	s, ok := kw.(*term.Sort)
	if !ok {
		return nil, kernelerr.NewNotASortError(k)
	}
	return s, nil
}

// inferVar is the three-way variable rule: a declared typing wins, a
// definition's type is recovered by inferring its body, and anything else
// is unbound.
func inferVar(ctx *context.Context, cfg config.Config, n *term.Var, depth int) (term.Term, error) {
	if ty, ok := ctx.LookupTy(n.Name); ok {
		return ty, nil
	}
	if def, ok := ctx.LookupDef(n.Name); ok {
		return inferAt(ctx, cfg, def, depth+1)
	}
	return nil, kernelerr.NewUnboundError(n.Name)
}

// inferSort implements Prop : Type_0 in both modes. Type_i collapses to
// Type_0 by default (the admittedly Girard-open rule the kernel's rule
// table specifies); under PredicativeUniverses it is the stratified
// Type_i : Type_{i+1} instead.
func inferSort(cfg config.Config, n *term.Sort) term.Term {
	if n.Kind == term.TypeUniverse && cfg.PredicativeUniverses {
		return &term.Sort{Kind: term.TypeUniverse, Level: n.Level + 1}
	}
	return &term.Sort{Kind: term.TypeUniverse, Level: 0}
}

// productSort computes the sort of forall x:dom, res (x:dom |- res:res).
// A Prop result keeps the whole product in Prop in both modes
// (impredicative Prop). Otherwise the default mode gives the product the
// result's own sort, and PredicativeUniverses takes the max of the two
// Type levels, with a Prop domain counting as level 0.
func productSort(dom, res term.Sort, predicative bool) term.Sort {
	if res.Kind == term.Prop {
		return term.Sort{Kind: term.Prop}
	}
	if !predicative {
		return res
	}
	level := res.Level
	if dom.Kind == term.TypeUniverse && dom.Level > level {
		level = dom.Level
	}
	return term.Sort{Kind: term.TypeUniverse, Level: level}
}

func inferProduct(ctx *context.Context, cfg config.Config, n *term.Product, depth int) (term.Term, error) {
	domSort, err := inferAsSort(ctx, cfg, n.VarTy, depth)
	if err != nil {
		return nil, err
	}
	bodyCtx := ctx.ExtendTy(n.Var, n.VarTy)
	resSort, err := inferAsSort(bodyCtx, cfg, n.ResultTy, depth+1)
	if err != nil {
		return nil, err
	}
	result := productSort(*domSort, *resSort, cfg.PredicativeUniverses)
	return &result, nil
}

func inferLambda(ctx *context.Context, cfg config.Config, n *term.Lambda, depth int) (term.Term, error) {
	if _, err := inferAsSort(ctx, cfg, n.VarTy, depth); err != nil {
		return nil, err
	}
	bodyCtx := ctx.ExtendTy(n.Var, n.VarTy)
	bodyTy, err := inferAt(bodyCtx, cfg, n.Body, depth+1)
	if err != nil {
		return nil, err
	}
	return &term.Product{Var: n.Var, VarTy: n.VarTy, ResultTy: bodyTy}, nil
}

func inferApp(ctx *context.Context, cfg config.Config, n *term.App, depth int) (term.Term, error) {
	fnTy, err := inferAt(ctx, cfg, n.Fn, depth+1)
	if err != nil {
		return nil, err
	}
	fnTyW, err := normalize.Normalize(ctx, fnTy, normalize.WHNF, cfg.DefaultFuel)
	if err != nil {
		return nil, err
	}
	prod, ok := fnTyW.(*term.Product)
	if !ok {
		return nil, kernelerr.NewNotAProductError(fnTyW)
	}
	if err := checkAt(ctx, cfg, n.Arg, prod.VarTy, depth+1); err != nil {
		return nil, err
	}
	return subst.Subst(prod.ResultTy, prod.Var, n.Arg), nil
}

func inferIndRef(ctx *context.Context, n *term.IndRef) (term.Term, error) {
	ind, ok := ctx.Inductives().Lookup(n.Name)
	if !ok {
		return nil, kernelerr.NewUnboundError(n.Name)
	}
	return ind.Params.WrapWithProducts(ind.Arity), nil
}

func inferConRef(ctx *context.Context, n *term.ConRef) (term.Term, error) {
	ind, ok := ctx.Inductives().Lookup(n.Ind)
	if !ok {
		return nil, kernelerr.NewUnboundError(n.Ind)
	}
	con, ok := ind.Lookup(n.Con)
	if !ok {
		return nil, kernelerr.NewUnboundError(n.Ind + "::" + n.Con)
	}
	return ind.ConstructorType(con), nil
}

func inferFix(ctx *context.Context, cfg config.Config, n *term.Fix, depth int) (term.Term, error) {
	fixTy := n.Params.WrapWithProducts(n.Return)
	innerCtx := ctx
	for _, p := range n.Params {
		if _, err := inferAsSort(innerCtx, cfg, p.Ty, depth); err != nil {
			return nil, err
		}
		innerCtx = innerCtx.ExtendTy(p.Name, p.Ty)
	}
	if _, err := inferAsSort(innerCtx, cfg, n.Return, depth); err != nil {
		return nil, err
	}
	bodyCtx := innerCtx.ExtendTy(n.Self, fixTy)
	if err := checkAt(bodyCtx, cfg, n.Body, n.Return, depth+1); err != nil {
		return nil, err
	}
	if !wf.CheckGuard(n.Self, n.Body, cfg.StrictGuard) {
		return nil, kernelerr.NewGuardFailureError(n.Self, "recursive call is used as a first-class value, not only applied")
	}
	return fixTy, nil
}

func inferAnnot(ctx *context.Context, cfg config.Config, n *term.Annot, depth int) (term.Term, error) {
	if _, err := inferAsSort(ctx, cfg, n.Ty, depth); err != nil {
		return nil, err
	}
	if err := checkAt(ctx, cfg, n.Term, n.Ty, depth+1); err != nil {
		return nil, err
	}
	return n.Ty, nil
}

func inferAxiom(ctx *context.Context, cfg config.Config, n *term.Axiom, depth int) (term.Term, error) {
	if _, err := inferAsSort(ctx, cfg, n.Ty, depth); err != nil {
		return nil, err
	}
	return n.Ty, nil
}
