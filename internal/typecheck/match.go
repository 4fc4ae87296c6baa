package typecheck

import (
	"github.com/cicore/kernel/internal/config"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/kernelerr"
	"github.com/cicore/kernel/internal/normalize"
	"github.com/cicore/kernel/internal/subst"
	"github.com/cicore/kernel/internal/term"
)

// inferMatch implements dependent case analysis: every arm is checked
// against the motive (Return) specialized to that arm's constructor, and
// the match's own inferred type is Return specialized to the actual
// scrutinee and its actual indices. A literal Hole in Return defaults to
// the first arm's own inferred type instead (a fixed, non-dependent
// result), the one place spec.md licenses a Hole to typecheck at all.
func inferMatch(ctx *context.Context, cfg config.Config, n *term.Match, depth int) (term.Term, error) {
	scrTy, err := inferAt(ctx, cfg, n.Scrutinee, depth+1)
	if err != nil {
		return nil, err
	}
	scrTyW, err := normalize.Normalize(ctx, scrTy, normalize.WHNF, cfg.DefaultFuel)
	if err != nil {
		return nil, err
	}
	head, args := term.Spine(scrTyW)
	indRef, ok := head.(*term.IndRef)
	if !ok {
		return nil, kernelerr.NewBadConstructorSpineError("", "", scrTyW)
	}
	ind, ok := ctx.Inductives().Lookup(indRef.Name)
	if !ok {
		return nil, kernelerr.NewUnboundError(indRef.Name)
	}
	numParams := len(ind.Params)
	if len(args) != numParams+ind.IndexCount() {
		return nil, kernelerr.NewBadConstructorSpineError(ind.Name, "", scrTyW)
	}
	paramVals := args[:numParams]
	indexVals := args[numParams:]
	if len(n.Indices) != len(indexVals) {
		return nil, kernelerr.NewArityShapeError(ind.Name, scrTyW)
	}

	if err := checkArmsCoverage(ind, n.Arms); err != nil {
		return nil, err
	}

	_, returnIsHole := n.Return.(*term.Hole)
	if returnIsHole && len(n.Arms) == 0 {
		// No arm to default the Hole return type from.
		return nil, kernelerr.NewNonExhaustiveError(ind.Name, nil)
	}
	if !returnIsHole {
		if err := checkMotiveSort(ctx, cfg, ind, n, paramVals, indexVals, depth); err != nil {
			return nil, err
		}
	}

	var defaultedTy term.Term
	for i, arm := range n.Arms {
		con, _ := ind.Lookup(arm.Con)
		armCtx, err := extendArmCtx(ctx, ind, con, paramVals, arm.Vars)
		if err != nil {
			return nil, err
		}
		if returnIsHole {
			if i == 0 {
				defaultedTy, err = inferAt(armCtx, cfg, arm.Result, depth+1)
				if err != nil {
					return nil, err
				}
				continue
			}
			if err := checkAt(armCtx, cfg, arm.Result, defaultedTy, depth+1); err != nil {
				return nil, err
			}
			continue
		}
		expected := specializeReturn(n.Return, n.As, n.Indices, ind, con, paramVals, arm.Vars)
		if err := checkAt(armCtx, cfg, arm.Result, expected, depth+1); err != nil {
			return nil, err
		}
	}

	if returnIsHole {
		return defaultedTy, nil
	}

	finalTy := n.Return
	if n.As != "" {
		finalTy = subst.Subst(finalTy, n.As, n.Scrutinee)
	}
	for i, idxName := range n.Indices {
		if idxName == "" {
			continue
		}
		finalTy = subst.Subst(finalTy, idxName, indexVals[i])
	}
	return finalTy, nil
}

// checkMotiveSort verifies Return classifies as a type under its own
// binders: each named index at the corresponding arity domain, and As at
// the scrutinee's family applied to the parameters and those indices. A
// blank index name contributes the scrutinee's concrete index value to the
// later domains instead of a binder.
func checkMotiveSort(ctx *context.Context, cfg config.Config, ind *inductive.Inductive, n *term.Match, paramVals, indexVals []term.Term, depth int) error {
	motiveCtx := ctx
	arity := instantiateParams(ind, ind.Arity, paramVals)
	idxTerms := make([]term.Term, len(n.Indices))
	for i, idxName := range n.Indices {
		prod, ok := arity.(*term.Product)
		if !ok {
			return kernelerr.NewArityShapeError(ind.Name, ind.Arity)
		}
		var idxTerm term.Term
		if idxName == "" {
			idxTerm = indexVals[i]
		} else {
			motiveCtx = motiveCtx.ExtendTy(idxName, prod.VarTy)
			idxTerm = &term.Var{Name: idxName}
		}
		idxTerms[i] = idxTerm
		arity = subst.Subst(prod.ResultTy, prod.Var, idxTerm)
	}
	if n.As != "" {
		asTy := term.Apply(&term.IndRef{Name: ind.Name}, append(append([]term.Term{}, paramVals...), idxTerms...)...)
		motiveCtx = motiveCtx.ExtendTy(n.As, asTy)
	}
	_, err := inferAsSort(motiveCtx, cfg, n.Return, depth)
	return err
}

// checkArmsCoverage verifies n.Arms names exactly ind's constructors once
// each, in any order.
func checkArmsCoverage(ind *inductive.Inductive, arms []term.Arm) error {
	seen := make(map[string]bool, len(arms))
	for _, a := range arms {
		if seen[a.Con] {
			return kernelerr.NewDuplicateError("match arm", a.Con)
		}
		seen[a.Con] = true
		if _, ok := ind.Lookup(a.Con); !ok {
			return kernelerr.NewUnboundError(ind.Name + "::" + a.Con)
		}
	}
	var missing []string
	for _, name := range ind.ConstructorNames() {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return kernelerr.NewNonExhaustiveError(ind.Name, missing)
	}
	return nil
}

// extendArmCtx binds an arm's pattern variables to the constructor
// argument types, instantiated with the scrutinee's actual parameter
// values and with earlier pattern variables substituted for dependent
// later arguments.
func extendArmCtx(ctx *context.Context, ind *inductive.Inductive, con inductive.Constructor, paramVals []term.Term, vars []string) (*context.Context, error) {
	if len(vars) != len(con.Args) {
		return nil, kernelerr.NewBadConstructorSpineError(ind.Name, con.Name, term.Apply(&term.ConRef{Ind: ind.Name, Con: con.Name}, term.VarsToTerms(vars)...))
	}
	armCtx := ctx
	for j, a := range con.Args {
		ty := instantiateParams(ind, a.Ty, paramVals)
		for k := 0; k < j; k++ {
			ty = subst.Subst(ty, con.Args[k].Name, &term.Var{Name: vars[k]})
		}
		armCtx = armCtx.ExtendTy(vars[j], ty)
	}
	return armCtx, nil
}

// specializeReturn computes the expected type for one arm: motive's As
// binder replaced by this arm's reconstructed scrutinee, and its Indices
// binders replaced by this constructor's actual index expressions.
func specializeReturn(ret term.Term, as string, indexNames []string, ind *inductive.Inductive, con inductive.Constructor, paramVals []term.Term, vars []string) term.Term {
	if as != "" {
		reconstructed := term.Apply(&term.ConRef{Ind: ind.Name, Con: con.Name}, append(append([]term.Term{}, paramVals...), term.VarsToTerms(vars)...)...)
		ret = subst.Subst(ret, as, reconstructed)
	}
	for i, idxName := range indexNames {
		if idxName == "" || i >= len(con.Indices) {
			continue
		}
		idx := instantiateParams(ind, con.Indices[i], paramVals)
		for j, a := range con.Args {
			idx = subst.Subst(idx, a.Name, &term.Var{Name: vars[j]})
		}
		ret = subst.Subst(ret, idxName, idx)
	}
	return ret
}

// instantiateParams substitutes ind's own declared parameter names with
// their actual values from this scrutinee, inside a term written against
// ind's parameter telescope (a constructor argument type or index
// expression).
func instantiateParams(ind *inductive.Inductive, t term.Term, paramVals []term.Term) term.Term {
	for i, p := range ind.Params {
		t = subst.Subst(t, p.Name, paramVals[i])
	}
	return t
}
