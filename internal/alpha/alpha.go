// Package alpha canonicalizes bound-variable names and compares terms up
// to that canonical form, grounded on the teacher's
// internal/typesystem/normalize.go renaming pass (rename-on-first-sight
// with a monotonic counter, pushing aside and restoring the old name at
// each binder) adapted from de Bruijn-style internal indices back to
// spec.md's named-binder representation.
package alpha

import (
	"strconv"

	"github.com/cicore/kernel/internal/term"
)

// canonState threads the rename map and the fresh-name counter through
// Canonicalize's recursion. Each binder push-asides its bound name's
// previous mapping (if any) for the scope of that binder's body, and
// restores it on the way back out, matching shadowing semantics exactly.
type canonState struct {
	names map[string]string
	next  int
}

// fresh mints the next canonical name, "$0", "$1", ... — a prefix no
// source-level name produced by a front end is expected to use, so
// canonical names never collide with free variables left unmapped.
func (s *canonState) fresh() string {
	n := "$" + strconv.Itoa(s.next)
	s.next++
	return n
}

// Canonicalize renames every bound variable in t to a positionally
// determined canonical name, leaving free variables (names with no
// enclosing binder) untouched. Two terms are alpha-equivalent iff their
// Canonicalize results are structurally identical.
func Canonicalize(t term.Term) term.Term {
	st := &canonState{names: make(map[string]string)}
	return st.canon(t)
}

func (s *canonState) canon(t term.Term) term.Term {
	switch n := t.(type) {
	case nil:
		return nil
	case *term.Var:
		if mapped, ok := s.names[n.Name]; ok {
			return &term.Var{Name: mapped}
		}
		return &term.Var{Name: n.Name}
	case *term.Sort:
		return &term.Sort{Kind: n.Kind, Level: n.Level}
	case *term.Product:
		varTy := s.canon(n.VarTy)
		fresh := s.fresh()
		prev, had := s.names[n.Var]
		s.names[n.Var] = fresh
		resultTy := s.canon(n.ResultTy)
		s.restore(n.Var, prev, had)
		return &term.Product{Var: fresh, VarTy: varTy, ResultTy: resultTy}
	case *term.Lambda:
		varTy := s.canon(n.VarTy)
		fresh := s.fresh()
		prev, had := s.names[n.Var]
		s.names[n.Var] = fresh
		body := s.canon(n.Body)
		s.restore(n.Var, prev, had)
		return &term.Lambda{Var: fresh, VarTy: varTy, Body: body}
	case *term.App:
		return &term.App{Fn: s.canon(n.Fn), Arg: s.canon(n.Arg)}
	case *term.IndRef:
		return &term.IndRef{Name: n.Name}
	case *term.ConRef:
		return &term.ConRef{Ind: n.Ind, Con: n.Con}
	case *term.Match:
		scrutinee := s.canon(n.Scrutinee)

		// The As and Indices binders scope over Return only; the rebuilt
		// node must carry the same fresh names Return's occurrences were
		// renamed to, or the binder link is severed.
		var restores []restoreEntry
		asFresh := n.As
		if n.As != "" {
			asFresh = s.fresh()
			prev, had := s.names[n.As]
			s.names[n.As] = asFresh
			restores = append(restores, restoreEntry{name: n.As, prev: prev, had: had})
		}
		indices := make([]string, len(n.Indices))
		for i, idx := range n.Indices {
			if idx == "" {
				continue
			}
			freshIdx := s.fresh()
			prev, had := s.names[idx]
			s.names[idx] = freshIdx
			restores = append(restores, restoreEntry{name: idx, prev: prev, had: had})
			indices[i] = freshIdx
		}
		ret := s.canon(n.Return)
		s.restoreAll(restores)

		arms := make([]term.Arm, len(n.Arms))
		for i, arm := range n.Arms {
			armRestores := make([]restoreEntry, 0, len(arm.Vars))
			freshVars := make([]string, len(arm.Vars))
			for j, v := range arm.Vars {
				fresh := s.fresh()
				prev, had := s.names[v]
				s.names[v] = fresh
				armRestores = append(armRestores, restoreEntry{name: v, prev: prev, had: had})
				freshVars[j] = fresh
			}
			result := s.canon(arm.Result)
			for _, r := range armRestores {
				s.restore(r.name, r.prev, r.had)
			}
			arms[i] = term.Arm{Con: arm.Con, Vars: freshVars, Result: result}
		}
		return &term.Match{Scrutinee: scrutinee, As: asFresh, Indices: indices, Return: ret, Arms: arms}
	case *term.Fix:
		// Self is bound only in Body, not in Params or Return (those are
		// evaluated before the recursive value exists), so it must not be
		// pushed into scope until after they're canonicalized.
		restores := make([]restoreEntry, 0, len(n.Params))
		params := make(term.Parameters, len(n.Params))
		for i, p := range n.Params {
			ty := s.canon(p.Ty)
			freshP := s.fresh()
			prev, had := s.names[p.Name]
			s.names[p.Name] = freshP
			restores = append(restores, restoreEntry{name: p.Name, prev: prev, had: had})
			params[i] = term.Param{Name: freshP, Ty: ty}
		}
		ret := s.canon(n.Return)

		fresh := s.fresh()
		prevSelf, hadSelf := s.names[n.Self]
		s.names[n.Self] = fresh
		body := s.canon(n.Body)
		s.restore(n.Self, prevSelf, hadSelf)

		for i := len(restores) - 1; i >= 0; i-- {
			s.restore(restores[i].name, restores[i].prev, restores[i].had)
		}
		return &term.Fix{Self: fresh, Params: params, Return: ret, Body: body}
	case *term.Annot:
		return &term.Annot{Term: s.canon(n.Term), Ty: s.canon(n.Ty)}
	case *term.Axiom:
		return &term.Axiom{Ty: s.canon(n.Ty)}
	case *term.Hole:
		return &term.Hole{Tag: n.Tag}
	default:
		return t
	}
}

type restoreEntry struct {
	name string
	prev string
	had  bool
}

func (s *canonState) restore(name, prev string, had bool) {
	if had {
		s.names[name] = prev
	} else {
		delete(s.names, name)
	}
}

func (s *canonState) restoreAll(entries []restoreEntry) {
	for i := len(entries) - 1; i >= 0; i-- {
		s.restore(entries[i].name, entries[i].prev, entries[i].had)
	}
}

// Equal reports whether a and b are alpha-equivalent, i.e. identical
// after Canonicalize.
func Equal(a, b term.Term) bool {
	return structEqual(Canonicalize(a), Canonicalize(b))
}

// structEqual is plain structural equality over already-canonicalized
// terms (so all bound names are already comparable by value).
func structEqual(a, b term.Term) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case *term.Var:
		y, ok := b.(*term.Var)
		return ok && x.Name == y.Name
	case *term.Sort:
		y, ok := b.(*term.Sort)
		return ok && x.Kind == y.Kind && x.Level == y.Level
	case *term.Product:
		y, ok := b.(*term.Product)
		return ok && x.Var == y.Var && structEqual(x.VarTy, y.VarTy) && structEqual(x.ResultTy, y.ResultTy)
	case *term.Lambda:
		y, ok := b.(*term.Lambda)
		return ok && x.Var == y.Var && structEqual(x.VarTy, y.VarTy) && structEqual(x.Body, y.Body)
	case *term.App:
		y, ok := b.(*term.App)
		return ok && structEqual(x.Fn, y.Fn) && structEqual(x.Arg, y.Arg)
	case *term.IndRef:
		y, ok := b.(*term.IndRef)
		return ok && x.Name == y.Name
	case *term.ConRef:
		y, ok := b.(*term.ConRef)
		return ok && x.Ind == y.Ind && x.Con == y.Con
	case *term.Match:
		y, ok := b.(*term.Match)
		if !ok || x.As != y.As || !structEqual(x.Return, y.Return) || !structEqual(x.Scrutinee, y.Scrutinee) {
			return false
		}
		if len(x.Indices) != len(y.Indices) || len(x.Arms) != len(y.Arms) {
			return false
		}
		for i := range x.Indices {
			if x.Indices[i] != y.Indices[i] {
				return false
			}
		}
		for i := range x.Arms {
			if x.Arms[i].Con != y.Arms[i].Con || len(x.Arms[i].Vars) != len(y.Arms[i].Vars) {
				return false
			}
			for j := range x.Arms[i].Vars {
				if x.Arms[i].Vars[j] != y.Arms[i].Vars[j] {
					return false
				}
			}
			if !structEqual(x.Arms[i].Result, y.Arms[i].Result) {
				return false
			}
		}
		return true
	case *term.Fix:
		y, ok := b.(*term.Fix)
		if !ok || x.Self != y.Self || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name || !structEqual(x.Params[i].Ty, y.Params[i].Ty) {
				return false
			}
		}
		return structEqual(x.Return, y.Return) && structEqual(x.Body, y.Body)
	case *term.Annot:
		y, ok := b.(*term.Annot)
		return ok && structEqual(x.Term, y.Term) && structEqual(x.Ty, y.Ty)
	case *term.Axiom:
		y, ok := b.(*term.Axiom)
		return ok && structEqual(x.Ty, y.Ty)
	case *term.Hole:
		y, ok := b.(*term.Hole)
		return ok && x.Tag == y.Tag
	default:
		return false
	}
}
