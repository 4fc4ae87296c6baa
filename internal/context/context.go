// Package context holds the typing and definition environment the
// checker and normalizer thread through every recursive call, grounded on
// the teacher's internal/evaluator/env.go copy-on-extend Environment
// (immutable extension returning a new handle rather than mutating a
// shared map in place, so a caller can backtrack across a Match arm or a
// speculative Check without undoing a sibling's bindings).
package context

import (
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/term"
)

// Context is an immutable snapshot of bound names. A name is either a
// hypothesis with a declared type (tys) or a definition with a known body
// (defs, for let-like bindings produced by Fix unfolding and top-level
// definitions) — never both; the checker recovers a definition's type by
// inferring its body. Inductives is a shared handle to the registry, not
// itself copy-on-extend — declarations are additive and global once
// registered.
type Context struct {
	tys   map[string]term.Term
	defs  map[string]term.Term
	order []string
	inds  *inductive.Registry
}

// New returns an empty context backed by the given inductive registry.
func New(inds *inductive.Registry) *Context {
	return &Context{
		tys:  make(map[string]term.Term),
		defs: make(map[string]term.Term),
		inds: inds,
	}
}

// clone returns a shallow copy of c's maps so an extension never mutates
// the receiver.
func (c *Context) clone() *Context {
	tys := make(map[string]term.Term, len(c.tys)+1)
	for k, v := range c.tys {
		tys[k] = v
	}
	defs := make(map[string]term.Term, len(c.defs))
	for k, v := range c.defs {
		defs[k] = v
	}
	order := make([]string, len(c.order))
	copy(order, c.order)
	return &Context{tys: tys, defs: defs, order: order, inds: c.inds}
}

// ExtendTy returns a new context with name bound as a hypothesis of type
// ty. If name was already bound (either way), the new binding shadows it.
func (c *Context) ExtendTy(name string, ty term.Term) *Context {
	next := c.clone()
	next.noteName(name)
	next.tys[name] = ty
	delete(next.defs, name)
	return next
}

// ExtendDef returns a new context with name known to reduce to def (used
// for Fix unfolding and top-level definitions). The name carries no
// separate typing entry; its type is def's own inferred type.
func (c *Context) ExtendDef(name string, def term.Term) *Context {
	next := c.clone()
	next.noteName(name)
	next.defs[name] = def
	delete(next.tys, name)
	return next
}

// noteName records name in binding order on its first appearance.
func (c *Context) noteName(name string) {
	if _, ok := c.tys[name]; ok {
		return
	}
	if _, ok := c.defs[name]; ok {
		return
	}
	c.order = append(c.order, name)
}

// WithBinding extends c with name:ty for the duration of f, in the
// teacher's closure-form scoping style rather than a manual
// extend/restore pair. f's return value is passed through.
func WithBinding[T any](c *Context, name string, ty term.Term, f func(*Context) T) T {
	return f(c.ExtendTy(name, ty))
}

// LookupTy returns name's declared type, if bound.
func (c *Context) LookupTy(name string) (term.Term, bool) {
	ty, ok := c.tys[name]
	return ty, ok
}

// LookupDef returns name's known definition, if any.
func (c *Context) LookupDef(name string) (term.Term, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// ContainsTy reports whether name has a declared type in c.
func (c *Context) ContainsTy(name string) bool {
	_, ok := c.tys[name]
	return ok
}

// ContainsDef reports whether name has a known definition in c.
func (c *Context) ContainsDef(name string) bool {
	_, ok := c.defs[name]
	return ok
}

// Inductives returns the shared inductive registry backing c.
func (c *Context) Inductives() *inductive.Registry {
	return c.inds
}

// Names returns every bound name in binding order, for deterministic
// snapshots.
func (c *Context) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Typings exposes the (name -> type) map for a caller that needs to dump
// or iterate the whole context, e.g. internal/snapshot. The returned map
// must not be mutated.
func (c *Context) Typings() map[string]term.Term {
	return c.tys
}

// Definitions exposes the (name -> definition) map for the same purpose
// as Typings.
func (c *Context) Definitions() map[string]term.Term {
	return c.defs
}
