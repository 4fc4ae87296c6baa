// Package kernel is the narrow surface a concrete-syntax front end drives
// the checker through: building contexts, declaring inductives, and
// running infer/check/normalize/equality, grounded on spec.md's own
// external-interfaces boundary and mirroring the teacher's pkg/embed
// re-export-and-rename pattern (a thin pkg layer over internal packages,
// so a downstream driver imports one stable path instead of reaching into
// internal/...).
package kernel

import (
	"github.com/cicore/kernel/internal/alpha"
	"github.com/cicore/kernel/internal/config"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/normalize"
	"github.com/cicore/kernel/internal/term"
	"github.com/cicore/kernel/internal/typecheck"
)

// Re-exported term constructors and shapes, so a front end needs no
// import of internal/term to build an AST.
type (
	Term     = term.Term
	Var      = term.Var
	Sort     = term.Sort
	Product  = term.Product
	Lambda   = term.Lambda
	App      = term.App
	IndRef   = term.IndRef
	ConRef   = term.ConRef
	Arm      = term.Arm
	Match    = term.Match
	Fix      = term.Fix
	Annot    = term.Annot
	Axiom    = term.Axiom
	Hole     = term.Hole
	Param    = term.Param
	Params   = term.Parameters
	SortKind = term.SortKind
)

const (
	Prop         = term.Prop
	TypeUniverse = term.TypeUniverse
)

// Apply and Spine are re-exported for callers building or destructuring
// applicative chains without importing internal/term directly.
var (
	Apply = term.Apply
	Spine = term.Spine
)

// Strategy selects how far Normalize reduces.
type Strategy = normalize.Strategy

const (
	WHNF = normalize.WHNF
	CBV  = normalize.CBV
)

// Config bundles the kernel's tunables (fuel, recursion depth, the
// universe and guard Open-Question flags).
type Config = config.Config

// DefaultConfig returns the configuration the kernel uses unless a
// driver overrides it.
func DefaultConfig() Config { return config.Default() }

// Registry holds declared inductive families.
type Registry = inductive.Registry

// NewRegistry returns an empty inductive registry.
func NewRegistry() *Registry { return inductive.New() }

// Constructor is a declared inductive's constructor in the registry's
// decomposed form, as returned by lookups.
type Constructor = inductive.Constructor

// Context is the typing and definition environment threaded through
// every call below.
type Context = context.Context

// NewContext returns an empty context backed by reg.
func NewContext(reg *Registry) *Context { return context.New(reg) }

// Declare registers a new inductive family with no constructors yet.
func Declare(reg *Registry, name string, params Params, arity Term) error {
	return reg.Declare(name, params, arity)
}

// AddConstructor validates conName's raw constructor type against the
// declared inductive and appends it, gated by cfg.StrictGuard for
// positivity checking.
func AddConstructor(reg *Registry, indName, conName string, rawTy Term, cfg Config) error {
	return reg.AddConstructor(indName, conName, rawTy, cfg.StrictGuard)
}

// Infer computes t's type under ctx.
func Infer(ctx *Context, cfg Config, t Term) (Term, error) {
	return typecheck.Infer(ctx, cfg, t)
}

// Check verifies that t has type expected under ctx.
func Check(ctx *Context, cfg Config, t Term, expected Term) error {
	return typecheck.Check(ctx, cfg, t, expected)
}

// Normalize reduces t under ctx according to strategy.
func Normalize(ctx *Context, cfg Config, t Term, strategy Strategy) (Term, error) {
	return normalize.Normalize(ctx, t, strategy, cfg.DefaultFuel)
}

// AlphaEqual reports whether a and b are alpha-equivalent, ignoring
// reduction entirely. ctx is accepted to match spec.md's external
// interface shape but is not consulted: alpha-equivalence is a purely
// syntactic relation.
func AlphaEqual(ctx *Context, a, b Term) bool {
	return alpha.Equal(a, b)
}

// DefEqual reports whether a and b are definitionally equal under ctx:
// both normalized and then compared up to alpha. This is
// spec.md's `compare_terms`, the relation Check uses internally.
func DefEqual(ctx *Context, cfg Config, a, b Term) (bool, error) {
	return normalize.Compare(ctx, a, b, cfg.DefaultFuel)
}

// Print renders t as a readable one-line string.
func Print(t Term) string {
	return term.Print(t)
}
