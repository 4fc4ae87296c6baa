// Package inductive holds declared inductive families and their
// constructors behind a registry, grounded on the teacher's
// internal/symbols/table.go (a mutex-guarded map with Declare/Lookup and a
// build-then-register-then-extend lifecycle for mutually-referential
// declarations).
package inductive

import (
	"sort"
	"sync"

	"github.com/cicore/kernel/internal/kernelerr"
	"github.com/cicore/kernel/internal/term"
	"github.com/cicore/kernel/internal/wf"
)

// Constructor is one constructor of an Inductive in decomposed form, as
// derived by AddConstructor from the raw constructor type: the argument
// telescope peeled off the leading Product chain, and the indices the
// validated spine tail supplies to the inductive's arity. Parameters of
// the owning inductive are implicitly prepended when the constructor is
// elaborated back to a full type by ConstructorType.
type Constructor struct {
	Name    string
	Args    term.Parameters
	Indices []term.Term
}

// Inductive is a declared family: its own parameter telescope, its arity
// (a product chain over the non-parameter indices, ending in a Sort), and
// its constructors, added incrementally after Declare so a constructor's
// argument types may themselves mention the inductive being declared.
type Inductive struct {
	Name         string
	Params       term.Parameters
	Arity        term.Term
	Constructors []Constructor
}

// ConstructorType reconstructs con's full closed type: the inductive's own
// parameters, then the constructor's own argument telescope, then the
// inductive applied to the parameters and the constructor's indices.
func (ind *Inductive) ConstructorType(con Constructor) term.Term {
	head := term.Term(&term.IndRef{Name: ind.Name})
	args := make([]term.Term, 0, len(ind.Params)+len(con.Indices))
	for _, p := range ind.Params {
		args = append(args, &term.Var{Name: p.Name})
	}
	args = append(args, con.Indices...)
	result := term.Apply(head, args...)
	result = con.Args.WrapWithProducts(result)
	result = ind.Params.WrapWithProducts(result)
	return result
}

// Lookup finds the named constructor within ind.
func (ind *Inductive) Lookup(conName string) (Constructor, bool) {
	for _, c := range ind.Constructors {
		if c.Name == conName {
			return c, true
		}
	}
	return Constructor{}, false
}

// IndexCount returns the number of indices ind's arity expects beyond its
// own parameters, i.e. the number of leading Products in Arity.
func (ind *Inductive) IndexCount() int {
	return arityProductCount(ind.Arity)
}

// ConstructorNames returns con names in declaration order.
func (ind *Inductive) ConstructorNames() []string {
	names := make([]string, len(ind.Constructors))
	for i, c := range ind.Constructors {
		names[i] = c.Name
	}
	return names
}

// Registry holds every declared Inductive, keyed by name.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Inductive
	order  []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*Inductive)}
}

// Declare registers a new inductive with no constructors yet, so that
// AddConstructor calls for it (or for a mutually-referential sibling) can
// follow. Returns a DuplicateError if name is already declared, or an
// ArityShapeError if arity is not a product chain ending in a Sort.
func (r *Registry) Declare(name string, params term.Parameters, arity term.Term) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return kernelerr.NewDuplicateError("inductive", name)
	}
	if !wf.IsArityShape(arity) {
		return kernelerr.NewArityShapeError(name, arity)
	}
	r.byName[name] = &Inductive{Name: name, Params: params, Arity: arity}
	r.order = append(r.order, name)
	return nil
}

// AddConstructor decomposes and validates conName's raw type against the
// named inductive, then appends it. rawTy is the constructor's type as
// written against the inductive's parameter telescope: a (possibly
// empty) chain of Products over the constructor's own arguments, ending
// in IndRef(indName) applied to the inductive's parameters (positionally)
// followed by exactly its arity's index count of index expressions.
// Returns a BadConstructorSpineError when the tail spine deviates from that
// shape, and a GuardFailureError when an argument fails the positivity
// gate. ind must already be declared.
func (r *Registry) AddConstructor(indName, conName string, rawTy term.Term, strictPositivity bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ind, ok := r.byName[indName]
	if !ok {
		return kernelerr.NewUnboundError(indName)
	}
	for _, existing := range ind.Constructors {
		if existing.Name == conName {
			return kernelerr.NewDuplicateError("constructor", conName)
		}
	}
	con, err := decomposeRawType(ind, conName, rawTy)
	if err != nil {
		return err
	}
	for _, arg := range con.Args {
		if !wf.CheckPositivity(indName, arg.Ty, strictPositivity) {
			return kernelerr.NewGuardFailureError(indName+"::"+conName, "inductive occurs non-positively in a constructor argument")
		}
	}
	ind.Constructors = append(ind.Constructors, con)
	return nil
}

// decomposeRawType peels rawTy's leading Product chain into the
// constructor's argument telescope, then validates the remaining
// applicative spine: its head must be IndRef(ind.Name), applied to the
// inductive's own parameters in declaration order followed by exactly
// one index expression per leading Product of the arity. The verified
// spine tail becomes the constructor's Indices.
func decomposeRawType(ind *Inductive, conName string, rawTy term.Term) (Constructor, error) {
	var args term.Parameters
	tail := rawTy
	for {
		p, ok := tail.(*term.Product)
		if !ok {
			break
		}
		args = append(args, term.Param{Name: p.Var, Ty: p.VarTy})
		tail = p.ResultTy
	}
	head, spineArgs := term.Spine(tail)
	ref, ok := head.(*term.IndRef)
	if !ok || ref.Name != ind.Name {
		return Constructor{}, kernelerr.NewBadConstructorSpineError(ind.Name, conName, rawTy)
	}
	numParams := len(ind.Params)
	if len(spineArgs) != numParams+ind.IndexCount() {
		return Constructor{}, kernelerr.NewBadConstructorSpineError(ind.Name, conName, rawTy)
	}
	for i, p := range ind.Params {
		v, ok := spineArgs[i].(*term.Var)
		if !ok || v.Name != p.Name {
			return Constructor{}, kernelerr.NewBadConstructorSpineError(ind.Name, conName, rawTy)
		}
	}
	return Constructor{Name: conName, Args: args, Indices: spineArgs[numParams:]}, nil
}

func arityProductCount(t term.Term) int {
	n := 0
	for {
		p, ok := t.(*term.Product)
		if !ok {
			return n
		}
		n++
		t = p.ResultTy
	}
}

// Lookup finds a declared inductive by name.
func (r *Registry) Lookup(name string) (*Inductive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ind, ok := r.byName[name]
	return ind, ok
}

// Names returns every declared inductive's name, sorted, for deterministic
// snapshots.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// All returns every declared inductive in declaration order.
func (r *Registry) All() []*Inductive {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Inductive, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}
