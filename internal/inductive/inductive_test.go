package inductive

import (
	"errors"
	"testing"

	"github.com/cicore/kernel/internal/kernelerr"
	"github.com/cicore/kernel/internal/term"
)

func sortTy(level int) term.Term {
	return &term.Sort{Kind: term.TypeUniverse, Level: level}
}

func TestDeclareThenAddConstructorSucceeds(t *testing.T) {
	reg := New()
	if err := reg.Declare("nat", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	natTy := &term.IndRef{Name: "nat"}
	if err := reg.AddConstructor("nat", "O", natTy, false); err != nil {
		t.Fatalf("AddConstructor O: %v", err)
	}
	sTy := &term.Product{Var: "n", VarTy: natTy, ResultTy: natTy}
	if err := reg.AddConstructor("nat", "S", sTy, false); err != nil {
		t.Fatalf("AddConstructor S: %v", err)
	}

	ind, ok := reg.Lookup("nat")
	if !ok {
		t.Fatal("nat not found after Declare")
	}
	if got := ind.ConstructorNames(); len(got) != 2 || got[0] != "O" || got[1] != "S" {
		t.Fatalf("ConstructorNames = %v, want [O S]", got)
	}
	if ind.IndexCount() != 0 {
		t.Fatalf("IndexCount = %d, want 0 for a non-indexed family", ind.IndexCount())
	}
	s, _ := ind.Lookup("S")
	if len(s.Args) != 1 || s.Args[0].Name != "n" {
		t.Fatalf("S decomposed args = %v, want exactly n:nat", s.Args)
	}
}

func TestDeclareDuplicateNameRejected(t *testing.T) {
	reg := New()
	if err := reg.Declare("nat", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	err := reg.Declare("nat", nil, sortTy(0))
	var dup *kernelerr.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("Declare duplicate = %v, want *DuplicateError", err)
	}
}

func TestDeclareRejectsNonArityShape(t *testing.T) {
	reg := New()
	// A body that is plainly not a product-chain-ending-in-sort: a bare Var.
	err := reg.Declare("bogus", nil, &term.Var{Name: "x"})
	var shape *kernelerr.ArityShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("Declare with bad arity = %v, want *ArityShapeError", err)
	}
}

func TestAddConstructorDuplicateNameRejected(t *testing.T) {
	reg := New()
	if err := reg.Declare("nat", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	natTy := &term.IndRef{Name: "nat"}
	if err := reg.AddConstructor("nat", "O", natTy, false); err != nil {
		t.Fatalf("AddConstructor O: %v", err)
	}
	err := reg.AddConstructor("nat", "O", natTy, false)
	var dup *kernelerr.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("AddConstructor duplicate = %v, want *DuplicateError", err)
	}
}

func TestAddConstructorWrongIndexCountRejected(t *testing.T) {
	reg := New()
	// vec : nat -> Type_0 (one index), but a constructor whose tail applies
	// vec to nothing.
	vecArity := term.Parameters{{Name: "n", Ty: &term.IndRef{Name: "nat"}}}.WrapWithProducts(sortTy(0))
	if err := reg.Declare("vec", nil, vecArity); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	err := reg.AddConstructor("vec", "nil", &term.IndRef{Name: "vec"}, false)
	var shape *kernelerr.BadConstructorSpineError
	if !errors.As(err, &shape) {
		t.Fatalf("AddConstructor with wrong index count = %v, want *BadConstructorSpineError", err)
	}
}

func TestAddConstructorWrongHeadRejected(t *testing.T) {
	reg := New()
	if err := reg.Declare("nat", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	// A raw type whose spine tail is headed by a different inductive.
	err := reg.AddConstructor("nat", "O", &term.IndRef{Name: "bool"}, false)
	var shape *kernelerr.BadConstructorSpineError
	if !errors.As(err, &shape) {
		t.Fatalf("AddConstructor with foreign head = %v, want *BadConstructorSpineError", err)
	}
	// A tail that is not an inductive reference at all.
	err = reg.AddConstructor("nat", "O", &term.Var{Name: "x"}, false)
	if !errors.As(err, &shape) {
		t.Fatalf("AddConstructor with non-IndRef tail = %v, want *BadConstructorSpineError", err)
	}
}

func TestAddConstructorParametersMustBePositional(t *testing.T) {
	reg := New()
	// list (A : Type_0) : Type_0, whose constructors must end in list A.
	params := term.Parameters{{Name: "A", Ty: sortTy(0)}}
	if err := reg.Declare("list", params, sortTy(0)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	good := term.Apply(&term.IndRef{Name: "list"}, &term.Var{Name: "A"})
	if err := reg.AddConstructor("list", "nil", good, false); err != nil {
		t.Fatalf("AddConstructor nil: %v", err)
	}
	bad := term.Apply(&term.IndRef{Name: "list"}, &term.Var{Name: "B"})
	err := reg.AddConstructor("list", "stray", bad, false)
	var shape *kernelerr.BadConstructorSpineError
	if !errors.As(err, &shape) {
		t.Fatalf("AddConstructor with wrong parameter instantiation = %v, want *BadConstructorSpineError", err)
	}
}

func TestAddConstructorOnUndeclaredInductiveRejected(t *testing.T) {
	reg := New()
	err := reg.AddConstructor("ghost", "O", &term.IndRef{Name: "ghost"}, false)
	var unbound *kernelerr.UnboundError
	if !errors.As(err, &unbound) {
		t.Fatalf("AddConstructor on undeclared inductive = %v, want *UnboundError", err)
	}
}

func TestConstructorTypeReconstructsFullTelescope(t *testing.T) {
	reg := New()
	if err := reg.Declare("nat", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	natTy := &term.IndRef{Name: "nat"}
	sTy := &term.Product{Var: "n", VarTy: natTy, ResultTy: natTy}
	if err := reg.AddConstructor("nat", "S", sTy, false); err != nil {
		t.Fatalf("AddConstructor S: %v", err)
	}
	ind, _ := reg.Lookup("nat")
	sCon, ok := ind.Lookup("S")
	if !ok {
		t.Fatal("S missing after AddConstructor")
	}
	got := ind.ConstructorType(sCon)
	// Expect (forall n:nat, nat), i.e. a single Product ending in nat.
	prod, ok := got.(*term.Product)
	if !ok {
		t.Fatalf("ConstructorType(S) = %s, want a Product", term.Print(got))
	}
	if prod.Var != "n" {
		t.Fatalf("ConstructorType(S) binder = %q, want n", prod.Var)
	}
	if _, ok := prod.ResultTy.(*term.IndRef); !ok {
		t.Fatalf("ConstructorType(S) result = %s, want %%nat", term.Print(prod.ResultTy))
	}
}

func TestSelfReferentialInductiveBuildThenRegisterThenExtend(t *testing.T) {
	// Exercise the Declare-before-constructors lifecycle for a family whose
	// own constructor argument mentions the family being declared: this is
	// only possible because AddConstructor is a separate step from Declare.
	reg := New()
	if err := reg.Declare("nat", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare nat: %v", err)
	}
	natTy := &term.IndRef{Name: "nat"}
	if err := reg.AddConstructor("nat", "O", natTy, false); err != nil {
		t.Fatalf("AddConstructor O: %v", err)
	}
	sTy := &term.Product{Var: "n", VarTy: natTy, ResultTy: natTy}
	if err := reg.AddConstructor("nat", "S", sTy, false); err != nil {
		t.Fatalf("AddConstructor S: %v", err)
	}
	ind, ok := reg.Lookup("nat")
	if !ok {
		t.Fatal("nat missing")
	}
	if len(ind.Constructors) != 2 {
		t.Fatalf("len(Constructors) = %d, want 2", len(ind.Constructors))
	}
}

func TestNamesSortedAndAllInDeclarationOrder(t *testing.T) {
	reg := New()
	if err := reg.Declare("zzz", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare zzz: %v", err)
	}
	if err := reg.Declare("aaa", nil, sortTy(0)); err != nil {
		t.Fatalf("Declare aaa: %v", err)
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "aaa" || names[1] != "zzz" {
		t.Fatalf("Names() = %v, want sorted [aaa zzz]", names)
	}
	all := reg.All()
	if len(all) != 2 || all[0].Name != "zzz" || all[1].Name != "aaa" {
		t.Fatalf("All() = declaration order mismatch: %v", all)
	}
}
