package subst

import (
	"testing"

	"github.com/cicore/kernel/internal/alpha"
	"github.com/cicore/kernel/internal/term"
)

func eq(t *testing.T, got, want term.Term) {
	t.Helper()
	if !alpha.Equal(got, want) {
		t.Errorf("got %s, want %s", term.Print(got), term.Print(want))
	}
}

func TestSubstReplacesFreeOccurrencesLiterally(t *testing.T) {
	// subst(f x, x, y) = f y, when y is not itself a binder anywhere in t.
	tm := &term.App{Fn: &term.Var{Name: "f"}, Arg: &term.Var{Name: "x"}}
	got := Subst(tm, "x", &term.Var{Name: "y"})
	want := &term.App{Fn: &term.Var{Name: "f"}, Arg: &term.Var{Name: "y"}}
	eq(t, got, want)
}

func TestSubstLeavesOtherVarsAlone(t *testing.T) {
	tm := &term.Var{Name: "z"}
	got := Subst(tm, "x", &term.Var{Name: "y"})
	eq(t, got, tm)
}

func TestSubstBinderShadowing(t *testing.T) {
	// subst(Lambda(x, A, body), x, y) = Lambda(x, subst(A,x,y), body) -- body untouched.
	lam := &term.Lambda{
		Var:   "x",
		VarTy: &term.Var{Name: "x"}, // the domain annotation still mentions the outer x
		Body:  &term.Var{Name: "x"}, // refers to the binder, must not be substituted
	}
	got := Subst(lam, "x", &term.Var{Name: "y"}).(*term.Lambda)
	if got.Var != "x" {
		t.Fatalf("binder name changed: got %q", got.Var)
	}
	eq(t, got.VarTy, &term.Var{Name: "y"})
	eq(t, got.Body, &term.Var{Name: "x"})
}

func TestSubstProductShadowing(t *testing.T) {
	prod := &term.Product{Var: "x", VarTy: &term.Var{Name: "x"}, ResultTy: &term.Var{Name: "x"}}
	got := Subst(prod, "x", &term.Var{Name: "y"}).(*term.Product)
	eq(t, got.VarTy, &term.Var{Name: "y"})
	eq(t, got.ResultTy, &term.Var{Name: "x"})
}

func TestSubstMatchArmShadowing(t *testing.T) {
	m := &term.Match{
		Scrutinee: &term.Var{Name: "x"},
		As:        "x", // shadows x in Return
		Return:    &term.Var{Name: "x"},
		Arms: []term.Arm{
			{Con: "O", Result: &term.Var{Name: "x"}},                    // no shadowing, x is free here
			{Con: "S", Vars: []string{"x"}, Result: &term.Var{Name: "x"}}, // shadows x in this arm
		},
	}
	got := Subst(m, "x", &term.Var{Name: "y"}).(*term.Match)
	eq(t, got.Scrutinee, &term.Var{Name: "y"})
	eq(t, got.Return, &term.Var{Name: "x"}) // untouched: As="x" shadows
	eq(t, got.Arms[0].Result, &term.Var{Name: "y"})
	eq(t, got.Arms[1].Result, &term.Var{Name: "x"}) // untouched: arm var "x" shadows
}

func TestSubstFixSelfOnlyShadowsBody(t *testing.T) {
	// Self ("f") is bound only in Body; Params and Return are evaluated
	// before Self exists, so a substitution for "f" must still reach them.
	fix := &term.Fix{
		Self:   "f",
		Params: term.Parameters{{Name: "n", Ty: &term.Var{Name: "f"}}},
		Return: &term.Var{Name: "f"},
		Body:   &term.Var{Name: "f"},
	}
	got := Subst(fix, "f", &term.Var{Name: "y"}).(*term.Fix)
	if got.Self != "f" {
		t.Fatalf("Self renamed: %q", got.Self)
	}
	eq(t, got.Params[0].Ty, &term.Var{Name: "y"})
	eq(t, got.Return, &term.Var{Name: "y"})
	eq(t, got.Body, &term.Var{Name: "f"}) // untouched: Self shadows inside Body only
}
