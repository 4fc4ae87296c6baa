package normalize

import (
	"testing"

	"github.com/cicore/kernel/internal/alpha"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/term"
)

const fuel = 1000

func natRegistry(t *testing.T) *inductive.Registry {
	t.Helper()
	reg := inductive.New()
	natTy := &term.IndRef{Name: "nat"}
	if err := reg.Declare("nat", nil, &term.Sort{Kind: term.TypeUniverse, Level: 0}); err != nil {
		t.Fatalf("declare nat: %v", err)
	}
	if err := reg.AddConstructor("nat", "O", natTy, false); err != nil {
		t.Fatalf("add O: %v", err)
	}
	if err := reg.AddConstructor("nat", "S", &term.Product{Var: "n", VarTy: natTy, ResultTy: natTy}, false); err != nil {
		t.Fatalf("add S: %v", err)
	}
	return reg
}

func TestBetaReduction(t *testing.T) {
	ctx := context.New(inductive.New())
	id := &term.Lambda{Var: "x", VarTy: &term.Sort{Kind: term.Prop}, Body: &term.Var{Name: "x"}}
	app := &term.App{Fn: id, Arg: &term.Var{Name: "z"}}

	got, err := Normalize(ctx, app, CBV, fuel)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !alpha.Equal(got, &term.Var{Name: "z"}) {
		t.Fatalf("got %s, want z", term.Print(got))
	}
}

func TestDeltaReduction(t *testing.T) {
	ctx := context.New(inductive.New())
	ctx = ctx.ExtendDef("k", &term.Var{Name: "target"})

	got, err := Normalize(ctx, &term.Var{Name: "k"}, WHNF, fuel)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !alpha.Equal(got, &term.Var{Name: "target"}) {
		t.Fatalf("got %s, want target", term.Print(got))
	}
}

func TestIotaReduction(t *testing.T) {
	ctx := context.New(natRegistry(t))
	o := &term.ConRef{Ind: "nat", Con: "O"}
	sCon := &term.ConRef{Ind: "nat", Con: "S"}
	natTy := &term.IndRef{Name: "nat"}

	scrutinee := term.Apply(sCon, o)
	m := &term.Match{
		Scrutinee: scrutinee,
		Return:    natTy,
		Arms: []term.Arm{
			{Con: "O", Result: o},
			{Con: "S", Vars: []string{"n"}, Result: &term.Var{Name: "n"}},
		},
	}
	got, err := Normalize(ctx, m, CBV, fuel)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !alpha.Equal(got, o) {
		t.Fatalf("match on S O with S n => n: got %s, want %s", term.Print(got), term.Print(o))
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	ctx := context.New(natRegistry(t))
	sCon := &term.ConRef{Ind: "nat", Con: "S"}
	o := &term.ConRef{Ind: "nat", Con: "O"}
	id := &term.Lambda{Var: "x", VarTy: &term.IndRef{Name: "nat"}, Body: &term.Var{Name: "x"}}
	tm := &term.App{Fn: id, Arg: term.Apply(sCon, o)}

	once, err := Normalize(ctx, tm, CBV, fuel)
	if err != nil {
		t.Fatalf("Normalize once: %v", err)
	}
	twice, err := Normalize(ctx, once, CBV, fuel)
	if err != nil {
		t.Fatalf("Normalize twice: %v", err)
	}
	if !alpha.Equal(once, twice) {
		t.Fatalf("normalize(normalize(t)) = %s, want %s", term.Print(twice), term.Print(once))
	}
}

func TestFixUnfoldingViaContextExtension(t *testing.T) {
	ctx := context.New(natRegistry(t))
	natTy := &term.IndRef{Name: "nat"}
	o := &term.ConRef{Ind: "nat", Con: "O"}
	sCon := &term.ConRef{Ind: "nat", Con: "S"}

	// fix f (x:nat) : nat := match x with O => O | S x' => f x' end (predecessor-chasing loop)
	loop := &term.Fix{
		Self:   "f",
		Params: term.Parameters{{Name: "x", Ty: natTy}},
		Return: natTy,
		Body: &term.Match{
			Scrutinee: &term.Var{Name: "x"},
			Return:    natTy,
			Arms: []term.Arm{
				{Con: "O", Result: o},
				{Con: "S", Vars: []string{"x'"}, Result: term.Apply(&term.Var{Name: "f"}, &term.Var{Name: "x'"})},
			},
		},
	}
	call := term.Apply(loop, term.Apply(sCon, term.Apply(sCon, o)))
	got, err := Normalize(ctx, call, CBV, fuel)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !alpha.Equal(got, o) {
		t.Fatalf("got %s, want O", term.Print(got))
	}
}

func TestFuelExhausted(t *testing.T) {
	ctx := context.New(inductive.New())
	omega := &term.Lambda{Var: "x", VarTy: &term.Sort{Kind: term.Prop}, Body: &term.App{Fn: &term.Var{Name: "x"}, Arg: &term.Var{Name: "x"}}}
	selfApp := &term.App{Fn: omega, Arg: omega}

	_, err := Normalize(ctx, selfApp, CBV, 5)
	if err == nil {
		t.Fatal("expected FuelExhaustedError for a non-terminating reduction, got nil")
	}
}
