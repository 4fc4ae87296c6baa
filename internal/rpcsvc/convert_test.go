package rpcsvc

import (
	"testing"

	"github.com/cicore/kernel/internal/alpha"
	"github.com/cicore/kernel/internal/term"
)

func TestTermMsgRoundTrip(t *testing.T) {
	c, err := newCodec()
	if err != nil {
		t.Fatalf("newCodec: %v", err)
	}

	natTy := &term.IndRef{Name: "nat"}
	cases := []struct {
		name string
		t    term.Term
	}{
		{"var", &term.Var{Name: "x"}},
		{"prop", &term.Sort{Kind: term.Prop}},
		{"type2", &term.Sort{Kind: term.TypeUniverse, Level: 2}},
		{"product", &term.Product{Var: "x", VarTy: natTy, ResultTy: natTy}},
		{"lambda", &term.Lambda{Var: "x", VarTy: natTy, Body: &term.Var{Name: "x"}}},
		{"app", &term.App{Fn: &term.ConRef{Ind: "nat", Con: "S"}, Arg: &term.ConRef{Ind: "nat", Con: "O"}}},
		{"indref", natTy},
		{"conref", &term.ConRef{Ind: "nat", Con: "S"}},
		{"hole", &term.Hole{Tag: "h1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := c.termToMsg(tc.t)
			if err != nil {
				t.Fatalf("termToMsg: %v", err)
			}
			back, err := c.msgToTerm(msg)
			if err != nil {
				t.Fatalf("msgToTerm: %v", err)
			}
			if !alpha.Equal(back, tc.t) {
				t.Fatalf("round trip: got %s, want %s", term.Print(back), term.Print(tc.t))
			}
		})
	}
}

func TestMatchAndFixHaveNoWireForm(t *testing.T) {
	c, err := newCodec()
	if err != nil {
		t.Fatalf("newCodec: %v", err)
	}
	m := &term.Match{Scrutinee: &term.Var{Name: "x"}, Return: &term.IndRef{Name: "nat"}}
	if _, err := c.termToMsg(m); err == nil {
		t.Fatal("termToMsg(Match) succeeded, want an error")
	}
	f := &term.Fix{Self: "f", Return: &term.IndRef{Name: "nat"}, Body: &term.Var{Name: "f"}}
	if _, err := c.termToMsg(f); err == nil {
		t.Fatal("termToMsg(Fix) succeeded, want an error")
	}
}
