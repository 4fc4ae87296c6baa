package snapshot

import (
	"strings"
	"testing"

	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/term"
)

func demoContext(t *testing.T) *context.Context {
	t.Helper()
	reg := inductive.New()
	if err := reg.Declare("nat", nil, &term.Sort{Kind: term.TypeUniverse, Level: 0}); err != nil {
		t.Fatalf("declare nat: %v", err)
	}
	if err := reg.AddConstructor("nat", "O", &term.IndRef{Name: "nat"}, false); err != nil {
		t.Fatalf("add O: %v", err)
	}
	ctx := context.New(reg)
	ctx = ctx.ExtendTy("x", &term.IndRef{Name: "nat"})
	ctx = ctx.ExtendDef("z", &term.ConRef{Ind: "nat", Con: "O"})
	return ctx
}

func TestOfCapturesTypingsDefinitionsAndInductives(t *testing.T) {
	d := Of(demoContext(t))

	if got := d.Typings["x"]; got != "%nat" {
		t.Errorf("Typings[x] = %q, want %%nat", got)
	}
	if got := d.Definitions["z"]; got != "nat::O" {
		t.Errorf("Definitions[z] = %q, want nat::O", got)
	}
	if _, ok := d.Typings["z"]; ok {
		t.Error("Typings lists the defined name z; typings and definitions are disjoint")
	}
	if len(d.Inductives) != 1 || d.Inductives[0].Name != "nat" {
		t.Fatalf("Inductives = %v, want exactly nat", d.Inductives)
	}
	if d.Inductives[0].Arity != "Type_0" {
		t.Errorf("nat arity = %q, want Type_0", d.Inductives[0].Arity)
	}
	if len(d.Inductives[0].Constructors) != 1 || d.Inductives[0].Constructors[0].Name != "O" {
		t.Fatalf("nat constructors = %v, want exactly O", d.Inductives[0].Constructors)
	}
}

func TestMarshalRendersReadableYAML(t *testing.T) {
	out, err := Marshal(Of(demoContext(t)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(out)
	for _, want := range []string{"typings:", "definitions:", "inductives:", "nat"} {
		if !strings.Contains(text, want) {
			t.Errorf("snapshot YAML missing %q:\n%s", want, text)
		}
	}
}
