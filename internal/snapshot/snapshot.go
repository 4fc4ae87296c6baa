// Package snapshot serializes a context and its inductive registry to
// YAML for inspection and for kernelstore's replay log, grounded on the
// teacher's internal/ext/config.go use of gopkg.in/yaml.v3 to marshal
// plugin-host configuration structs.
package snapshot

import (
	"gopkg.in/yaml.v3"

	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/term"
)

// ConstructorDump is one constructor's readable shape.
type ConstructorDump struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
	Type string   `yaml:"type"`
}

// IndDump is one declared inductive's readable shape.
type IndDump struct {
	Name         string             `yaml:"name"`
	Params       []string           `yaml:"params"`
	Arity        string             `yaml:"arity"`
	Constructors []ConstructorDump `yaml:"constructors"`
}

// Dump is a full, readable snapshot of a context: every typed name's
// type, every defined name's definition, plus every declared inductive.
type Dump struct {
	Typings     map[string]string `yaml:"typings"`
	Definitions map[string]string `yaml:"definitions"`
	Inductives  []IndDump         `yaml:"inductives"`
}

// Of builds a Dump from ctx, rendering every term with term.Print.
func Of(ctx *context.Context) Dump {
	d := Dump{
		Typings:     make(map[string]string),
		Definitions: make(map[string]string),
	}
	for name, ty := range ctx.Typings() {
		d.Typings[name] = term.Print(ty)
	}
	for name, def := range ctx.Definitions() {
		d.Definitions[name] = term.Print(def)
	}
	for _, ind := range ctx.Inductives().All() {
		d.Inductives = append(d.Inductives, indDumpOf(ind))
	}
	return d
}

func indDumpOf(ind *inductive.Inductive) IndDump {
	params := make([]string, len(ind.Params))
	for i, p := range ind.Params {
		params[i] = p.Name + ":" + term.Print(p.Ty)
	}
	cons := make([]ConstructorDump, len(ind.Constructors))
	for i, c := range ind.Constructors {
		args := make([]string, len(c.Args))
		for j, a := range c.Args {
			args[j] = a.Name + ":" + term.Print(a.Ty)
		}
		cons[i] = ConstructorDump{
			Name: c.Name,
			Args: args,
			Type: term.Print(ind.ConstructorType(c)),
		}
	}
	return IndDump{
		Name:         ind.Name,
		Params:       params,
		Arity:        term.Print(ind.Arity),
		Constructors: cons,
	}
}

// Marshal renders d as YAML text.
func Marshal(d Dump) ([]byte, error) {
	return yaml.Marshal(d)
}
