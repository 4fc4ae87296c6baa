// Command cic is a small fixed demo driver: it builds the nat and add
// scenarios straight through the Go API (there is no concrete-syntax
// parser in this module) and reports success or failure per scenario,
// colorizing output when stdout is a real terminal. Grounded on the
// teacher's builtinTermIsTTY use of mattn/go-isatty to gate ANSI escapes.
//
// Beyond the scenarios, three flags expose the module's side surfaces
// against the same demo context: -dump prints a YAML snapshot, -store
// appends the demo declarations to a SQLite log and replays it, and
// -serve blocks answering Infer/Check/Normalize over gRPC.
package main

import (
	stdcontext "context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/mattn/go-isatty"
	"google.golang.org/grpc"

	"github.com/cicore/kernel/internal/kernelstore"
	"github.com/cicore/kernel/internal/rpcsvc"
	"github.com/cicore/kernel/internal/snapshot"
	"github.com/cicore/kernel/pkg/kernel"
)

var (
	dumpFlag  = flag.Bool("dump", false, "print a YAML snapshot of the demo context after the scenarios run")
	storeFlag = flag.String("store", "", "append the demo declarations to a SQLite log at this path and replay it")
	serveFlag = flag.String("serve", "", "serve Infer/Check/Normalize over gRPC on this address after the scenarios")
)

func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func colorize(code, s string) string {
	if !isTTY() {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func ok(name string) {
	fmt.Printf("%s %s\n", colorize("32", "PASS"), name)
}

func fail(name string, err error) {
	fmt.Printf("%s %s: %s\n", colorize("31", "FAIL"), name, err)
}

// natRegistry declares nat : Type_0 with O and S, the scaffolding every
// scenario below builds on.
func natRegistry() (*kernel.Registry, error) {
	reg := kernel.NewRegistry()
	arity := &kernel.Sort{Kind: kernel.TypeUniverse, Level: 0}
	if err := kernel.Declare(reg, "nat", nil, arity); err != nil {
		return nil, err
	}
	cfg := kernel.DefaultConfig()
	natTy := &kernel.IndRef{Name: "nat"}
	if err := kernel.AddConstructor(reg, "nat", "O", natTy, cfg); err != nil {
		return nil, err
	}
	sTy := &kernel.Product{Var: "n", VarTy: natTy, ResultTy: natTy}
	if err := kernel.AddConstructor(reg, "nat", "S", sTy, cfg); err != nil {
		return nil, err
	}
	return reg, nil
}

func scenarioS1() error {
	reg, err := natRegistry()
	if err != nil {
		return err
	}
	ctx := kernel.NewContext(reg)
	cfg := kernel.DefaultConfig()

	o := &kernel.ConRef{Ind: "nat", Con: "O"}
	sApplied := kernel.Apply(&kernel.ConRef{Ind: "nat", Con: "S"}, o)

	ty, err := kernel.Infer(ctx, cfg, sApplied)
	if err != nil {
		return err
	}
	if !kernel.AlphaEqual(ctx, ty, &kernel.IndRef{Name: "nat"}) {
		return fmt.Errorf("S O: expected type nat, got %s", kernel.Print(ty))
	}

	normalized, err := kernel.Normalize(ctx, cfg, sApplied, kernel.CBV)
	if err != nil {
		return err
	}
	if !kernel.AlphaEqual(ctx, normalized, sApplied) {
		return fmt.Errorf("normalize(S O): expected %s, got %s", kernel.Print(sApplied), kernel.Print(normalized))
	}
	return nil
}

// buildAdd constructs add as a Fix recursing on its first argument.
func buildAdd() *kernel.Fix {
	natTy := &kernel.IndRef{Name: "nat"}
	sCon := &kernel.ConRef{Ind: "nat", Con: "S"}
	return &kernel.Fix{
		Self:   "f",
		Params: kernel.Params{{Name: "x", Ty: natTy}, {Name: "y", Ty: natTy}},
		Return: natTy,
		Body: &kernel.Match{
			Scrutinee: &kernel.Var{Name: "x"},
			Return:    natTy,
			Arms: []kernel.Arm{
				{Con: "O", Result: &kernel.Var{Name: "y"}},
				{Con: "S", Vars: []string{"x'"}, Result: kernel.Apply(sCon, kernel.Apply(&kernel.Var{Name: "f"}, &kernel.Var{Name: "x'"}, &kernel.Var{Name: "y"}))},
			},
		},
	}
}

// scenarioS2 declares add as a Fix and checks that add (S O) (S O)
// reduces to S (S O).
func scenarioS2() error {
	reg, err := natRegistry()
	if err != nil {
		return err
	}
	ctx := kernel.NewContext(reg)
	cfg := kernel.DefaultConfig()

	o := &kernel.ConRef{Ind: "nat", Con: "O"}
	sCon := &kernel.ConRef{Ind: "nat", Con: "S"}
	add := buildAdd()

	if _, err := kernel.Infer(ctx, cfg, add); err != nil {
		return fmt.Errorf("infer add: %w", err)
	}

	one := kernel.Apply(sCon, o)
	call := kernel.Apply(add, one, one)
	result, err := kernel.Normalize(ctx, cfg, call, kernel.CBV)
	if err != nil {
		return err
	}
	expected := kernel.Apply(sCon, kernel.Apply(sCon, o))
	if !kernel.AlphaEqual(ctx, result, expected) {
		return fmt.Errorf("add (S O) (S O): expected %s, got %s", kernel.Print(expected), kernel.Print(result))
	}
	return nil
}

func scenarioS3() error {
	reg := kernel.NewRegistry()
	if err := kernel.Declare(reg, "nat", nil, &kernel.Sort{Kind: kernel.TypeUniverse, Level: 0}); err != nil {
		return err
	}
	if err := kernel.Declare(reg, "bool", nil, &kernel.Sort{Kind: kernel.TypeUniverse, Level: 0}); err != nil {
		return err
	}
	ctx := kernel.NewContext(reg)
	cfg := kernel.DefaultConfig()

	natTy := &kernel.IndRef{Name: "nat"}
	boolTy := &kernel.IndRef{Name: "bool"}
	id := &kernel.Lambda{Var: "x", VarTy: natTy, Body: &kernel.Var{Name: "x"}}

	if err := kernel.Check(ctx, cfg, id, &kernel.Product{Var: "_", VarTy: natTy, ResultTy: natTy}); err != nil {
		return fmt.Errorf("expected nat->nat to succeed: %w", err)
	}
	if err := kernel.Check(ctx, cfg, id, &kernel.Product{Var: "_", VarTy: natTy, ResultTy: boolTy}); err == nil {
		return fmt.Errorf("expected nat->bool to raise Mismatch, got success")
	}
	return nil
}

func scenarioS4() error {
	reg := kernel.NewRegistry()
	ctx := kernel.NewContext(reg)
	cfg := kernel.DefaultConfig()

	typ0 := &kernel.Sort{Kind: kernel.TypeUniverse, Level: 0}
	term := &kernel.Lambda{
		Var: "A", VarTy: typ0,
		Body: &kernel.Lambda{Var: "x", VarTy: &kernel.Var{Name: "A"}, Body: &kernel.Var{Name: "x"}},
	}
	ty, err := kernel.Infer(ctx, cfg, term)
	if err != nil {
		return err
	}
	expected := &kernel.Product{
		Var: "A", VarTy: typ0,
		ResultTy: &kernel.Product{Var: "x", VarTy: &kernel.Var{Name: "A"}, ResultTy: &kernel.Var{Name: "A"}},
	}
	if !kernel.AlphaEqual(ctx, ty, expected) {
		return fmt.Errorf("expected %s, got %s", kernel.Print(expected), kernel.Print(ty))
	}
	return nil
}

func scenarioS5() error {
	reg, err := natRegistry()
	if err != nil {
		return err
	}
	ctx := kernel.NewContext(reg)
	cfg := kernel.DefaultConfig()
	natTy := &kernel.IndRef{Name: "nat"}
	o := &kernel.ConRef{Ind: "nat", Con: "O"}

	partial := &kernel.Match{
		Scrutinee: o, Return: natTy,
		Arms: []kernel.Arm{{Con: "O", Result: o}},
	}
	if _, err := kernel.Infer(ctx, cfg, partial); err == nil {
		return fmt.Errorf("expected NonExhaustive, got success")
	}

	duplicated := &kernel.Match{
		Scrutinee: o, Return: natTy,
		Arms: []kernel.Arm{
			{Con: "O", Result: o},
			{Con: "S", Vars: []string{"x'"}, Result: &kernel.Var{Name: "x'"}},
			{Con: "S", Vars: []string{"y'"}, Result: &kernel.Var{Name: "y'"}},
		},
	}
	if _, err := kernel.Infer(ctx, cfg, duplicated); err == nil {
		return fmt.Errorf("expected Duplicate, got success")
	}
	return nil
}

func scenarioS6() error {
	reg := kernel.NewRegistry()
	if err := kernel.Declare(reg, "nat", nil, &kernel.Sort{Kind: kernel.TypeUniverse, Level: 0}); err != nil {
		return err
	}
	badArity := &kernel.Product{Var: "_", VarTy: &kernel.IndRef{Name: "nat"}, ResultTy: &kernel.IndRef{Name: "nat"}}
	if err := kernel.Declare(reg, "bad", nil, badArity); err == nil {
		return fmt.Errorf("expected ArityShape, got success")
	}
	return nil
}

// demoContext rebuilds the nat registry and binds add, the state the
// -dump, -store, and -serve surfaces all expose.
func demoContext() (*kernel.Context, error) {
	reg, err := natRegistry()
	if err != nil {
		return nil, err
	}
	ctx := kernel.NewContext(reg)
	cfg := kernel.DefaultConfig()
	add := buildAdd()
	if _, err := kernel.Infer(ctx, cfg, add); err != nil {
		return nil, fmt.Errorf("infer add: %w", err)
	}
	return ctx.ExtendDef("add", add), nil
}

func dumpContext(ctx *kernel.Context) error {
	out, err := snapshot.Marshal(snapshot.Of(ctx))
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

// logDeclarations appends the demo context's declarations to the SQLite
// log at -store, then replays the log to show the append-only history is
// intact.
func logDeclarations(ctx *kernel.Context, path string) error {
	sctx := stdcontext.Background()
	st, err := kernelstore.Open(sctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	dump := snapshot.Of(ctx)
	for _, ind := range dump.Inductives {
		if _, err := st.Append(sctx, kernelstore.KindInductive, ind.Name, ind.Arity); err != nil {
			return err
		}
	}
	for name, def := range dump.Definitions {
		if _, err := st.Append(sctx, kernelstore.KindDef, name, def); err != nil {
			return err
		}
	}
	rows, err := st.Replay(sctx)
	if err != nil {
		return err
	}
	fmt.Printf("logged and replayed %d declarations from %s\n", len(rows), path)
	return nil
}

// serveKernel blocks answering KernelService calls against ctx.
func serveKernel(ctx *kernel.Context, addr string) error {
	srv, err := rpcsvc.NewServer(ctx, kernel.DefaultConfig())
	if err != nil {
		return err
	}
	gs := grpc.NewServer()
	srv.Register(gs)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	fmt.Printf("serving cickernel.KernelService on %s\n", lis.Addr())
	return gs.Serve(lis)
}

func runExtras() error {
	if !*dumpFlag && *storeFlag == "" && *serveFlag == "" {
		return nil
	}
	ctx, err := demoContext()
	if err != nil {
		return err
	}
	if *dumpFlag {
		if err := dumpContext(ctx); err != nil {
			return err
		}
	}
	if *storeFlag != "" {
		if err := logDeclarations(ctx, *storeFlag); err != nil {
			return err
		}
	}
	if *serveFlag != "" {
		return serveKernel(ctx, *serveFlag)
	}
	return nil
}

func main() {
	flag.Parse()
	scenarios := []struct {
		name string
		run  func() error
	}{
		{"S1 nat and S O", scenarioS1},
		{"S2 add via Fix", scenarioS2},
		{"S3 Check Mismatch", scenarioS3},
		{"S4 polymorphic identity", scenarioS4},
		{"S5 NonExhaustive/Duplicate", scenarioS5},
		{"S6 ArityShape", scenarioS6},
	}

	failures := 0
	for _, s := range scenarios {
		if err := s.run(); err != nil {
			fail(s.name, err)
			failures++
			continue
		}
		ok(s.name)
	}
	if failures > 0 {
		os.Exit(1)
	}
	if err := runExtras(); err != nil {
		fail("extras", err)
		os.Exit(1)
	}
}
