package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders t as a readable one-line string, used by error messages,
// snapshots, and tests. It is a single free function dispatching on the
// term's tag rather than a method per variant, matching the rest of this
// package's operations.
func Print(t Term) string {
	switch n := t.(type) {
	case nil:
		return "<nil>"
	case *Var:
		return n.Name
	case *Sort:
		if n.Kind == Prop {
			return "Prop"
		}
		return "Type_" + strconv.Itoa(n.Level)
	case *Product:
		return fmt.Sprintf("(forall %s:%s, %s)", n.Var, Print(n.VarTy), Print(n.ResultTy))
	case *Lambda:
		return fmt.Sprintf("(fun %s:%s => %s)", n.Var, Print(n.VarTy), Print(n.Body))
	case *App:
		return fmt.Sprintf("(%s %s)", Print(n.Fn), Print(n.Arg))
	case *IndRef:
		return "%" + n.Name
	case *ConRef:
		return n.Ind + "::" + n.Con
	case *Match:
		arms := make([]string, 0, len(n.Arms))
		for _, arm := range n.Arms {
			arms = append(arms, fmt.Sprintf("%s %s => %s", arm.Con, strings.Join(arm.Vars, " "), Print(arm.Result)))
		}
		as := ""
		if n.As != "" {
			as = " as " + n.As
		}
		return fmt.Sprintf("match %s%s return %s with %s end", Print(n.Scrutinee), as, Print(n.Return), strings.Join(arms, " | "))
	case *Fix:
		params := make([]string, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, fmt.Sprintf("(%s:%s)", p.Name, Print(p.Ty)))
		}
		return fmt.Sprintf("fix %s %s : %s := %s", n.Self, strings.Join(params, " "), Print(n.Return), Print(n.Body))
	case *Annot:
		return fmt.Sprintf("(%s :: %s)", Print(n.Term), Print(n.Ty))
	case *Axiom:
		return fmt.Sprintf("axiom(%s)", Print(n.Ty))
	case *Hole:
		return "_" + n.Tag
	default:
		return "<?>"
	}
}
