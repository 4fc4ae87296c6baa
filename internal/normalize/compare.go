package normalize

import (
	"github.com/cicore/kernel/internal/alpha"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/term"
)

// Compare reports whether a and b are definitionally equal under ctx:
// both fully normalized, then compared up to alpha-equivalence. This is
// the kernel's sole notion of type equality — no unification beyond
// alpha/beta/delta/iota is attempted.
func Compare(ctx *context.Context, a, b term.Term, fuel int) (bool, error) {
	na, err := Normalize(ctx, a, CBV, fuel)
	if err != nil {
		return false, err
	}
	nb, err := Normalize(ctx, b, CBV, fuel)
	if err != nil {
		return false, err
	}
	return alpha.Equal(na, nb), nil
}
