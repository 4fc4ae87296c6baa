package term

import "github.com/google/uuid"

// NewHole allocates a Hole with a fresh, collision-free tag. Grounded on
// the teacher's own use of google/uuid as a host value throughout
// internal/ext's plugin tests; here it gives every elaborator-filled
// placeholder a stable identity across dumps and logs even when several
// Holes are created in the same Match's Return clause.
func NewHole() *Hole {
	return &Hole{Tag: uuid.NewString()}
}
