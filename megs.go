package megs

import "fmt"

// Point is a location in canvas space. Z orders overlapping instances;
// higher is on top.
type Point struct {
	X, Y, Z float32
}

func (p Point) String() string {
	if p.Z == 0 {
		return fmt.Sprintf("(%g, %g)", p.X, p.Y)
	}
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Arity is an inclusive range of connection counts.
type Arity struct {
	Min, Max int
}

// Contains reports whether n is within the range.
func (a Arity) Contains(n int) bool {
	return n >= a.Min && n <= a.Max
}

func (a Arity) String() string {
	if a.Min == a.Max {
		return fmt.Sprintf("%d", a.Min)
	}
	return fmt.Sprintf("%d..%d", a.Min, a.Max)
}
