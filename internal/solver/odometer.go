package solver

// odometer enumerates the Cartesian product of option choices for the
// unresolved questions, least-significant digit last. advance reports
// false once the product space is spent.
type odometer struct {
	digits []int
	radii  []int
}

func newOdometer(radii []int) *odometer {
	return &odometer{digits: make([]int, len(radii)), radii: radii}
}

func (o *odometer) current() []int {
	out := make([]int, len(o.digits))
	copy(out, o.digits)
	return out
}

func (o *odometer) advance() bool {
	for i := len(o.digits) - 1; i >= 0; i-- {
		o.digits[i]++
		if o.digits[i] < o.radii[i] {
			return true
		}
		o.digits[i] = 0
	}
	return false
}
