package ranking

// Order selects which end of the scale receives rank 1.
type Order int

const (
	// Descending gives rank 1 to the largest score.
	Descending Order = iota
	// Ascending gives rank 1 to the smallest score.
	Ascending
)

// String returns the configuration name of the order.
func (o Order) String() string {
	if o == Ascending {
		return "ascending"
	}
	return "descending"
}

// ParseOrder maps "descending"/"desc" and "ascending"/"asc" to an Order.
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "", "descending", "desc":
		return Descending, true
	case "ascending", "asc":
		return Ascending, true
	}
	return Descending, false
}

// Option applies a configuration option to an adjustment.
type Option func(*settings)

type settings struct {
	order Order
}

// WithOrder sets the ranking direction. Concordance statistics do not depend on it.
func WithOrder(order Order) Option {
	return func(s *settings) {
		s.order = order
	}
}
