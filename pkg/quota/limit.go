package quota

import (
	"encoding/json"
	"strconv"
)

// Limit is either a finite count or unlimited. Unlimited is a distinct state,
// never a large number.
type Limit struct {
	n         int
	unlimited bool
}

// Unlimited returns the unbounded limit
func Unlimited() Limit {
	return Limit{unlimited: true}
}

// Finite returns a bounded limit. Negative values are treated as zero.
func Finite(n int) Limit {
	if n < 0 {
		n = 0
	}
	return Limit{n: n}
}

// IsUnlimited reports whether l is unbounded
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value returns the finite count. It is meaningless for unlimited limits.
func (l Limit) Value() int {
	return l.n
}

// Available reports whether at least one more action fits
func (l Limit) Available() bool {
	return l.unlimited || l.n > 0
}

// Minus returns l reduced by used, floored at zero
func (l Limit) Minus(used int) Limit {
	if l.unlimited {
		return l
	}
	return Finite(l.n - used)
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.n)
}

// MarshalJSON encodes unlimited as null
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return []byte("null"), nil
	}
	return json.Marshal(l.n)
}
