package series

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/exp/constraints"
)

// Kind is the semantic classification of a column. It decides which filter
// and aggregation operations apply.
type Kind int

const (
	// Categorical columns are filtered by discrete-value membership
	Categorical Kind = iota
	// Numeric columns support range filtering and aggregation
	Numeric
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "numeric":
		*k = Numeric
	case "categorical":
		*k = Categorical
	default:
		return fmt.Errorf("unknown column kind %q", text)
	}
	return nil
}

// Classify infers the semantic kind of a column from its Arrow type.
// Integer and floating point columns are Numeric, everything else Categorical.
func Classify(c *Column) Kind {
	switch c.DataType().ID() {
	case arrow.INT64, arrow.FLOAT64:
		return Numeric
	default:
		return Categorical
	}
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
