package writer

import (
	"errors"
	"fmt"
)

// OverflowError reports that the recipe needed more slots than the store's
// capacity. Nothing computed from such a store can be trusted.
type OverflowError struct {
	// Len is the store length recorded by the first overflow.
	Len int
	// Cap is the store's capacity.
	Cap int
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("recipe too large for configured capacity (overflow at %d, capacity %d)", e.Len, e.Cap)
}

// IsOverflow reports whether err is or wraps an *OverflowError.
func IsOverflow(err error) bool {
	var oe *OverflowError
	return errors.As(err, &oe)
}
