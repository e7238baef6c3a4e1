package scoring

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks an aggregation that failed because the
// underlying store could not be read. Absence of data is never reported
// with this error.
var ErrStoreUnavailable = errors.New("scoring store unavailable")

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
