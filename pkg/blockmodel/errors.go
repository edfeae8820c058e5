package blockmodel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRotation is returned for rotations that are not quarter turns.
var ErrInvalidRotation = errors.New("rotation is not a multiple of 90")

// MissingModelError reports a model whose parent chain could not be walked:
// an ancestor is absent or unreadable, or the chain loops.
type MissingModelError struct {
	Model   Location
	Missing Location
	Chain   []Location
	Cycle   bool
	Err     error
}

func (e *MissingModelError) Error() string {
	names := make([]string, len(e.Chain))
	for i, l := range e.Chain {
		names[i] = l.String()
	}
	path := strings.Join(names, " -> ")
	if e.Cycle {
		return fmt.Sprintf("model %s: parent cycle at %s (%s)", e.Model, e.Missing, path)
	}
	return fmt.Sprintf("model %s: could not load %s (%s): %v", e.Model, e.Missing, path, e.Err)
}

func (e *MissingModelError) Unwrap() error {
	return e.Err
}
