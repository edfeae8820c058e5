package blockstate

import (
	"errors"
	"fmt"
)

// ErrMaskOverflow means a blockstate has more property values than a Mask
// has bits. The index would be meaningless, so callers treat it as fatal.
var ErrMaskOverflow = errors.New("too many property values for the mask width")

// MalformedDefinitionError reports a blockstate that does not parse.
type MalformedDefinitionError struct {
	Reason string
	Err    error
}

func (e *MalformedDefinitionError) Error() string {
	if e.Err == nil {
		return "malformed blockstate: " + e.Reason
	}
	return fmt.Sprintf("malformed blockstate: %s: %v", e.Reason, e.Err)
}

func (e *MalformedDefinitionError) Unwrap() error {
	return e.Err
}

func malformed(err error, format string, args ...any) error {
	return &MalformedDefinitionError{Reason: fmt.Sprintf(format, args...), Err: err}
}
