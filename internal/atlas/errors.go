package atlas

import "fmt"

// CapacityError is returned for a variant id that has no cell.
type CapacityError struct {
	ID       int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("variant %d does not fit in an atlas of %d cells", e.ID, e.Capacity)
}

// RenderError collects the faces of one variant that could not be drawn.
type RenderError struct {
	ID  int
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("variant %d: %v", e.ID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
