package wfc

import (
	"errors"
	"fmt"
)

var (
	ErrNoCatalog      = errors.New("wfc: a terrain catalog is required")
	ErrInvalidSize    = errors.New("wfc: invalid grid size")
	ErrCollapseFailed = errors.New("wfc: cell has no weighted possibility to collapse to")
	ErrStall          = errors.New("wfc: attempt budget exhausted before the grid completed")
	ErrRestartLimit   = errors.New("wfc: too many restarts")
	ErrIncomplete     = errors.New("wfc: grid is not fully collapsed")
)

// ContradictionError reports the cell whose possibilities ran out during
// propagation.
type ContradictionError struct {
	X, Y int
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("wfc: contradiction at (%d,%d)", e.X, e.Y)
}
