package dataset

import (
	"errors"
	"fmt"
)

// ErrColumnNotFound is matched by every ColumnNotFoundError.
var ErrColumnNotFound = errors.New("column not found")

// ErrRowWidth indicates a row whose cell count differs from the column count.
var ErrRowWidth = errors.New("row width does not match columns")

// ColumnNotFoundError names the column an operation tried to address.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column '%s' not found in dataset", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }
