// Package dataio reads and writes the CSV and JSON files exchanged with farm staff.
package dataio

import (
	"errors"
	"fmt"
)

// ErrInvalidFile indicates the file as a whole cannot be used, e.g. missing headers or keys.
var ErrInvalidFile = errors.New("invalid file")

// RowError reports the first bad data row of an import. Row is the 1-based line number in
// the file, so the first data row after the header is row 2.
type RowError struct {
	Row     int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

func rowErrorf(index int, format string, args ...any) error {
	return &RowError{Row: index + 2, Message: fmt.Sprintf(format, args...)}
}

func invalidFilef(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidFile)
}
