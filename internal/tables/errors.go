package tables

import (
	"errors"
	"fmt"
)

// TableError represents a rejected table operation.
//
// Table errors are a programming-error class for callers building a
// record: a malformed edge or dangling reference means the caller's
// bookkeeping is wrong, not that the input data was unlucky. Callers
// are expected to propagate them and abort rather than retry.
type TableError struct {
	// Code identifies the error category.
	Code TableErrorCode

	// Table names the table the operation targeted.
	Table string

	// Message is a human-readable description.
	Message string
}

// TableErrorCode categorizes table errors.
type TableErrorCode string

const (
	// ErrCodeBadInterval indicates an empty, inverted, or out-of-bounds
	// genomic interval.
	ErrCodeBadInterval TableErrorCode = "BAD_INTERVAL"

	// ErrCodeBadReference indicates a row reference to an id that does
	// not exist in its target table.
	ErrCodeBadReference TableErrorCode = "BAD_REFERENCE"

	// ErrCodeBadTime indicates a time ordering violation, e.g. an edge
	// whose parent is not older than its child.
	ErrCodeBadTime TableErrorCode = "BAD_TIME"

	// ErrCodeBadPosition indicates a site position outside the genome.
	ErrCodeBadPosition TableErrorCode = "BAD_POSITION"

	// ErrCodeUnsorted indicates an operation that requires sorted,
	// indexed tables was attempted before Sort/BuildIndex.
	ErrCodeUnsorted TableErrorCode = "UNSORTED"

	// ErrCodeBadParam indicates an invalid collection-level parameter,
	// e.g. a non-positive sequence length.
	ErrCodeBadParam TableErrorCode = "BAD_PARAM"
)

// Error implements the error interface.
func (e *TableError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTableError reports whether err is (or wraps) a TableError with the
// given code.
func IsTableError(err error, code TableErrorCode) bool {
	var te *TableError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

func newTableError(code TableErrorCode, table, format string, args ...any) *TableError {
	return &TableError{
		Code:    code,
		Table:   table,
		Message: fmt.Sprintf(format, args...),
	}
}
