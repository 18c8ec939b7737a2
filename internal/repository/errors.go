package repository

import (
	"errors"
	"fmt"
)

// MaxOutboxRetries is the number of delivery attempts after which an outbox
// event is left in FAILED for manual inspection.
const MaxOutboxRetries = 5

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is referenced by other records")
)

// DuplicateError reports which unique field was violated.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// IsDuplicate reports whether err is a unique violation on field.
func IsDuplicate(err error, field string) bool {
	var dup *DuplicateError
	return errors.As(err, &dup) && dup.Field == field
}
