package expr

import (
	"errors"
	"fmt"
)

// ErrEmptyResultSet signals a condition statically known to match no rows.
// It is a control signal, not a failure: composing nodes (Case, OR trees)
// consume it to skip the branch, and it must not escape them.
var ErrEmptyResultSet = errors.New("empty result set")

// ErrFullResultSet signals a condition statically known to match every row,
// such as the negation of one matching none. A filter consuming it renders
// no WHERE clause; a Case branch carrying it supersedes the default.
var ErrFullResultSet = errors.New("full result set")

// ErrOuterQueryOnly is returned when a resolved outer reference is rendered
// directly, which means a subquery was used outside any enclosing query.
var ErrOuterQueryOnly = errors.New("this expression references an outer query and may only be used inside a subquery")

// FieldError is a configuration error in query construction: an unknown
// reference, an unresolvable output type, or mixed source types without a
// declared output field.
type FieldError struct {
	msg string
}

func (e *FieldError) Error() string { return e.msg }

// NewFieldError builds a configuration error with Sprintf-style formatting.
func NewFieldError(format string, args ...any) *FieldError {
	return &FieldError{msg: fmt.Sprintf(format, args...)}
}

func fieldErrorf(format string, args ...any) *FieldError {
	return NewFieldError(format, args...)
}

// IsFieldError reports whether err is a configuration error.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
