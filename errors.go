package gridify

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidFilter is matched by every *FilterError
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrMappingNotFound is matched by every *MapperError
	ErrMappingNotFound = errors.New("mapping not found")

	errNilMapper        = errors.New("mapper is nil")
	errNilSource        = errors.New("source is nil")
	errUnsupportedValue = errors.New("unsupported target type")
)

// FilterError is returned when a filter cannot be turned into a predicate:
// the text did not parse, or the syntax tree has an invalid shape.
type FilterError struct {
	Message string
}

func (e *FilterError) Error() string {
	return e.Message
}

func (e *FilterError) Is(target error) bool {
	return target == ErrInvalidFilter
}

func newFilterError(format string, args ...any) *FilterError {
	return &FilterError{Message: fmt.Sprintf(format, args...)}
}

// MapperError reports a field that has no mapping
type MapperError struct {
	Field string
}

func (e *MapperError) Error() string {
	return "mapping '" + e.Field + "' not found"
}

func (e *MapperError) Is(target error) bool {
	return target == ErrMappingNotFound
}
