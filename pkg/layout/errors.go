package layout

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies a layout file decoding failure.
type ParseErrorKind int

const (
	// UnknownValue is an unrecognised keycode token.
	UnknownValue ParseErrorKind = iota
	// MissingValue is a required field that is absent.
	MissingValue
	// WrongType is a JSON value of the wrong type.
	WrongType
	// WrongLength is an array with the wrong number of elements.
	WrongLength
	// WrongValue is a field whose value is not the one required.
	WrongValue
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnknownValue:
		return "unknown value"
	case MissingValue:
		return "missing value"
	case WrongType:
		return "wrong type"
	case WrongLength:
		return "wrong length"
	case WrongValue:
		return "wrong value"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

// ParseError is a typed layout decoding failure.
// Field is a JSON path such as "layers[1][5]".
type ParseError struct {
	Kind     ParseErrorKind
	Field    string
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	where := ""
	if e.Field != "" {
		where = fmt.Sprintf(" at %s", e.Field)
	}
	switch e.Kind {
	case UnknownValue:
		return fmt.Sprintf("unknown value %q%s", e.Found, where)
	case MissingValue:
		return fmt.Sprintf("missing value%s", where)
	default:
		return fmt.Sprintf("%s%s: expected %s, found %s", e.Kind, where, e.Expected, e.Found)
	}
}

// IsParseError reports whether err wraps a *ParseError of the given kind.
func IsParseError(err error, kind ParseErrorKind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == kind
}

// InvariantError is the panic value raised when the derived indices of an
// AnnotatedLayout disagree with its layout. It always indicates a defect or a
// malformed starting layout.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("layout invariant violated in %s: %s", e.Op, e.Detail)
}

func invariantf(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
