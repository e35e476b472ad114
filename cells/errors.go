package cells

import "fmt"

// FailKind classifies why blocks could not be created.
type FailKind int

const (
	CannotGetValueFromField FailKind = iota + 1
	CannotCastToCollection
)

func (k FailKind) String() string {
	switch k {
	case CannotGetValueFromField:
		return "CANNOT_GET_VALUE_FROM_FIELD"
	case CannotCastToCollection:
		return "CANNOT_CAST_TO_COLLECTION"
	default:
		return "UNKNOWN"
	}
}

// BlockError is returned when a source object cannot be expanded.
type BlockError struct {
	Kind  FailKind
	Field string
	Err   error
}

func (e *BlockError) Error() string {
	msg := "create data blocks: " + e.Kind.String()
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BlockError) Unwrap() error { return e.Err }

// Is reports whether target is a BlockError of the same kind.
func (e *BlockError) Is(target error) bool {
	t, ok := target.(*BlockError)
	return ok && t.Kind == e.Kind
}

var (
	ErrCannotGetValueFromField = &BlockError{Kind: CannotGetValueFromField}
	ErrCannotCastToCollection  = &BlockError{Kind: CannotCastToCollection}
)
