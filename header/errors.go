package header

import "fmt"

// FailKind classifies why a layout could not be calculated.
type FailKind int

const (
	NoMainHeader    FailKind = iota + 1 // zero or several roots
	NoBottomHeaders                     // grouping header without children
	NoDataHeaders                       // no over-data header at all
	MalformedHeader                     // width or leaf flag disagrees with the tree shape
)

// String returns the message key for the kind.
func (k FailKind) String() string {
	switch k {
	case NoMainHeader:
		return "NO_MAIN_HEADER"
	case NoBottomHeaders:
		return "NO_BOTTOM_HEADERS"
	case NoDataHeaders:
		return "NO_DATA_HEADERS"
	case MalformedHeader:
		return "MALFORMED_HEADER"
	default:
		return "UNKNOWN"
	}
}

// CalculateError is returned by Calculate. Match it with errors.Is against
// the Err* sentinels.
type CalculateError struct {
	Kind   FailKind
	Header string // offending header name, if any
	Detail string
}

func (e *CalculateError) Error() string {
	msg := "calculate header coordinates: " + e.Kind.String()
	if e.Header != "" {
		msg += fmt.Sprintf(" (header %q)", e.Header)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is a CalculateError of the same kind.
func (e *CalculateError) Is(target error) bool {
	t, ok := target.(*CalculateError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoMainHeader    = &CalculateError{Kind: NoMainHeader}
	ErrNoBottomHeaders = &CalculateError{Kind: NoBottomHeaders}
	ErrNoDataHeaders   = &CalculateError{Kind: NoDataHeaders}
	ErrMalformedHeader = &CalculateError{Kind: MalformedHeader}
)

func fail(kind FailKind, h *Header, format string, args ...any) error {
	e := &CalculateError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
	if h != nil {
		e.Header = h.Name
	}
	return e
}
