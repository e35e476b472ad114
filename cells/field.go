package cells

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/javajack/xlnest/header"
)

// Cardinality is declared per field when the schema is built and selects the
// expansion strategy.
type Cardinality int

const (
	Single Cardinality = iota // scalar value or one nested object
	Many                      // to-many collection
)

func (c Cardinality) String() string {
	if c == Many {
		return "many"
	}
	return "single"
}

// Extractor reads one field off a source object. A nil value is reported as
// absent; err is reserved for genuine extraction failures.
type Extractor interface {
	Extract(obj any) (value any, present bool, err error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(obj any) (any, bool, error)

func (f ExtractorFunc) Extract(obj any) (any, bool, error) { return f(obj) }

// Field binds a header to the value it shows.
type Field struct {
	Name        string
	Cardinality Cardinality
	Extractor   Extractor
}

// Fields is the header → field correspondence of one schema.
type Fields map[*header.Header]Field

// Value extracts the field from obj. A nil source object and nil values
// (including typed nil pointers, slices and maps) are absent.
func (f Field) Value(obj any) (any, bool, error) {
	if isNil(obj) {
		return nil, false, nil
	}
	if f.Extractor == nil {
		return nil, false, fmt.Errorf("field %q has no extractor", f.Name)
	}
	v, ok, err := f.Extractor.Extract(obj)
	if err != nil {
		return nil, false, err
	}
	if !ok || isNil(v) {
		return nil, false, nil
	}
	return v, true, nil
}

// FieldFunc creates a field from a plain function.
func FieldFunc(name string, card Cardinality, fn func(obj any) (any, bool, error)) Field {
	return Field{Name: name, Cardinality: card, Extractor: ExtractorFunc(fn)}
}

type pathExtractor struct {
	path    string
	program *vm.Program
}

func (p *pathExtractor) Extract(obj any) (any, bool, error) {
	v, err := expr.Run(p.program, obj)
	if err != nil {
		return nil, false, fmt.Errorf("evaluate path %q: %w", p.path, err)
	}
	return v, v != nil, nil
}

// Path creates a field read by an expr-lang expression evaluated against the
// source object, e.g. "Name", "Author.FirstName" or `Tags[0]`. Struct fields,
// pointers and map keys are resolved by name.
func Path(path string, card Cardinality) (Field, error) {
	program, err := expr.Compile(path)
	if err != nil {
		return Field{}, fmt.Errorf("compile path %q: %w", path, err)
	}
	return Field{
		Name:        path,
		Cardinality: card,
		Extractor:   &pathExtractor{path: path, program: program},
	}, nil
}

// MustPath is like Path but panics on a compile error.
func MustPath(path string, card Cardinality) Field {
	f, err := Path(path, card)
	if err != nil {
		panic(err)
	}
	return f
}

// ValueOf creates a single-valued field with a typed getter.
func ValueOf[T, V any](name string, get func(T) V) Field {
	return FieldFunc(name, Single, func(obj any) (any, bool, error) {
		t, ok := obj.(T)
		if !ok {
			return nil, false, fmt.Errorf("field %q: source is %T, want %T", name, obj, *new(T))
		}
		return get(t), true, nil
	})
}

// ManyOf creates a to-many field with a typed getter. The element type is fixed
// at compile time, so the collection cast cannot fail.
func ManyOf[T, E any](name string, get func(T) []E) Field {
	return FieldFunc(name, Many, func(obj any) (any, bool, error) {
		t, ok := obj.(T)
		if !ok {
			return nil, false, fmt.Errorf("field %q: source is %T, want %T", name, obj, *new(T))
		}
		items := get(t)
		if items == nil {
			return nil, false, nil
		}
		out := make([]any, len(items))
		for i, e := range items {
			out[i] = e
		}
		return out, true, nil
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
