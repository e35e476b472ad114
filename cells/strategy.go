package cells

import (
	"fmt"
	"reflect"

	"github.com/javajack/xlnest/header"
)

// BlocksCreationDto carries one expansion call: the relationship field, the
// header subtree it fills and the source object owning the field.
type BlocksCreationDto struct {
	Field  Field
	Header *header.Header
	Object any
}

// BlockFunc builds one block for obj over the bottom headers of owner.
type BlockFunc func(obj any, owner *header.Header) (DataBlock, error)

// Strategy decides how many blocks one header subtree contributes for one
// source object.
type Strategy interface {
	CreateBlocks(dto BlocksCreationDto, create BlockFunc) ([]DataBlock, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(dto BlocksCreationDto, create BlockFunc) ([]DataBlock, error)

func (f StrategyFunc) CreateBlocks(dto BlocksCreationDto, create BlockFunc) ([]DataBlock, error) {
	return f(dto, create)
}

// Strategies selects the strategy by the cardinality declared on the field.
var Strategies = map[Cardinality]Strategy{
	Single: SingleStrategy{},
	Many:   ManyStrategy{},
}

// SingleStrategy expands a nested object into exactly one block. An absent
// object still yields one block whose cells carry no data.
type SingleStrategy struct{}

func (SingleStrategy) CreateBlocks(dto BlocksCreationDto, create BlockFunc) ([]DataBlock, error) {
	v, _, err := dto.Field.Value(dto.Object)
	if err != nil {
		return nil, &BlockError{Kind: CannotGetValueFromField, Field: dto.Field.Name, Err: err}
	}
	block, err := create(v, dto.Header)
	if err != nil {
		return nil, err
	}
	return []DataBlock{block}, nil
}

// ManyStrategy expands a to-many field into one block per element, in
// collection order. An absent collection yields a single placeholder block
// so sibling columns stay aligned.
type ManyStrategy struct{}

func (ManyStrategy) CreateBlocks(dto BlocksCreationDto, create BlockFunc) ([]DataBlock, error) {
	v, present, err := dto.Field.Value(dto.Object)
	if err != nil {
		return nil, &BlockError{Kind: CannotGetValueFromField, Field: dto.Field.Name, Err: err}
	}
	if !present {
		return []DataBlock{NewDataBlock(dto.Header, []DataCell{NoData()})}, nil
	}

	items, err := toElements(v)
	if err != nil {
		return nil, &BlockError{Kind: CannotCastToCollection, Field: dto.Field.Name, Err: err}
	}
	blocks := make([]DataBlock, 0, len(items))
	for i, item := range items {
		block, err := create(item, dto.Header)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", dto.Field.Name, i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// toElements converts a slice or array to []any.
func toElements(v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot iterate over %T", v)
	}
}
