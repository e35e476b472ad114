package cells

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/javajack/xlnest/header"
)

// Creator builds data blocks for source objects from the fields bound to a
// header tree. It only reads its inputs, so one Creator may expand many
// objects concurrently.
type Creator struct {
	fields     Fields
	strategies map[Cardinality]Strategy
}

// NewCreator creates a Creator using the default strategy table.
func NewCreator(fields Fields) *Creator {
	return &Creator{fields: fields, strategies: Strategies}
}

// WithStrategy returns a copy of c that expands fields of the given
// cardinality with s.
func (c *Creator) WithStrategy(card Cardinality, s Strategy) *Creator {
	table := make(map[Cardinality]Strategy, len(c.strategies)+1)
	for k, v := range c.strategies {
		table[k] = v
	}
	table[card] = s
	return &Creator{fields: c.fields, strategies: table}
}

// Create builds one block for obj over the bottom headers of owner. Leaf
// headers become cells; grouping headers are expanded by the strategy of
// their field and kept as nested blocks.
func (c *Creator) Create(obj any, owner *header.Header) (DataBlock, error) {
	if owner.OverData {
		cell, err := c.cell(obj, owner)
		if err != nil {
			return DataBlock{}, err
		}
		return NewDataBlock(owner, []DataCell{cell}), nil
	}

	var (
		cells  []DataCell
		nested map[*header.Header][]DataBlock
	)
	for _, h := range owner.BottomHeaders {
		if h.OverData {
			cell, err := c.cell(obj, h)
			if err != nil {
				return DataBlock{}, err
			}
			cells = append(cells, cell)
			continue
		}

		f, err := c.field(h)
		if err != nil {
			return DataBlock{}, err
		}
		strategy, ok := c.strategies[f.Cardinality]
		if !ok {
			return DataBlock{}, fmt.Errorf("no strategy for %s field %q", f.Cardinality, f.Name)
		}
		blocks, err := strategy.CreateBlocks(BlocksCreationDto{Field: f, Header: h, Object: obj}, c.Create)
		if err != nil {
			return DataBlock{}, fmt.Errorf("header %q: %w", h.Name, err)
		}
		if nested == nil {
			nested = make(map[*header.Header][]DataBlock)
		}
		nested[h] = blocks
	}
	return newNestedBlock(owner, cells, nested), nil
}

func (c *Creator) cell(obj any, h *header.Header) (DataCell, error) {
	f, err := c.field(h)
	if err != nil {
		return DataCell{}, err
	}
	v, _, err := f.Value(obj)
	if err != nil {
		return DataCell{}, &BlockError{Kind: CannotGetValueFromField, Field: f.Name, Err: err}
	}
	return NewDataCell(v), nil
}

func (c *Creator) field(h *header.Header) (Field, error) {
	f, ok := c.fields[h]
	if !ok {
		return Field{}, &BlockError{
			Kind:  CannotGetValueFromField,
			Field: h.Name,
			Err:   fmt.Errorf("no field bound to header %q", h.Name),
		}
	}
	return f, nil
}

// Expand builds the root block of every object, keeping input order. Up to
// workers objects are expanded at once; the first failure cancels the rest
// and no blocks are returned.
func (c *Creator) Expand(ctx context.Context, root *header.Header, objects []any, workers int) ([]DataBlock, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]DataBlock, len(objects))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, obj := range objects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			block, err := c.Create(obj, root)
			if err != nil {
				return fmt.Errorf("object %d: %w", i, err)
			}
			out[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
