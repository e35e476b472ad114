// Package cells expands source objects into data blocks laid out under a
// header tree.
package cells

import "github.com/javajack/xlnest/header"

// DataCell holds one value destined for one spreadsheet cell, or an explicit
// "no data" marker.
type DataCell struct {
	value   any
	present bool
}

// NewDataCell creates a cell holding v. A nil v yields a no-data cell.
func NewDataCell(v any) DataCell {
	return DataCell{value: v, present: v != nil}
}

// NoData creates the placeholder cell used where a value is absent.
func NoData() DataCell { return DataCell{} }

// Value returns the cell value, nil for a no-data cell.
func (c DataCell) Value() any { return c.value }

// HasData returns false for a no-data cell.
func (c DataCell) HasData() bool { return c.present }

// DataBlock is the output of one source object under one header subtree:
// a cell per leaf bottom header, and the blocks produced by each grouping
// bottom header.
type DataBlock struct {
	header *header.Header
	cells  []DataCell
	nested map[*header.Header][]DataBlock
}

// NewDataBlock creates a block without nested blocks.
func NewDataBlock(h *header.Header, cells []DataCell) DataBlock {
	return DataBlock{header: h, cells: cells}
}

func newNestedBlock(h *header.Header, cells []DataCell, nested map[*header.Header][]DataBlock) DataBlock {
	return DataBlock{header: h, cells: cells, nested: nested}
}

// Header returns the header the block was built for.
func (b DataBlock) Header() *header.Header { return b.header }

// Cells returns the leaf cells in bottom-header order.
func (b DataBlock) Cells() []DataCell { return b.cells }

// Nested returns the blocks produced under the grouping header h.
func (b DataBlock) Nested(h *header.Header) []DataBlock { return b.nested[h] }

// Height returns the number of rows the block needs: one, or the tallest
// stack of nested blocks.
func (b DataBlock) Height() int {
	height := 1
	for _, blocks := range b.nested {
		sum := 0
		for _, nb := range blocks {
			sum += nb.Height()
		}
		if sum > height {
			height = sum
		}
	}
	return height
}
