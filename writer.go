package xlnest

import (
	"fmt"

	"github.com/javajack/xlnest/cells"
	"github.com/javajack/xlnest/header"
)

// gridWriter places a calculated header layout and the data blocks below it
// onto a sink, relative to origin.
type gridWriter struct {
	sink          Sink
	origin        CellRef
	layout        *header.Layout
	mergeRepeated bool
}

func (w *gridWriter) at(row, col int) CellRef {
	return w.origin.Offset(row, col)
}

// writeHeaders writes every header label at its depth and start column.
// Wide headers are merged across their span; over-data headers above the
// data row are merged down to it.
func (w *gridWriter) writeHeaders() error {
	for _, h := range w.layout.Headers() {
		c, ok := w.layout.Of(h)
		if !ok {
			return fmt.Errorf("header %q has no coordinates", h.Name)
		}
		area := NewAreaRef(w.at(c.Depth, c.StartColumn), w.at(c.Row, c.EndColumn))
		if err := w.sink.SetCellValue(area.First, h.Name); err != nil {
			return err
		}
		if !area.IsSingleCell() {
			if err := w.sink.MergeCells(area); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeBlocks writes one root block per source object, each starting below
// the previous one. It returns the number of data rows written.
func (w *gridWriter) writeBlocks(blocks []cells.DataBlock) (int, error) {
	row := w.layout.FirstDataRow + 1
	start := row
	for i, b := range blocks {
		height := b.Height()
		if err := w.writeBlock(b, row, height); err != nil {
			return 0, fmt.Errorf("write object %d: %w", i, err)
		}
		row += height
	}
	return row - start, nil
}

// writeBlock writes b at row. span is the number of rows the block may fill,
// at least its own height.
func (w *gridWriter) writeBlock(b cells.DataBlock, row, span int) error {
	owner := b.Header()
	if owner.OverData {
		if len(b.Cells()) == 0 {
			return nil
		}
		return w.writeCell(b.Cells()[0], owner, row, span)
	}

	next := 0
	for _, h := range owner.BottomHeaders {
		if h.OverData {
			if next < len(b.Cells()) {
				if err := w.writeCell(b.Cells()[next], h, row, span); err != nil {
					return err
				}
			}
			next++
			continue
		}

		nested := b.Nested(h)
		if len(nested) == 1 {
			// one nested object shares the rows of its parent
			if err := w.writeBlock(nested[0], row, span); err != nil {
				return err
			}
			continue
		}
		r := row
		for _, nb := range nested {
			height := nb.Height()
			if err := w.writeBlock(nb, r, height); err != nil {
				return err
			}
			r += height
		}
	}
	return nil
}

func (w *gridWriter) writeCell(cell cells.DataCell, h *header.Header, row, span int) error {
	if !cell.HasData() {
		return nil
	}
	c, ok := w.layout.Of(h)
	if !ok {
		return fmt.Errorf("header %q has no coordinates", h.Name)
	}
	ref := w.at(row, c.StartColumn)
	if err := setValue(w.sink, ref, cell.Value()); err != nil {
		return err
	}
	if w.mergeRepeated && span > 1 {
		return w.sink.MergeCells(NewAreaRef(ref, ref.Offset(span-1, 0)))
	}
	return nil
}
