package xlnest

import (
	"fmt"
	"strings"

	"github.com/javajack/xlnest/cells"
	"github.com/javajack/xlnest/header"
	"github.com/javajack/xlnest/schema"
)

// Describe returns a human-readable tree of the schema's headers with the
// cells each one occupies. Useful for debugging schemas.
func Describe(s *schema.Schema, opts ...Option) (string, error) {
	allOpts := append([]Option{WithSchema(s)}, opts...)
	return NewExporter(allOpts...).Describe()
}

// Describe lays out the configured schema and renders it as a tree:
//
//	Sheet: Books (9 columns, data from row 4)
//	Book A1:I1
//	  BOOK_ID A2:A3 <- ID
//	  Lender G2:I2 <- Lenders [many]
func (e *Exporter) Describe() (string, error) {
	s, err := e.Schema()
	if err != nil {
		return "", err
	}
	layout, err := header.Calculate(s.Headers)
	if err != nil {
		return "", err
	}

	origin := e.opts.origin
	origin.Sheet = e.sheetName(s)

	var b strings.Builder
	fmt.Fprintf(&b, "Sheet: %s (%d columns, data from row %d)\n",
		origin.Sheet, layout.ColumnCount(), origin.Row+layout.FirstDataRow+2)
	describeHeader(&b, s.Root, s.Fields, layout, origin, 0)
	return b.String(), nil
}

func describeHeader(b *strings.Builder, h *header.Header, fields cells.Fields, layout *header.Layout, origin CellRef, indent int) {
	c, _ := layout.Of(h)
	area := NewAreaRef(origin.Offset(c.Depth, c.StartColumn), origin.Offset(c.Row, c.EndColumn))
	fmt.Fprintf(b, "%s%s %s", strings.Repeat("  ", indent), h.Name, area)
	if f, ok := fields[h]; ok {
		fmt.Fprintf(b, " <- %s", f.Name)
		if f.Cardinality == cells.Many {
			b.WriteString(" [many]")
		}
	}
	b.WriteByte('\n')
	for _, child := range h.BottomHeaders {
		describeHeader(b, child, fields, layout, origin, indent+1)
	}
}
