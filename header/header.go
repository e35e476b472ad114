// Package header models the label hierarchy drawn above spreadsheet columns
// and computes where every label sits in the header grid.
package header

// Header is a node in an ordered header tree. The order of BottomHeaders is
// the column order of the leaves below it.
type Header struct {
	Name          string
	BottomHeaders []*Header
	OverData      bool // leaf directly above a data column
	Width         int  // number of leaf descendants, 1 for a leaf
}

// Leaf creates an over-data header.
func Leaf(name string) *Header {
	return &Header{Name: name, OverData: true, Width: 1}
}

// Group creates a grouping header over the given children and sums their widths.
func Group(name string, children ...*Header) *Header {
	h := &Header{Name: name, BottomHeaders: children}
	for _, c := range children {
		h.Width += c.Width
	}
	return h
}

// IsLeaf returns true if the header has no children.
func (h *Header) IsLeaf() bool { return len(h.BottomHeaders) == 0 }

func (h *Header) String() string { return h.Name }

// Flatten returns every header reachable from root in pre-order.
// For the Book tree that is Book, BOOK_ID, ..., Author, AUTHOR_ID, ...
func Flatten(root *Header) []*Header {
	if root == nil {
		return nil
	}
	var out []*Header
	var walk func(h *Header)
	walk = func(h *Header) {
		out = append(out, h)
		for _, c := range h.BottomHeaders {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Leaves returns the over-data headers below root from left to right.
func Leaves(root *Header) []*Header {
	var out []*Header
	for _, h := range Flatten(root) {
		if h.OverData {
			out = append(out, h)
		}
	}
	return out
}
