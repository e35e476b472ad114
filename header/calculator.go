package header

// Coordinates is the position of one header in the header grid.
// Columns are 0-based and inclusive.
type Coordinates struct {
	Row         int // final row; over-data headers share the deepest leaf row
	Depth       int // distance from the root before leaf alignment
	StartColumn int
	EndColumn   int
}

// Span returns the number of columns covered.
func (c Coordinates) Span() int { return c.EndColumn - c.StartColumn + 1 }

// Layout holds the coordinates of every header of one tree. It is keyed by
// node identity and never writes to the headers themselves, so a tree can be
// laid out any number of times, concurrently.
type Layout struct {
	FirstDataRow int

	root    *Header
	order   []*Header
	coords  map[*Header]Coordinates
	columns int
}

// Of returns the coordinates of h.
func (l *Layout) Of(h *Header) (Coordinates, bool) {
	c, ok := l.coords[h]
	return c, ok
}

// Root returns the main header.
func (l *Layout) Root() *Header { return l.root }

// Headers returns all headers in pre-order.
func (l *Layout) Headers() []*Header { return l.order }

// Leaves returns the over-data headers in column order.
func (l *Layout) Leaves() []*Header {
	out := make([]*Header, 0, l.columns)
	for _, h := range l.order {
		if h.OverData {
			out = append(out, h)
		}
	}
	return out
}

// ColumnCount returns the number of data columns.
func (l *Layout) ColumnCount() int { return l.columns }

// Height returns the number of header rows.
func (l *Layout) Height() int { return l.FirstDataRow + 1 }

// Calculate assigns a row and a column span to every header in headers,
// which must be the full set of headers reachable from a single root.
//
// Leaves take consecutive columns in depth-first order, a grouping header
// starts where its first child starts and spans its width, rows follow depth,
// and finally every over-data header is pushed down to the deepest leaf row
// so the data region starts at one flat row.
func Calculate(headers []*Header) (*Layout, error) {
	root, err := selectMainHeader(headers)
	if err != nil {
		return nil, err
	}
	if !anyOverData(headers) {
		return nil, fail(NoDataHeaders, nil, "no over-data header among %d headers", len(headers))
	}

	reached, err := verify(root)
	if err != nil {
		return nil, err
	}
	for _, h := range headers {
		if h != nil && !reached[h] {
			return nil, fail(MalformedHeader, h, "not reachable from main header %q", root.Name)
		}
	}

	l := &Layout{
		root:   root,
		order:  make([]*Header, 0, len(reached)),
		coords: make(map[*Header]Coordinates, len(reached)),
	}
	l.assign(root, 0)
	l.alignDataRows()
	return l, nil
}

// selectMainHeader finds the only header that is nobody's child.
func selectMainHeader(headers []*Header) (*Header, error) {
	isChild := make(map[*Header]bool, len(headers))
	for _, h := range headers {
		if h == nil {
			continue
		}
		for _, c := range h.BottomHeaders {
			isChild[c] = true
		}
	}
	var roots []*Header
	seen := make(map[*Header]bool, len(headers))
	for _, h := range headers {
		if h == nil || seen[h] {
			continue
		}
		seen[h] = true
		if !isChild[h] {
			roots = append(roots, h)
		}
	}
	if len(roots) != 1 {
		return nil, fail(NoMainHeader, nil, "found %d headers without a parent", len(roots))
	}
	return roots[0], nil
}

func anyOverData(headers []*Header) bool {
	for _, h := range headers {
		if h != nil && h.OverData {
			return true
		}
	}
	return false
}

// verify walks the tree bottom-up and checks that flags and widths agree
// with the shape. It returns the set of reached headers.
func verify(root *Header) (map[*Header]bool, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Header]int)

	var walk func(h *Header) error
	walk = func(h *Header) error {
		switch state[h] {
		case visiting:
			return fail(MalformedHeader, h, "cycle in header tree")
		case done:
			return fail(MalformedHeader, h, "header has more than one parent")
		}
		state[h] = visiting

		if h.OverData {
			if len(h.BottomHeaders) > 0 {
				return fail(MalformedHeader, h, "over-data header has %d bottom headers", len(h.BottomHeaders))
			}
			if h.Width != 1 {
				return fail(MalformedHeader, h, "over-data header width is %d", h.Width)
			}
			state[h] = done
			return nil
		}
		if len(h.BottomHeaders) == 0 {
			return fail(NoBottomHeaders, h, "grouping header has no bottom headers")
		}

		sum := 0
		for _, c := range h.BottomHeaders {
			if c == nil {
				return fail(MalformedHeader, h, "nil bottom header")
			}
			if err := walk(c); err != nil {
				return err
			}
			sum += c.Width
		}
		if h.Width != sum {
			return fail(MalformedHeader, h, "width %d, bottom headers sum to %d", h.Width, sum)
		}
		state[h] = done
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	reached := make(map[*Header]bool, len(state))
	for h := range state {
		reached[h] = true
	}
	return reached, nil
}

// assign is a single pre-order pass: the next free column when a header is
// entered is the start column of its leftmost leaf.
func (l *Layout) assign(h *Header, depth int) {
	l.order = append(l.order, h)
	start := l.columns
	if h.OverData {
		l.columns++
	}
	l.coords[h] = Coordinates{
		Row:         depth,
		Depth:       depth,
		StartColumn: start,
		EndColumn:   start + h.Width - 1,
	}
	for _, c := range h.BottomHeaders {
		l.assign(c, depth+1)
	}
}

func (l *Layout) alignDataRows() {
	maxRow := 0
	for _, h := range l.order {
		if c := l.coords[h]; h.OverData && c.Row > maxRow {
			maxRow = c.Row
		}
	}
	for _, h := range l.order {
		if !h.OverData {
			continue
		}
		c := l.coords[h]
		c.Row = maxRow
		l.coords[h] = c
	}
	l.FirstDataRow = maxRow
}
