package xlnest

// HyperlinkValue is a cell value written as a clickable link. Extractors
// may return it for any leaf header.
type HyperlinkValue struct {
	URL     string
	Display string
}

// String returns the text shown in the cell.
func (h HyperlinkValue) String() string {
	if h.Display != "" {
		return h.Display
	}
	return h.URL
}

// Hyperlink creates a HyperlinkValue.
func Hyperlink(url, display string) HyperlinkValue {
	return HyperlinkValue{URL: url, Display: display}
}

// linkSink is implemented by sinks that can attach links to cells. Other
// sinks receive only the display text.
type linkSink interface {
	SetHyperlink(ref CellRef, url string) error
}

// setValue writes value at ref, attaching a link when value is a
// HyperlinkValue.
func setValue(sink Sink, ref CellRef, value any) error {
	link, ok := value.(HyperlinkValue)
	if !ok {
		if p, isPtr := value.(*HyperlinkValue); isPtr && p != nil {
			link, ok = *p, true
		}
	}
	if !ok {
		return sink.SetCellValue(ref, value)
	}
	if err := sink.SetCellValue(ref, link.String()); err != nil {
		return err
	}
	if ls, ok := sink.(linkSink); ok && link.URL != "" {
		return ls.SetHyperlink(ref, link.URL)
	}
	return nil
}
