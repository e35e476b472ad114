// Package xlnest writes nested object graphs to spreadsheets as a merged,
// multi-row header grid with the data rows beneath it.
package xlnest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"

	"github.com/javajack/xlnest/cells"
	"github.com/javajack/xlnest/header"
	"github.com/javajack/xlnest/schema"
)

// Exporter lays out a schema and writes source objects under it.
type Exporter struct {
	opts *Options

	schemaOnce sync.Once
	schema     *schema.Schema
	schemaErr  error
}

// NewExporter creates an Exporter with the given options.
func NewExporter(opts ...Option) *Exporter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Exporter{opts: o}
}

// Export writes objects with the YAML schema at schemaPath to outputPath.
func Export(ctx context.Context, schemaPath, outputPath string, objects any, opts ...Option) error {
	allOpts := append([]Option{WithSchemaFile(schemaPath)}, opts...)
	return NewExporter(allOpts...).Export(ctx, objects, outputPath)
}

// ExportBytes writes objects with the YAML schema at schemaPath and returns
// the workbook bytes.
func ExportBytes(ctx context.Context, schemaPath string, objects any, opts ...Option) ([]byte, error) {
	allOpts := append([]Option{WithSchemaFile(schemaPath)}, opts...)
	return NewExporter(allOpts...).ExportBytes(ctx, objects)
}

// Export writes objects to a new workbook at outputPath.
func (e *Exporter) Export(ctx context.Context, objects any, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file %q: %w", outputPath, err)
	}

	if err := e.ExportWriter(ctx, objects, out); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("close output file %q: %w", outputPath, err)
	}
	return nil
}

// ExportBytes writes objects to a new workbook and returns it as bytes.
func (e *Exporter) ExportBytes(ctx context.Context, objects any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.ExportWriter(ctx, objects, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportWriter writes objects to a new workbook and writes it to w.
func (e *Exporter) ExportWriter(ctx context.Context, objects any, w io.Writer) error {
	s, err := e.Schema()
	if err != nil {
		return err
	}
	sink, err := NewWorkbook(e.sheetName(s))
	if err != nil {
		return err
	}
	defer sink.Close()

	if _, err := e.ExportTo(ctx, objects, sink); err != nil {
		return err
	}
	return sink.Write(w)
}

// ExportTo writes the header grid and the data rows of objects to sink and
// returns the size of the written region.
func (e *Exporter) ExportTo(ctx context.Context, objects any, sink Sink) (Size, error) {
	log := e.opts.logger
	s, err := e.Schema()
	if err != nil {
		return ZeroSize, err
	}
	items, err := toObjects(objects)
	if err != nil {
		return ZeroSize, err
	}

	layout, err := header.Calculate(s.Headers)
	if err != nil {
		return ZeroSize, err
	}
	log.Debug().
		Str("root", s.Root.Name).
		Int("columns", layout.ColumnCount()).
		Int("header_rows", layout.Height()).
		Msg("header layout calculated")

	blocks, err := cells.NewCreator(s.Fields).Expand(ctx, s.Root, items, e.opts.concurrency)
	if err != nil {
		return ZeroSize, err
	}
	log.Debug().Int("objects", len(items)).Int("workers", e.opts.concurrency).Msg("data blocks created")

	origin := e.opts.origin
	origin.Sheet = e.sheetName(s)
	w := &gridWriter{
		sink:          sink,
		origin:        origin,
		layout:        layout,
		mergeRepeated: e.opts.mergeRepeated,
	}
	if err := w.writeHeaders(); err != nil {
		return ZeroSize, fmt.Errorf("write headers: %w", err)
	}
	rows, err := w.writeBlocks(blocks)
	if err != nil {
		return ZeroSize, err
	}
	log.Debug().Str("sheet", origin.Sheet).Str("origin", origin.CellName()).Int("data_rows", rows).Msg("export written")

	return Size{Width: layout.ColumnCount(), Height: layout.Height() + rows}, nil
}

// Schema returns the configured schema, loading it once if it was given as a
// file or reader. It is safe for concurrent use.
func (e *Exporter) Schema() (*schema.Schema, error) {
	e.schemaOnce.Do(func() {
		e.schema, e.schemaErr = e.loadSchema()
	})
	return e.schema, e.schemaErr
}

func (e *Exporter) loadSchema() (*schema.Schema, error) {
	o := e.opts
	switch {
	case o.schema != nil:
		return o.schema, nil
	case o.schemaReader != nil:
		return schema.Load(o.schemaReader)
	case o.schemaPath != "":
		return schema.LoadFile(o.schemaPath)
	}
	return nil, fmt.Errorf("no schema specified: use WithSchema, WithSchemaFile or WithSchemaReader")
}

// Layout calculates the header layout of the configured schema.
func (e *Exporter) Layout() (*header.Layout, error) {
	s, err := e.Schema()
	if err != nil {
		return nil, err
	}
	return header.Calculate(s.Headers)
}

func (e *Exporter) sheetName(s *schema.Schema) string {
	name := e.opts.sheet
	if name == "" {
		name = e.opts.origin.Sheet
	}
	if name == "" && s != nil {
		name = s.Sheet
	}
	if name == "" {
		name = "Sheet1"
	}
	return SafeSheetName(name)
}

// toObjects converts a slice or array of source objects to []any. Any other
// value is exported as a single object.
func toObjects(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Chan, reflect.Func:
		return nil, fmt.Errorf("cannot export %T", v)
	default:
		return []any{v}, nil
	}
}
