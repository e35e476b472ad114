package xlnest

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/javajack/xlnest/schema"
)

// Options holds configuration for the Exporter.
type Options struct {
	schema        *schema.Schema
	schemaPath    string
	schemaReader  io.Reader
	sheet         string
	origin        CellRef
	mergeRepeated bool
	concurrency   int
	logger        zerolog.Logger
}

func defaultOptions() *Options {
	return &Options{
		concurrency: 1,
		logger:      zerolog.Nop(),
	}
}

// Option configures the Exporter.
type Option func(*Options)

// WithSchema sets an already built schema.
func WithSchema(s *schema.Schema) Option {
	return func(o *Options) { o.schema = s }
}

// WithSchemaFile sets the path of a YAML schema.
func WithSchemaFile(path string) Option {
	return func(o *Options) { o.schemaPath = path }
}

// WithSchemaReader sets a YAML schema as an io.Reader.
func WithSchemaReader(r io.Reader) Option {
	return func(o *Options) { o.schemaReader = r }
}

// WithSheet sets the output sheet name (default: the schema's sheet, then "Sheet1").
func WithSheet(name string) Option {
	return func(o *Options) { o.sheet = name }
}

// WithOrigin sets the top-left cell of the header grid (default: A1).
func WithOrigin(ref CellRef) Option {
	return func(o *Options) { o.origin = ref }
}

// WithMergeRepeated merges single-valued cells down over all rows their
// object occupies instead of writing them on the first row only.
func WithMergeRepeated(merge bool) Option {
	return func(o *Options) { o.mergeRepeated = merge }
}

// WithConcurrency sets how many source objects are expanded at once (default: 1).
func WithConcurrency(n int) Option {
	return func(o *Options) { o.concurrency = n }
}

// WithLogger sets the logger used for debug output (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.logger = l }
}
