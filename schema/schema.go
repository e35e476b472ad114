// Package schema builds header trees and their field bindings from a
// declarative description, either a YAML document or Go values.
package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/javajack/xlnest/cells"
	"github.com/javajack/xlnest/header"
)

// Document is the YAML form of a schema.
//
//	sheet: Books
//	root:
//	  name: Book
//	  columns:
//	    - {name: BOOK_ID, path: ID}
//	    - name: Lender
//	      path: Lenders
//	      many: true
//	      columns:
//	        - {name: LENDER_ID, path: ID}
type Document struct {
	Sheet string `yaml:"sheet"`
	Root  Node   `yaml:"root"`
}

// Node describes one header. Leaves have no columns. Path is an expression
// evaluated against the parent object; Field, when set, takes precedence.
type Node struct {
	Name    string       `yaml:"name"`
	Path    string       `yaml:"path"`
	Many    bool         `yaml:"many"`
	Columns []Node       `yaml:"columns"`
	Field   *cells.Field `yaml:"-"`
}

// Schema is a built header tree with its header → field correspondence.
type Schema struct {
	Sheet   string
	Root    *header.Header
	Headers []*header.Header // pre-order
	Fields  cells.Fields
}

// Root describes the main header. It reads no field of its own.
func Root(name string, columns ...Node) Node {
	return Node{Name: name, Columns: columns}
}

// Column describes a leaf showing the value at path.
func Column(name, path string) Node {
	return Node{Name: name, Path: path}
}

// Object describes a group filled from the nested object at path.
func Object(name, path string, columns ...Node) Node {
	return Node{Name: name, Path: path, Columns: columns}
}

// Collection describes a group repeated for every element at path.
func Collection(name, path string, columns ...Node) Node {
	return Node{Name: name, Path: path, Many: true, Columns: columns}
}

// Bind describes a header read by a prebuilt field.
func Bind(name string, f cells.Field, columns ...Node) Node {
	return Node{Name: name, Field: &f, Many: f.Cardinality == cells.Many, Columns: columns}
}

// Load decodes a YAML document and builds it.
func Load(r io.Reader) (*Schema, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	s, err := Build(doc.Root)
	if err != nil {
		return nil, err
	}
	s.Sheet = doc.Sheet
	return s, nil
}

// LoadFile reads a YAML schema from disk.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Decode reads a YAML document without building it.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode schema: %w", err)
	}
	return doc, nil
}

// Build turns a node tree into headers and fields. Widths and over-data flags
// are derived from the shape.
func Build(root Node) (*Schema, error) {
	b := &builder{fields: make(cells.Fields)}
	h, err := b.build(root, nil, true)
	if err != nil {
		return nil, err
	}
	return &Schema{
		Root:    h,
		Headers: header.Flatten(h),
		Fields:  b.fields,
	}, nil
}

type builder struct {
	fields cells.Fields
}

func (b *builder) build(n Node, trail []string, isRoot bool) (*header.Header, error) {
	trail = append(trail, n.Name)
	where := strings.Join(trail, "/")
	if strings.TrimSpace(n.Name) == "" {
		return nil, fmt.Errorf("schema node %q: empty name", where)
	}

	var h *header.Header
	if len(n.Columns) == 0 {
		h = header.Leaf(n.Name)
	} else {
		children := make([]*header.Header, 0, len(n.Columns))
		for _, c := range n.Columns {
			ch, err := b.build(c, trail, false)
			if err != nil {
				return nil, err
			}
			children = append(children, ch)
		}
		h = header.Group(n.Name, children...)
	}

	// the main header of a grouped tree is the source object itself
	if isRoot && !h.OverData && n.Field == nil && n.Path == "" {
		return h, nil
	}
	f, err := fieldOf(n)
	if err != nil {
		return nil, fmt.Errorf("schema node %q: %w", where, err)
	}
	b.fields[h] = f
	return h, nil
}

func fieldOf(n Node) (cells.Field, error) {
	if n.Field != nil {
		return *n.Field, nil
	}
	if n.Path == "" {
		return cells.Field{}, fmt.Errorf("missing path")
	}
	card := cells.Single
	if n.Many {
		card = cells.Many
	}
	return cells.Path(n.Path, card)
}
