package xlnest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/javajack/xlnest/cells"
	"github.com/javajack/xlnest/header"
	"github.com/javajack/xlnest/schema"
)

type authorDto struct {
	ID        int64
	FirstName string
	LastName  string
}

type lenderDto struct {
	ID        int64
	FirstName string
	LastName  string
}

type bookDto struct {
	ID          int64
	Name        string
	ReleaseDate time.Time
	Author      *authorDto
	Lenders     []lenderDto
}

const bookSchemaYAML = `
sheet: Books
root:
  name: Book
  columns:
    - {name: BOOK_ID, path: ID}
    - {name: BOOK_NAME, path: Name}
    - {name: RELEASE_DATE, path: ReleaseDate}
    - name: Author
      path: Author
      columns:
        - {name: AUTHOR_ID, path: ID}
        - {name: AUTHOR_FIRST_NAME, path: FirstName}
        - {name: AUTHOR_LAST_NAME, path: LastName}
    - name: Lender
      path: Lenders
      many: true
      columns:
        - {name: LENDER_ID, path: ID}
        - {name: LENDER_FIRST_NAME, path: FirstName}
        - {name: LENDER_LAST_NAME, path: LastName}
`

func exampleBooks() []bookDto {
	return []bookDto{
		{
			ID: 1, Name: "BOOK_TEST_NAME_1", ReleaseDate: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC),
			Author: &authorDto{ID: 1, FirstName: "AUTHOR_TEST_FNAME_1", LastName: "AUTHOR_TEST_LNAME_1"},
			Lenders: []lenderDto{
				{ID: 1, FirstName: "LENDER_TEST_FNAME_1", LastName: "LENDER_TEST_LNAME_1"},
				{ID: 2, FirstName: "LENDER_TEST_FNAME_2", LastName: "LENDER_TEST_LNAME_2"},
			},
		},
		{
			ID: 2, Name: "BOOK_TEST_NAME_2", ReleaseDate: time.Date(2010, 12, 12, 0, 0, 0, 0, time.UTC),
			Author: &authorDto{ID: 2, FirstName: "AUTHOR_TEST_FNAME_2", LastName: "AUTHOR_TEST_LNAME_2"},
			Lenders: []lenderDto{
				{ID: 3, FirstName: "LENDER_TEST_FNAME_3", LastName: "LENDER_TEST_LNAME_3"},
				{ID: 4, FirstName: "LENDER_TEST_FNAME_4", LastName: "LENDER_TEST_LNAME_4"},
				{ID: 5, FirstName: "LENDER_TEST_FNAME_5", LastName: "LENDER_TEST_LNAME_5"},
			},
		},
	}
}

func loadBookSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load(strings.NewReader(bookSchemaYAML))
	require.NoError(t, err)
	return s
}

// openOutput exports books and reopens the workbook.
func openOutput(t *testing.T, objects any, opts ...Option) *excelize.File {
	t.Helper()
	allOpts := append([]Option{WithSchema(loadBookSchema(t))}, opts...)
	data, err := NewExporter(allOpts...).ExportBytes(context.Background(), objects)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func mergedAreas(t *testing.T, f *excelize.File, sheet string) []string {
	t.Helper()
	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var out []string
	for _, m := range merges {
		out = append(out, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	sort.Strings(out)
	return out
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestExport_HeaderGrid(t *testing.T) {
	f := openOutput(t, exampleBooks())
	sheet := "Books"

	assert.Equal(t, []string{"Books"}, f.GetSheetList())

	labels := map[string]string{
		"A1": "Book",
		"A2": "BOOK_ID", "B2": "BOOK_NAME", "C2": "RELEASE_DATE",
		"D2": "Author", "D3": "AUTHOR_ID", "E3": "AUTHOR_FIRST_NAME", "F3": "AUTHOR_LAST_NAME",
		"G2": "Lender", "G3": "LENDER_ID", "H3": "LENDER_FIRST_NAME", "I3": "LENDER_LAST_NAME",
	}
	for cell, want := range labels {
		assert.Equal(t, want, cellValue(t, f, sheet, cell), cell)
	}

	assert.Equal(t, []string{
		"A1:I1", "A2:A3", "B2:B3", "C2:C3", "D2:F2", "G2:I2",
	}, mergedAreas(t, f, sheet))
}

func TestExport_DataRows(t *testing.T) {
	f := openOutput(t, exampleBooks())
	sheet := "Books"

	rows := []struct {
		cell string
		want string
	}{
		{"A4", "1"}, {"B4", "BOOK_TEST_NAME_1"}, {"D4", "1"}, {"E4", "AUTHOR_TEST_FNAME_1"},
		{"G4", "1"}, {"H4", "LENDER_TEST_FNAME_1"}, {"I4", "LENDER_TEST_LNAME_1"},
		{"A5", ""}, {"E5", ""}, {"G5", "2"}, {"H5", "LENDER_TEST_FNAME_2"},
		{"A6", "2"}, {"B6", "BOOK_TEST_NAME_2"}, {"F6", "AUTHOR_TEST_LNAME_2"},
		{"G6", "3"}, {"G7", "4"}, {"G8", "5"}, {"I8", "LENDER_TEST_LNAME_5"},
		{"A9", ""}, {"G9", ""},
	}
	for _, r := range rows {
		assert.Equal(t, r.want, cellValue(t, f, sheet, r.cell), r.cell)
	}
	assert.NotEmpty(t, cellValue(t, f, sheet, "C4"))
}

func TestExport_MissingRelations(t *testing.T) {
	books := []bookDto{{ID: 9, Name: "lonely"}, exampleBooks()[0]}
	f := openOutput(t, books)
	sheet := "Books"

	assert.Equal(t, "9", cellValue(t, f, sheet, "A4"))
	assert.Equal(t, "", cellValue(t, f, sheet, "D4"))
	assert.Equal(t, "", cellValue(t, f, sheet, "G4"))
	// a missing collection still takes one row
	assert.Equal(t, "1", cellValue(t, f, sheet, "A5"))
	assert.Equal(t, "LENDER_TEST_FNAME_2", cellValue(t, f, sheet, "H6"))
}

func TestExport_MergeRepeated(t *testing.T) {
	f := openOutput(t, exampleBooks(), WithMergeRepeated(true))
	merges := mergedAreas(t, f, "Books")

	for _, want := range []string{"A4:A5", "B4:B5", "F4:F5", "A6:A8", "E6:E8"} {
		assert.Contains(t, merges, want)
	}
	for _, unwanted := range []string{"G4:G5", "G6:G8"} {
		assert.NotContains(t, merges, unwanted)
	}
}

func TestExport_Origin(t *testing.T) {
	f := openOutput(t, exampleBooks(), WithOrigin(NewCellRef("", 2, 1)), WithSheet("Report"))
	sheet := "Report"

	assert.Equal(t, "Book", cellValue(t, f, sheet, "B3"))
	assert.Equal(t, "BOOK_ID", cellValue(t, f, sheet, "B4"))
	assert.Equal(t, "1", cellValue(t, f, sheet, "B6"))
	assert.Contains(t, mergedAreas(t, f, sheet), "B3:J3")
}

func TestExport_ConcurrentExpansion(t *testing.T) {
	var books []bookDto
	for i := 0; i < 20; i++ {
		b := exampleBooks()[i%2]
		b.ID = int64(100 + i)
		books = append(books, b)
	}
	sequential := openOutput(t, books)
	parallel := openOutput(t, books, WithConcurrency(6))

	seqRows, err := sequential.GetRows("Books")
	require.NoError(t, err)
	parRows, err := parallel.GetRows("Books")
	require.NoError(t, err)
	assert.Equal(t, seqRows, parRows)
}

func TestExport_SingleObjectAndPointers(t *testing.T) {
	b := exampleBooks()[0]
	f := openOutput(t, &b)
	assert.Equal(t, "BOOK_TEST_NAME_1", cellValue(t, f, "Books", "B4"))
}

func TestExport_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no schema", func(t *testing.T) {
		_, err := NewExporter().ExportBytes(ctx, exampleBooks())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no schema specified")
	})

	t.Run("not a collection", func(t *testing.T) {
		objects := []map[string]any{{"ID": 1, "Lenders": "oops"}}
		_, err := NewExporter(WithSchema(loadBookSchema(t))).ExportBytes(ctx, objects)
		require.Error(t, err)
		assert.ErrorIs(t, err, cells.ErrCannotCastToCollection)
	})

	t.Run("malformed tree", func(t *testing.T) {
		s := loadBookSchema(t)
		s.Headers = append(s.Headers, header.Leaf("STRAY"))
		_, err := NewExporter(WithSchema(s)).ExportBytes(ctx, exampleBooks())
		assert.ErrorIs(t, err, header.ErrNoMainHeader)
	})

	t.Run("bad schema file", func(t *testing.T) {
		_, err := ExportBytes(ctx, filepath.Join(t.TempDir(), "missing.yaml"), exampleBooks())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open schema")
	})

	t.Run("not exportable", func(t *testing.T) {
		_, err := NewExporter(WithSchema(loadBookSchema(t))).ExportBytes(ctx, make(chan int))
		require.Error(t, err)
	})
}

func TestExport_File(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "books.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(bookSchemaYAML), 0o644))
	out := filepath.Join(dir, "books.xlsx")

	require.NoError(t, Export(context.Background(), schemaPath, out, exampleBooks()))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Book", cellValue(t, f, "Books", "A1"))
}

func TestExport_FailureRemovesOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "broken.xlsx")
	err := NewExporter(WithSchema(loadBookSchema(t))).Export(context.Background(), []map[string]any{{"Lenders": 1}}, out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_SchemaReader(t *testing.T) {
	e := NewExporter(WithSchemaReader(strings.NewReader(bookSchemaYAML)))
	layout, err := e.Layout()
	require.NoError(t, err)
	assert.Equal(t, 9, layout.ColumnCount())

	// the reader is consumed once; the built schema is reused
	s1, err := e.Schema()
	require.NoError(t, err)
	s2, err := e.Schema()
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestExport_SharedExporterConcurrently(t *testing.T) {
	e := NewExporter(WithSchemaReader(strings.NewReader(bookSchemaYAML)), WithConcurrency(4))

	var g errgroup.Group
	outputs := make([][]byte, 8)
	for i := range outputs {
		g.Go(func() error {
			data, err := e.ExportBytes(context.Background(), exampleBooks())
			outputs[i] = data
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, data := range outputs {
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "BOOK_TEST_NAME_2", cellValue(t, f, "Books", "B6"))
		f.Close()
	}
}

func TestExport_OverwritesClosedFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "books.xlsx")
	e := NewExporter(WithSchema(loadBookSchema(t)))

	require.NoError(t, e.Export(context.Background(), exampleBooks(), out))
	require.NoError(t, e.Export(context.Background(), exampleBooks()[:1], out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "BOOK_TEST_NAME_1", cellValue(t, f, "Books", "B4"))
	assert.Equal(t, "", cellValue(t, f, "Books", "B6"))

	require.Error(t, e.Export(context.Background(), make(chan int), out))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportTo_Size(t *testing.T) {
	sink, err := NewWorkbook("Books")
	require.NoError(t, err)
	defer sink.Close()

	size, err := NewExporter(WithSchema(loadBookSchema(t))).ExportTo(context.Background(), exampleBooks(), sink)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 9, Height: 8}, size)
}

func TestExport_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	openOutput(t, exampleBooks(), WithLogger(logger))

	out := buf.String()
	assert.Contains(t, out, "header layout calculated")
	assert.Contains(t, out, `"columns":9`)
	assert.Contains(t, out, `"data_rows":5`)
}
