package xlnest

import (
	"fmt"
	"io"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Sink receives the cells of an export. Positions are absolute.
type Sink interface {
	SetCellValue(ref CellRef, value any) error
	MergeCells(area AreaRef) error
	Write(w io.Writer) error
	Close() error
}

// ExcelizeSink implements Sink on an excelize workbook.
type ExcelizeSink struct {
	file *excelize.File

	mu sync.Mutex // protects concurrent access
}

// NewExcelizeSink wraps an existing workbook.
func NewExcelizeSink(f *excelize.File) *ExcelizeSink {
	return &ExcelizeSink{file: f}
}

// NewWorkbook creates an empty workbook whose only sheet is named sheet.
func NewWorkbook(sheet string) (*ExcelizeSink, error) {
	f := excelize.NewFile()
	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet to %q: %w", sheet, err)
		}
	}
	return NewExcelizeSink(f), nil
}

// OpenWorkbook opens an xlsx file to export into.
func OpenWorkbook(path string) (*ExcelizeSink, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	return NewExcelizeSink(f), nil
}

// SetCellValue writes a value, creating the sheet if needed.
func (s *ExcelizeSink) SetCellValue(ref CellRef, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSheet(ref.Sheet); err != nil {
		return err
	}
	if err := s.file.SetCellValue(ref.Sheet, ref.CellName(), value); err != nil {
		return fmt.Errorf("set cell %s: %w", ref, err)
	}
	return nil
}

// MergeCells merges a cell range.
func (s *ExcelizeSink) MergeCells(area AreaRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := area.First.Sheet
	if err := s.ensureSheet(sheet); err != nil {
		return err
	}
	if err := s.file.MergeCell(sheet, area.First.CellName(), area.Last.CellName()); err != nil {
		return fmt.Errorf("merge cells %s!%s: %w", sheet, area, err)
	}
	return nil
}

// SetHyperlink links the cell at ref to an external URL.
func (s *ExcelizeSink) SetHyperlink(ref CellRef, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.SetCellHyperLink(ref.Sheet, ref.CellName(), url, "External"); err != nil {
		return fmt.Errorf("set hyperlink %s: %w", ref, err)
	}
	return nil
}

func (s *ExcelizeSink) ensureSheet(sheet string) error {
	idx, err := s.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}
	if idx >= 0 {
		return nil
	}
	if _, err := s.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	return nil
}

// Write writes the workbook to the given writer.
func (s *ExcelizeSink) Write(w io.Writer) error {
	return s.file.Write(w)
}

// Close closes the underlying excelize file.
func (s *ExcelizeSink) Close() error {
	return s.file.Close()
}

// File returns the underlying excelize file for advanced operations.
func (s *ExcelizeSink) File() *excelize.File {
	return s.file
}
