package exporter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowSink receives the header row followed by one row per answer. Rows
// arrive in the fixed Header order and must be written incrementally.
type RowSink interface {
	Write(record []string) error
	Close() error
}

// csvSink writes comma-delimited rows with every field quoted. The
// downstream consumers of these files expect all fields quoted, including
// numeric ones, which encoding/csv cannot be made to do.
type csvSink struct {
	file *os.File
	buf  *bufio.Writer
}

// NewCSVSink creates (or overwrites) a CSV file at path.
func NewCSVSink(path string) (RowSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}
	return &csvSink{file: f, buf: bufio.NewWriter(f)}, nil
}

func (s *csvSink) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := s.buf.WriteByte(','); err != nil {
				return err
			}
		}
		quoted := `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		if _, err := s.buf.WriteString(quoted); err != nil {
			return err
		}
	}
	return s.buf.WriteByte('\n')
}

func (s *csvSink) Close() error {
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// xlsxSink writes the same rows to a single-sheet workbook.
type xlsxSink struct {
	path  string
	file  *excelize.File
	sheet string
	row   int
}

// NewXLSXSink creates an XLSX workbook that is saved to path on Close.
func NewXLSXSink(path string) (RowSink, error) {
	f := excelize.NewFile()
	const sheet = "Checklist Answers"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}
	return &xlsxSink{path: path, file: f, sheet: sheet}, nil
}

func (s *xlsxSink) Write(record []string) error {
	s.row++
	for i, field := range record {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(s.sheet, cell, field); err != nil {
			return err
		}
	}
	return nil
}

func (s *xlsxSink) Close() error {
	defer s.file.Close()
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
