package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one parsed worksheet: its name, header labels and data rows as
// plain string cells, decoupled from the underlying spreadsheet library's
// object model.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Workbook holds the parsed sheets of an uploaded spreadsheet plus the open
// library handle, which the anchor correlator needs for picture metadata.
type Workbook struct {
	file   *excelize.File
	Sheets []Sheet
}

// OpenWorkbook parses workbook structure from r: every sheet in workbook
// order, first row as headers, remaining rows as data.
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	wb := &Workbook{file: f}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("read rows from sheet %q: %w", name, err)
		}

		sheet := Sheet{Name: name}
		if len(rows) > 0 {
			sheet.Headers = rows[0]
			sheet.Rows = rows[1:]
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// File exposes the underlying handle for anchor metadata lookups.
func (w *Workbook) File() *excelize.File {
	return w.file
}

// DataRowCount is the total number of data rows across all sheets.
func (w *Workbook) DataRowCount() int {
	total := 0
	for _, s := range w.Sheets {
		total += len(s.Rows)
	}
	return total
}

func (w *Workbook) Close() error {
	return w.file.Close()
}
