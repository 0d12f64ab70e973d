package spreadsheet

import (
	"fmt"
	"toycatalog_server/imaging"

	"github.com/xuri/excelize/v2"
)

// Correlation is the output of aligning embedded images with data rows.
// Rows are addressed by a global index: data rows of every sheet counted
// cumulatively in workbook order, 0-based, headers excluded. Byte-identical
// payloads collapse onto one digest, so Unique holds exactly one
// representative blob per distinct image.
type Correlation struct {
	RowDigest map[int]string    // global data-row index -> content digest
	Unique    map[string][]byte // digest -> representative raw payload
}

func newCorrelation() *Correlation {
	return &Correlation{
		RowDigest: make(map[int]string),
		Unique:    make(map[string][]byte),
	}
}

func (c *Correlation) add(globalRow int, raw []byte) {
	digest := imaging.Digest(raw)
	c.RowDigest[globalRow] = digest
	if _, ok := c.Unique[digest]; !ok {
		c.Unique[digest] = raw
	}
}

// Correlator aligns embedded images with data rows. Implementations differ
// in how much they trust the workbook's own anchor metadata versus raw
// extraction order.
type Correlator interface {
	Correlate(wb *Workbook, indexes map[string]ColumnIndex) (*Correlation, error)
}

// AnchorCorrelator reads per-cell anchor metadata from the workbook: for
// every data row it asks the spreadsheet library which pictures are anchored
// at that row's image-column cell. This is the authoritative mapping when
// the source workbook anchors pictures per cell; sheets without an image
// column contribute nothing.
type AnchorCorrelator struct{}

func (AnchorCorrelator) Correlate(wb *Workbook, indexes map[string]ColumnIndex) (*Correlation, error) {
	corr := newCorrelation()

	globalRow := 0
	for _, sheet := range wb.Sheets {
		idx, ok := indexes[sheet.Name]
		if !ok {
			continue
		}
		imgCol, ok := idx.ImageColumn()
		if !ok {
			globalRow += len(sheet.Rows)
			continue
		}

		for r := range sheet.Rows {
			// Data row r sits on spreadsheet row r+2 (1-based, after the header).
			cell, err := excelize.CoordinatesToCellName(imgCol+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("cell name for row %d: %w", r+2, err)
			}
			pics, err := wb.File().GetPictures(sheet.Name, cell)
			if err != nil || len(pics) == 0 {
				continue
			}
			if len(pics[0].File) > 0 {
				corr.add(globalRow+r, pics[0].File)
			}
		}
		globalRow += len(sheet.Rows)
	}

	return corr, nil
}

// SequentialCorrelator assumes extracted images appear in the same
// top-to-bottom order as the data rows embedding them: blob i pairs with
// global data row i, counted cumulatively across sheets. It is the fallback
// for workbooks whose anchors the reader cannot see. Surplus blobs beyond
// the row count are ignored.
type SequentialCorrelator struct {
	Images [][]byte
}

func (c SequentialCorrelator) Correlate(wb *Workbook, _ map[string]ColumnIndex) (*Correlation, error) {
	corr := newCorrelation()

	total := wb.DataRowCount()
	for i, raw := range c.Images {
		if i >= total {
			break
		}
		if len(raw) > 0 {
			corr.add(i, raw)
		}
	}
	return corr, nil
}
