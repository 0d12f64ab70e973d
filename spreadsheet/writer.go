package spreadsheet

import (
	"bytes"
	"fmt"
	"image"
	"toycatalog_server/imaging"
	"toycatalog_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/xuri/excelize/v2"
)

// ExportSheetName titles the single sheet of generated workbooks.
const ExportSheetName = "货物报价表"

const (
	defaultImageColWidth = 30.0 // character units
	defaultDataRowHeight = 150.0
	imageCellPadding     = 4.0 // px margin inside the cell on each side
)

// Writer builds export workbooks, re-embedding each record's stored image
// scaled and centered inside its row's image cell.
type Writer struct {
	codec  *imaging.Codec
	logger *gecho.Logger

	ImageColWidth float64 // image column width, character units
	DataRowHeight float64 // height of rows carrying an image, points
}

func NewWriter(codec *imaging.Codec, logger *gecho.Logger) *Writer {
	return &Writer{
		codec:         codec,
		logger:        logger,
		ImageColWidth: defaultImageColWidth,
		DataRowHeight: defaultDataRowHeight,
	}
}

// Build writes the fixed column set for every item and anchors its image,
// when present, to the row's image cell. readImage loads stored image bytes
// by their persisted path. Image failures degrade that cell only; the row's
// field data always lands. Identical image content is decoded and re-encoded
// once per distinct digest, though every row gets its own anchor.
func (w *Writer) Build(items []tables.ToyItem, readImage func(string) ([]byte, error)) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("name export sheet: %w", err)
	}

	f.SetColWidth(ExportSheetName, "A", "A", w.ImageColWidth)
	f.SetColWidth(ExportSheetName, "B", "M", 15)

	for c, label := range ExportHeaders {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue(ExportSheetName, cell, label)
	}

	// Encoded representations are shared per digest for the duration of this
	// build and discarded with it.
	cache := imaging.NewSessionCache()

	for i, item := range items {
		rowNum := i + 2
		w.writeFields(f, rowNum, &item)

		if item.ImagePath == "" {
			continue
		}
		if err := w.embedImage(f, rowNum, item.ImagePath, readImage, cache); err != nil {
			w.logger.Warn("Skipping export image",
				gecho.Field("item_id", item.ID),
				gecho.Field("image_path", item.ImagePath),
				gecho.Field("error", err),
			)
		}
	}

	return f, nil
}

func (w *Writer) writeFields(f *excelize.File, rowNum int, item *tables.ToyItem) {
	values := []any{
		item.FactoryCode,
		item.FactoryName,
		item.Name,
		item.Packaging,
		item.PackingQuantity,
		item.UnitPrice,
		item.GrossWeight,
		item.NetWeight,
		item.OuterBoxSize,
		item.ProductSize,
		item.InnerBox,
		item.Remarks,
	}
	for c, v := range values {
		// Field columns start at B; A is reserved for the image.
		cell, err := excelize.CoordinatesToCellName(c+2, rowNum)
		if err != nil {
			continue
		}
		f.SetCellValue(ExportSheetName, cell, v)
	}
}

// embedImage re-encodes the stored image and anchors it to the row's image
// cell, uniformly scaled to fit inside the cell minus padding and centered
// via symmetric offsets. oneCell positioning ties the picture to its cell so
// it moves and resizes with it instead of floating.
func (w *Writer) embedImage(f *excelize.File, rowNum int, path string, readImage func(string) ([]byte, error), cache *imaging.SessionCache) error {
	raw, err := readImage(path)
	if err != nil {
		return err
	}

	digest := imaging.Digest(raw)
	encoded, ok := cache.Get(digest)
	if !ok {
		img, err := w.codec.Decode(raw)
		if err != nil {
			return err
		}
		encoded, err = w.codec.EncodeJPEG(w.codec.Flatten(img))
		if err != nil {
			return err
		}
		cache.Put(digest, encoded)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("measure encoded image: %w", err)
	}

	// Cell pixel geometry: column width is in character units (~7px each),
	// row height in points (96/72 px per point).
	cellW := w.ImageColWidth * 7.0
	cellH := w.DataRowHeight * 96.0 / 72.0

	scale := fitScale(float64(cfg.Width), float64(cfg.Height), cellW-2*imageCellPadding, cellH-2*imageCellPadding)
	offsetX := int((cellW - scale*float64(cfg.Width)) / 2)
	offsetY := int((cellH - scale*float64(cfg.Height)) / 2)

	if err := f.SetRowHeight(ExportSheetName, rowNum, w.DataRowHeight); err != nil {
		return fmt.Errorf("set row height: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.AddPictureFromBytes(ExportSheetName, cell, &excelize.Picture{
		Extension: ".jpg",
		File:      encoded,
		Format: &excelize.GraphicOptions{
			ScaleX:      scale,
			ScaleY:      scale,
			OffsetX:     offsetX,
			OffsetY:     offsetY,
			Positioning: "oneCell",
		},
	})
}

// fitScale returns the uniform factor fitting w×h inside availW×availH
// without exceeding either dimension. Images already smaller than the target
// are left at natural size.
func fitScale(w, h, availW, availH float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	scale := availW / w
	if s := availH / h; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	return scale
}

// BuildTemplate generates the empty import template: the full header row
// with preset column widths and no data.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "货物导入模板"); err != nil {
		f.Close()
		return nil, fmt.Errorf("name template sheet: %w", err)
	}

	for c, label := range ExportHeaders {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue("货物导入模板", cell, label)
	}

	f.SetColWidth("货物导入模板", "A", "M", 15)
	f.SetColWidth("货物导入模板", "A", "A", 20)

	return f, nil
}
