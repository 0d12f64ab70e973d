package spreadsheet

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
	"toycatalog_server/imaging"
	"toycatalog_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter() *Writer {
	return NewWriter(imaging.NewCodec(100, imaging.DefaultQuality), gecho.NewDefaultLogger())
}

func TestWriterRoundTripFieldValues(t *testing.T) {
	w := newTestWriter()

	items := []tables.ToyItem{
		{
			ID:              1,
			FactoryCode:     "TY-001",
			FactoryName:     "厂家A",
			Name:            "玩具车",
			Packaging:       "彩盒",
			PackingQuantity: 10,
			UnitPrice:       2.5,
			GrossWeight:     8.4,
			NetWeight:       7.1,
			OuterBoxSize:    "60x40x30",
			ProductSize:     "15x8x5",
			InnerBox:        "12",
			Remarks:         "batch A",
		},
		{ID: 2, FactoryCode: "TY-002", Name: "玩具熊", Packaging: "opp袋", PackingQuantity: 24},
	}

	f, err := w.Build(items, func(string) ([]byte, error) {
		return nil, errors.New("no images in this test")
	})
	require.NoError(t, err)
	defer f.Close()

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := OpenWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer wb.Close()

	require.Len(t, wb.Sheets, 1)
	sheet := wb.Sheets[0]
	assert.Equal(t, ExportSheetName, sheet.Name)
	assert.Equal(t, ExportHeaders, sheet.Headers)
	require.Len(t, sheet.Rows, 2)

	// The exported workbook must import back with identical field values.
	idx, err := BuildColumnIndex(sheet.Name, sheet.Headers)
	require.NoError(t, err)

	first, diag := idx.BuildItem(sheet.Name, 2, sheet.Rows[0], "")
	require.Nil(t, diag)
	assert.Equal(t, "TY-001", first.FactoryCode)
	assert.Equal(t, "厂家A", first.FactoryName)
	assert.Equal(t, "玩具车", first.Name)
	assert.Equal(t, 10, first.PackingQuantity)
	assert.Equal(t, 2.5, first.UnitPrice)
	assert.Equal(t, 8.4, first.GrossWeight)
	assert.Equal(t, "60x40x30", first.OuterBoxSize)
	assert.Equal(t, "batch A", first.Remarks)

	second, diag := idx.BuildItem(sheet.Name, 3, sheet.Rows[1], "")
	require.Nil(t, diag)
	assert.Equal(t, "TY-002", second.FactoryCode)
	assert.Equal(t, 24, second.PackingQuantity)
}

func TestWriterEmbedsImages(t *testing.T) {
	w := newTestWriter()

	pic := testPNG(t, color.NRGBA{R: 120, G: 30, B: 30, A: 255})
	items := []tables.ToyItem{
		{ID: 1, FactoryCode: "TY-001", Name: "玩具车", Packaging: "彩盒", ImagePath: "uploads/a.jpg"},
	}

	f, err := w.Build(items, func(path string) ([]byte, error) {
		require.Equal(t, "uploads/a.jpg", path)
		return pic, nil
	})
	require.NoError(t, err)
	defer f.Close()

	pics, err := f.GetPictures(ExportSheetName, "A2")
	require.NoError(t, err)
	require.Len(t, pics, 1)
	assert.NotEmpty(t, pics[0].File)

	height, err := f.GetRowHeight(ExportSheetName, 2)
	require.NoError(t, err)
	assert.Equal(t, w.DataRowHeight, height)
}

func TestWriterImageFailureDegradesCellOnly(t *testing.T) {
	w := newTestWriter()

	items := []tables.ToyItem{
		{ID: 1, FactoryCode: "TY-001", Name: "玩具车", Packaging: "彩盒", ImagePath: "uploads/gone.jpg"},
	}

	f, err := w.Build(items, func(string) ([]byte, error) {
		return nil, errors.New("file missing")
	})
	require.NoError(t, err)
	defer f.Close()

	// Field data survives even though the image could not be loaded.
	code, err := f.GetCellValue(ExportSheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "TY-001", code)

	pics, err := f.GetPictures(ExportSheetName, "A2")
	require.NoError(t, err)
	assert.Empty(t, pics)
}

func TestBuildTemplateHeaders(t *testing.T) {
	f, err := BuildTemplate()
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("货物导入模板")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ExportHeaders, rows[0])
}
