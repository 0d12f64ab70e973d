package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"
	"toycatalog_server/imaging"
	"toycatalog_server/spreadsheet"
	"toycatalog_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newBareImportService() *ImportService {
	cfg := &structs.Config{Import: &structs.ImportConfig{BatchSize: 100}}
	return NewImportService(gecho.NewDefaultLogger(), cfg, nil, nil, nil)
}

// newAssemblyImportService wires a real store and pipeline so the row
// assembly and image fan-out run against actual files, with no database.
func newAssemblyImportService(t *testing.T) *ImportService {
	t.Helper()
	store, err := imaging.NewStore(t.TempDir())
	require.NoError(t, err)
	codec := imaging.NewCodec(100, imaging.DefaultQuality)
	pipeline := imaging.NewPipeline(codec, gecho.NewDefaultLogger(), 2, 5*time.Second)
	cfg := &structs.Config{Import: &structs.ImportConfig{BatchSize: 100}}
	return NewImportService(gecho.NewDefaultLogger(), cfg, nil, pipeline, store)
}

func testPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var testHeaders = []string{
	"图片", "货号", "厂名", "品名", "包装", "装箱量PCS", "单价",
	"毛重KG", "净重KG", "外箱规格CM", "产品规格", "内箱", "备注",
}

func testRow(factoryCode, name string) []string {
	return []string{"", factoryCode, "测试厂", name, "彩盒", "120", "2.5", "12", "11", "60x40x40", "10x5x5", "无", ""}
}

func TestImportWorkbookRejectsUnsupportedExtension(t *testing.T) {
	is := newBareImportService()

	for _, name := range []string{"items.csv", "items.pdf", "items", "items.xlsx.exe"} {
		_, err := is.ImportWorkbook(context.Background(), name, nil, "")
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "filename %q", name)
	}
}

func TestImportWorkbookFailsOnMissingColumns(t *testing.T) {
	is := newBareImportService()

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "货号"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "品名"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = is.ImportWorkbook(context.Background(), "报价.xlsx", buf.Bytes(), "")
	require.Error(t, err)

	var missing *spreadsheet.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"包装", "装箱量PCS"}, missing.Labels)
}

func TestAssembleItemsSkipsRowMissingFactoryCode(t *testing.T) {
	is := newAssemblyImportService(t)

	wb := &spreadsheet.Workbook{Sheets: []spreadsheet.Sheet{{
		Name:    "Sheet1",
		Headers: testHeaders,
		Rows: [][]string{
			testRow("TY-001", "小熊"),
			testRow("", "小兔"),
			testRow("TY-003", "小狗"),
		},
	}}}
	idx, err := spreadsheet.BuildColumnIndex("Sheet1", testHeaders)
	require.NoError(t, err)
	indexes := map[string]spreadsheet.ColumnIndex{"Sheet1": idx}

	items, skipped, written := is.assembleItems(wb, indexes, &spreadsheet.Correlation{}, nil, "默认厂家")
	require.Len(t, items, 2)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "货号")
	assert.Empty(t, written)
	assert.Equal(t, "TY-001", items[0].FactoryCode)
	assert.Equal(t, "TY-003", items[1].FactoryCode)
}

func TestAssembleItemsStoresDistinctFilesForSharedImages(t *testing.T) {
	is := newAssemblyImportService(t)

	shared := testPNG(t, color.NRGBA{R: 200, A: 255})
	other := testPNG(t, color.NRGBA{B: 200, A: 255})

	wb := &spreadsheet.Workbook{Sheets: []spreadsheet.Sheet{{
		Name:    "Sheet1",
		Headers: testHeaders,
		Rows: [][]string{
			testRow("TY-001", "小熊"),
			testRow("TY-002", "小兔"),
			testRow("TY-003", "小狗"),
		},
	}}}
	idx, err := spreadsheet.BuildColumnIndex("Sheet1", testHeaders)
	require.NoError(t, err)
	indexes := map[string]spreadsheet.ColumnIndex{"Sheet1": idx}

	// Rows 1 and 3 embed byte-identical content, row 2 a different image.
	corr := &spreadsheet.Correlation{
		RowDigest: map[int]string{
			0: imaging.Digest(shared),
			1: imaging.Digest(other),
			2: imaging.Digest(shared),
		},
		Unique: map[string][]byte{
			imaging.Digest(shared): shared,
			imaging.Digest(other):  other,
		},
	}

	outcomes := is.pipeline.ProcessUnique(context.Background(), corr.Unique)
	require.Len(t, outcomes, 2, "identical payloads should be processed once")

	items, skipped, written := is.assembleItems(wb, indexes, corr, outcomes, "默认厂家")
	require.Len(t, items, 3)
	assert.Empty(t, skipped)
	require.Len(t, written, 3)

	paths := make(map[string]bool)
	for _, item := range items {
		require.NotEmpty(t, item.ImagePath)
		paths[item.ImagePath] = true
	}
	assert.Len(t, paths, 3, "every row should reference its own stored file")

	entries, err := os.ReadDir(is.store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Rows sharing a digest still reference identical post-processed content.
	first, err := is.store.Read(items[0].ImagePath)
	require.NoError(t, err)
	third, err := is.store.Read(items[2].ImagePath)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestRemoveFilesDeletesWrittenImages(t *testing.T) {
	is := newAssemblyImportService(t)

	path, err := is.store.Write([]byte("jpeg bytes"))
	require.NoError(t, err)

	is.removeFiles([]string{path})

	entries, err := os.ReadDir(is.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, isEmptyRow(nil))
	assert.True(t, isEmptyRow([]string{"", "  ", "\t"}))
	assert.False(t, isEmptyRow([]string{"", "TY-001"}))
}
