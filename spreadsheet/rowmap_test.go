package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullHeaders = []string{
	"图片", "货号", "厂名", "品名", "包装", "装箱量PCS", "单价",
	"毛重KG", "净重KG", "外箱规格CM", "产品规格", "内箱", "备注",
}

func TestBuildColumnIndexFullHeaderRow(t *testing.T) {
	idx, err := BuildColumnIndex("Sheet1", fullHeaders)
	require.NoError(t, err)

	assert.Equal(t, 1, idx[FieldFactoryCode])
	assert.Equal(t, 3, idx[FieldName])

	col, ok := idx.ImageColumn()
	assert.True(t, ok)
	assert.Equal(t, 0, col)
}

func TestBuildColumnIndexMissingRequired(t *testing.T) {
	headers := []string{"图片", "货号", "厂名", "单价"} // no 品名, 包装, 装箱量PCS
	_, err := BuildColumnIndex("报价单", headers)
	require.Error(t, err)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "报价单", missing.Sheet)
	assert.ElementsMatch(t, []string{"品名", "包装", "装箱量PCS"}, missing.Labels)
	assert.Contains(t, err.Error(), "品名")
}

func TestBuildColumnIndexIgnoresUnknownAndPadding(t *testing.T) {
	headers := []string{" 货号 ", "品名", "包装", "装箱量PCS", "something else"}
	idx, err := BuildColumnIndex("Sheet1", headers)
	require.NoError(t, err)

	assert.Equal(t, 0, idx[FieldFactoryCode])
	_, ok := idx.ImageColumn()
	assert.False(t, ok)
}

func TestBuildItemCoercesNumericCells(t *testing.T) {
	idx, err := BuildColumnIndex("Sheet1", fullHeaders)
	require.NoError(t, err)

	row := []string{"", "TY-001", "厂家A", "玩具车", "彩盒", "10.0", "2.5", "bad", "", "60x40x30", "15x8x5", "12", "note"}
	item, diag := idx.BuildItem("Sheet1", 2, row, "")
	require.Nil(t, diag)

	assert.Equal(t, "TY-001", item.FactoryCode)
	assert.Equal(t, 10, item.PackingQuantity)
	assert.Equal(t, 2.5, item.UnitPrice)
	assert.Equal(t, 0.0, item.GrossWeight) // unparsable defaults to zero
	assert.Equal(t, 0.0, item.NetWeight)
	assert.Equal(t, "Sheet1", item.OriginSheet)
}

func TestBuildItemFactoryNameFallback(t *testing.T) {
	idx, err := BuildColumnIndex("Sheet1", fullHeaders)
	require.NoError(t, err)

	row := []string{"", "TY-002", "", "玩具熊", "opp袋", "20"}
	item, diag := idx.BuildItem("Sheet1", 3, row, "默认厂家")
	require.Nil(t, diag)
	assert.Equal(t, "默认厂家", item.FactoryName)
}

func TestBuildItemSkipsMissingRequiredFields(t *testing.T) {
	idx, err := BuildColumnIndex("Sheet1", fullHeaders)
	require.NoError(t, err)

	rows := [][]string{
		{"", "TY-010", "厂家A", "积木", "彩盒", "12"},
		{"", "", "厂家A", "拼图", "彩盒", "24"}, // no factory code
		{"", "TY-011", "厂家A", "娃娃", "opp袋", "36"},
	}

	built := 0
	for i, row := range rows {
		item, diag := idx.BuildItem("Sheet1", i+2, row, "")
		if diag != nil {
			assert.Equal(t, i+2, diag.Row)
			assert.Contains(t, diag.Reason, "货号")
			continue
		}
		assert.True(t, item.HasRequiredFields())
		built++
	}
	assert.Equal(t, 2, built)
}

func TestBuildItemShortRow(t *testing.T) {
	idx, err := BuildColumnIndex("Sheet1", fullHeaders)
	require.NoError(t, err)

	// Row shorter than the header set; trailing columns read as empty.
	row := []string{"", "TY-020", "厂家B", "风筝", "挂卡", "50"}
	item, diag := idx.BuildItem("Sheet1", 2, row, "")
	require.Nil(t, diag)
	assert.Empty(t, item.Remarks)
	assert.Zero(t, item.UnitPrice)
}
