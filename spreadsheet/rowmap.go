package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"toycatalog_server/structs/tables"
)

// Canonical field names for the catalog columns.
const (
	FieldImage           = "image_path"
	FieldFactoryCode     = "factory_code"
	FieldFactoryName     = "factory_name"
	FieldName            = "name"
	FieldPackaging       = "packaging"
	FieldPackingQuantity = "packing_quantity"
	FieldUnitPrice       = "unit_price"
	FieldGrossWeight     = "gross_weight"
	FieldNetWeight       = "net_weight"
	FieldOuterBoxSize    = "outer_box_size"
	FieldProductSize     = "product_size"
	FieldInnerBox        = "inner_box"
	FieldRemarks         = "remarks"
)

// fieldMapping translates the source spreadsheet's header labels to
// canonical field names.
var fieldMapping = map[string]string{
	"图片":     FieldImage,
	"货号":     FieldFactoryCode,
	"厂名":     FieldFactoryName,
	"品名":     FieldName,
	"包装":     FieldPackaging,
	"装箱量PCS": FieldPackingQuantity,
	"单价":     FieldUnitPrice,
	"毛重KG":   FieldGrossWeight,
	"净重KG":   FieldNetWeight,
	"外箱规格CM": FieldOuterBoxSize,
	"产品规格":   FieldProductSize,
	"内箱":     FieldInnerBox,
	"备注":     FieldRemarks,
}

// requiredFields must all resolve to a column before any row of a sheet is
// processed.
var requiredFields = []string{FieldFactoryCode, FieldName, FieldPackaging, FieldPackingQuantity}

// ExportHeaders is the fixed column set, in output order, shared by exports
// and the import template.
var ExportHeaders = []string{
	"图片", "货号", "厂名", "品名", "包装", "装箱量PCS", "单价",
	"毛重KG", "净重KG", "外箱规格CM", "产品规格", "内箱", "备注",
}

// labelFor maps a canonical field back to its source header label.
func labelFor(field string) string {
	for label, f := range fieldMapping {
		if f == field {
			return label
		}
	}
	return field
}

// ColumnIndex maps canonical field names to 0-based column positions within
// one sheet.
type ColumnIndex map[string]int

// MissingColumnsError reports required columns absent from a sheet's header
// row. Labels are the human-readable source labels, not canonical names.
type MissingColumnsError struct {
	Sheet  string
	Labels []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(e.Labels, ", "))
}

// BuildColumnIndex matches header labels against the field mapping. It fails
// when any required field has no matching column; a structurally invalid
// sheet cannot produce meaningful partial results, so this is checked before
// any row processing.
func BuildColumnIndex(sheetName string, headers []string) (ColumnIndex, error) {
	idx := make(ColumnIndex)
	for i, h := range headers {
		if field, ok := fieldMapping[strings.TrimSpace(h)]; ok {
			if _, dup := idx[field]; !dup {
				idx[field] = i
			}
		}
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := idx[field]; !ok {
			missing = append(missing, labelFor(field))
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Sheet: sheetName, Labels: missing}
	}
	return idx, nil
}

// ImageColumn returns the 0-based image column, when the sheet has one.
func (idx ColumnIndex) ImageColumn() (int, bool) {
	col, ok := idx[FieldImage]
	return col, ok
}

// SkipDiagnostic records one row excluded from an import. Skips never abort
// the batch; they only lower the imported count.
type SkipDiagnostic struct {
	Sheet  string
	Row    int // 1-based spreadsheet row number
	Reason string
}

func (d SkipDiagnostic) String() string {
	return fmt.Sprintf("sheet %q row %d skipped: %s", d.Sheet, d.Row, d.Reason)
}

// cell reads a mapped column's trimmed value, empty when the column is
// unmapped or the row is short.
func (idx ColumnIndex) cell(row []string, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// BuildItem constructs a candidate record from one data row. Numeric cells
// coerce with a 0 default; an absent factory name falls back to the
// caller-supplied default. A row still missing a mandatory text field after
// construction is rejected with a diagnostic instead of an item.
func (idx ColumnIndex) BuildItem(sheetName string, rowNum int, row []string, defaultFactoryName string) (tables.ToyItem, *SkipDiagnostic) {
	now := time.Now()
	item := tables.ToyItem{
		FactoryCode:     idx.cell(row, FieldFactoryCode),
		FactoryName:     idx.cell(row, FieldFactoryName),
		Name:            idx.cell(row, FieldName),
		Packaging:       idx.cell(row, FieldPackaging),
		PackingQuantity: parseIntOrZero(idx.cell(row, FieldPackingQuantity)),
		UnitPrice:       parseFloatOrZero(idx.cell(row, FieldUnitPrice)),
		GrossWeight:     parseFloatOrZero(idx.cell(row, FieldGrossWeight)),
		NetWeight:       parseFloatOrZero(idx.cell(row, FieldNetWeight)),
		OuterBoxSize:    idx.cell(row, FieldOuterBoxSize),
		ProductSize:     idx.cell(row, FieldProductSize),
		InnerBox:        idx.cell(row, FieldInnerBox),
		Remarks:         idx.cell(row, FieldRemarks),
		OriginSheet:     sheetName,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if item.FactoryName == "" {
		item.FactoryName = defaultFactoryName
	}

	if !item.HasRequiredFields() {
		var missing []string
		if item.FactoryCode == "" {
			missing = append(missing, labelFor(FieldFactoryCode))
		}
		if item.Name == "" {
			missing = append(missing, labelFor(FieldName))
		}
		if item.Packaging == "" {
			missing = append(missing, labelFor(FieldPackaging))
		}
		return tables.ToyItem{}, &SkipDiagnostic{
			Sheet:  sheetName,
			Row:    rowNum,
			Reason: "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	return item, nil
}

// parseIntOrZero coerces a cell to an integer. Spreadsheet numerics may
// arrive as "10" or "10.0"; anything unparsable defaults to 0.
func parseIntOrZero(s string) int {
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}
