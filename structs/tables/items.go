package tables

import (
	"time"
)

// ToyItem is a single row of the catalog quotation table. Rows arrive either
// through the items API or through a spreadsheet import; both paths must leave
// FactoryCode, Name and Packaging non-empty.
type ToyItem struct {
	tableName       struct{}  `bun:"table:toy_items,alias:ti"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	FactoryCode     string    `bun:"factory_code,notnull" json:"factory_code"`
	FactoryName     string    `bun:"factory_name,notnull" json:"factory_name"`
	Name            string    `bun:"name,notnull" json:"name"`
	Packaging       string    `bun:"packaging,notnull" json:"packaging"`
	PackingQuantity int       `bun:"packing_quantity" json:"packing_quantity"`
	UnitPrice       float64   `bun:"unit_price" json:"unit_price"`
	GrossWeight     float64   `bun:"gross_weight" json:"gross_weight"`
	NetWeight       float64   `bun:"net_weight" json:"net_weight"`
	OuterBoxSize    string    `bun:"outer_box_size" json:"outer_box_size,omitempty"`
	ProductSize     string    `bun:"product_size" json:"product_size,omitempty"`
	InnerBox        string    `bun:"inner_box" json:"inner_box,omitempty"`
	Remarks         string    `bun:"remarks" json:"remarks,omitempty"`
	ImagePath       string    `bun:"image_path" json:"image_path,omitempty"`
	OriginSheet     string    `bun:"origin_sheet" json:"origin_sheet,omitempty"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

// HasRequiredFields reports whether the three mandatory text fields are set.
func (t *ToyItem) HasRequiredFields() bool {
	return t.FactoryCode != "" && t.Name != "" && t.Packaging != ""
}
