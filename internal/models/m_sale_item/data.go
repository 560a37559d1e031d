package m_sale_item

import (
	"math/big"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the sale_items table.
type Data struct {
	SaleID      string  `spanner:"sale_id"`
	ItemID      string  `spanner:"item_id"`
	ProductID   string  `spanner:"product_id"`
	ProductName string  `spanner:"product_name"`
	Quantity    int64   `spanner:"quantity"`
	UnitPrice   big.Rat `spanner:"unit_price"`
	LineTotal   big.Rat `spanner:"line_total"`
}

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// SaleKeys selects every item of one sale.
func (m *Model) SaleKeys(saleID string) spanner.KeySet {
	return spanner.Key{saleID}.AsPrefix()
}
