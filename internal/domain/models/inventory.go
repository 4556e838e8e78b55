package models

import "github.com/shopspring/decimal"

// InventoryAggregate is the running balance derived for one device key.
type InventoryAggregate struct {
	Key            string           `json:"key"`
	Name           string           `json:"name"`
	Models         []string         `json:"models"`
	Specifications []string         `json:"specifications"`
	ImportedQty    decimal.Decimal  `json:"imported_qty"`
	ExportedQty    decimal.Decimal  `json:"exported_qty"`
	ImportedValue  decimal.Decimal  `json:"imported_value"`
	ExportedValue  decimal.Decimal  `json:"exported_value"`
	Stock          decimal.Decimal  `json:"stock"`
	StockValue     decimal.Decimal  `json:"stock_value"`
	LatestWarranty string           `json:"latest_warranty,omitempty"`
	LatestPrice    *decimal.Decimal `json:"latest_price,omitempty"`
	History        []TransactionRow `json:"history"`
}

// NewInventoryAggregate returns an empty aggregate for key.
func NewInventoryAggregate(key string) *InventoryAggregate {
	return &InventoryAggregate{
		Key:           key,
		ImportedQty:   decimal.Zero,
		ExportedQty:   decimal.Zero,
		ImportedValue: decimal.Zero,
		ExportedValue: decimal.Zero,
		Stock:         decimal.Zero,
		StockValue:    decimal.Zero,
	}
}

// DisplayName falls back to the key when no row carried a name.
func (a *InventoryAggregate) DisplayName() string {
	if a.Name == "" {
		return a.Key
	}
	return a.Name
}

// Clone returns a deep copy so the original can keep being read while the
// copy is folded.
func (a *InventoryAggregate) Clone() *InventoryAggregate {
	out := *a
	out.Models = append([]string(nil), a.Models...)
	out.Specifications = append([]string(nil), a.Specifications...)
	out.History = append([]TransactionRow(nil), a.History...)
	if a.LatestPrice != nil {
		price := *a.LatestPrice
		out.LatestPrice = &price
	}
	return &out
}
