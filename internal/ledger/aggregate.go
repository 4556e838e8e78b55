package ledger

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// ExportPrefix is the document-number prefix of goods-issue tickets. Every
// other prefix counts as a receipt.
const ExportPrefix = string(models.TicketIssue)

var one = decimal.NewFromInt(1)

// Inventory maps device keys to their aggregates. Aggregates reachable from
// an Inventory are never modified; Apply returns a new map instead.
type Inventory map[string]*models.InventoryAggregate

// IsIssue reports whether a document number denotes a goods issue.
func IsIssue(docNumber string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(docNumber)), ExportPrefix)
}

// Aggregate folds the whole ledger, in order, into a fresh Inventory.
func Aggregate(rows []models.TransactionRow) Inventory {
	return Inventory(nil).Apply(rows)
}

// Apply folds rows on top of inv and returns the result. inv is left intact:
// aggregates touched by rows are cloned first, untouched ones are shared.
func (inv Inventory) Apply(rows []models.TransactionRow) Inventory {
	next := make(Inventory, len(inv)+len(rows))
	for key, agg := range inv {
		next[key] = agg
	}

	owned := make(map[string]bool)
	for _, row := range rows {
		key := DeviceKey(row.DeviceCode, row.DeviceName)
		if key == "" {
			continue
		}

		agg, exists := next[key]
		switch {
		case !exists:
			agg = models.NewInventoryAggregate(key)
			next[key] = agg
			owned[key] = true
		case !owned[key]:
			agg = agg.Clone()
			next[key] = agg
			owned[key] = true
		}

		Fold(agg, row)
	}

	return next
}

// Fold adds one ledger row to agg. It is the only code that changes an
// aggregate, for both full recomputes and the post-submit overlay. A row with
// unreadable numbers still lands in the history and contributes zero.
func Fold(agg *models.InventoryAggregate, row models.TransactionRow) {
	name := strings.TrimSpace(row.DeviceName)
	if utf8.RuneCountInString(name) > utf8.RuneCountInString(agg.Name) {
		agg.Name = name
	}

	agg.Models = appendDistinct(agg.Models, row.ModelSerial)
	agg.Specifications = appendDistinct(agg.Specifications, row.Specification)

	quantity := ParseAmount(row.Quantity)
	if quantity.IsZero() && name != "" {
		quantity = one
	}
	amount := ParseAmount(row.Amount)

	issue := IsIssue(row.DocNumber)
	if issue {
		agg.ExportedQty = agg.ExportedQty.Add(quantity)
		agg.ExportedValue = agg.ExportedValue.Add(amount)
	} else {
		agg.ImportedQty = agg.ImportedQty.Add(quantity)
		agg.ImportedValue = agg.ImportedValue.Add(amount)
	}

	agg.History = append(agg.History, row)

	if !issue {
		if warranty := strings.TrimSpace(row.Warranty); warranty != "" {
			agg.LatestWarranty = warranty
		}
		if strings.TrimSpace(row.UnitPrice) != "" {
			price := ParseAmount(row.UnitPrice)
			agg.LatestPrice = &price
		}
	}

	agg.Stock = agg.ImportedQty.Sub(agg.ExportedQty)
	agg.StockValue = agg.ImportedValue.Sub(agg.ExportedValue)
}

// StockOf returns the current stock for key, zero when the key is unknown.
func (inv Inventory) StockOf(key string) decimal.Decimal {
	if agg, ok := inv[key]; ok {
		return agg.Stock
	}
	return decimal.Zero
}

// Keys returns the device keys in lexical order.
func (inv Inventory) Keys() []string {
	keys := make([]string, 0, len(inv))
	for key := range inv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Negative lists the keys whose derived stock is below zero.
func (inv Inventory) Negative() []string {
	var keys []string
	for _, key := range inv.Keys() {
		if inv[key].Stock.IsNegative() {
			keys = append(keys, key)
		}
	}
	return keys
}

func appendDistinct(values []string, candidate string) []string {
	candidate = strings.TrimSpace(candidate)
	if isNone(candidate) {
		return values
	}
	for _, v := range values {
		if v == candidate {
			return values
		}
	}
	return append(values, candidate)
}

func isNone(value string) bool {
	switch strings.ToLower(value) {
	case "", "-", "n/a", "#n/a", "none":
		return true
	}
	return false
}
