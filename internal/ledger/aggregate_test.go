package ledger

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

func assertBalanced(t *testing.T, inv Inventory) {
	t.Helper()
	for key, agg := range inv {
		if !agg.Stock.Equal(agg.ImportedQty.Sub(agg.ExportedQty)) {
			t.Errorf("%s: stock %s != %s - %s", key, agg.Stock, agg.ImportedQty, agg.ExportedQty)
		}
		if !agg.StockValue.Equal(agg.ImportedValue.Sub(agg.ExportedValue)) {
			t.Errorf("%s: stock value %s != %s - %s", key, agg.StockValue, agg.ImportedValue, agg.ExportedValue)
		}
	}
}

func TestDeviceKey(t *testing.T) {
	tests := []struct {
		code, name, want string
	}{
		{"A1", "Pump", "A1"},
		{"  A1 ", "Pump", "A1"},
		{"", "  Pump  ", "Pump"},
		{"   ", "Cable", "Cable"},
		{"", "", ""},
		{"a1", "", "a1"},
	}
	for _, tt := range tests {
		got := DeviceKey(tt.code, tt.name)
		if got != tt.want {
			t.Errorf("DeviceKey(%q, %q) = %q, want %q", tt.code, tt.name, got, tt.want)
		}
		if again := DeviceKey(tt.code, tt.name); again != got {
			t.Errorf("DeviceKey not stable: %q then %q", got, again)
		}
	}
}

func TestAggregateReceiptThenIssue(t *testing.T) {
	rows := []models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "5", Amount: "1.000.000"},
		{DocNumber: "PX0001", DeviceCode: "A1", Quantity: "2", Amount: "400.000"},
	}

	inv := Aggregate(rows)
	agg, ok := inv["A1"]
	if !ok {
		t.Fatalf("aggregate for A1 missing: %v", inv.Keys())
	}

	assertDecimal(t, "imported qty", agg.ImportedQty, "5")
	assertDecimal(t, "exported qty", agg.ExportedQty, "2")
	assertDecimal(t, "stock", agg.Stock, "3")
	assertDecimal(t, "imported value", agg.ImportedValue, "1000000")
	assertDecimal(t, "exported value", agg.ExportedValue, "400000")
	assertDecimal(t, "stock value", agg.StockValue, "600000")
	if len(agg.History) != 2 || agg.History[0].DocNumber != "PN0001" || agg.History[1].DocNumber != "PX0001" {
		t.Errorf("history not in ledger order: %+v", agg.History)
	}
	if agg.Name != "Pump" {
		t.Errorf("name = %q", agg.Name)
	}
}

func TestAggregateDefaultsMissingQuantityToOne(t *testing.T) {
	inv := Aggregate([]models.TransactionRow{
		{DocNumber: "PN0002", DeviceCode: "B2", DeviceName: "Cable", Quantity: "", Amount: "50000"},
	})

	agg := inv["B2"]
	if agg == nil {
		t.Fatal("aggregate for B2 missing")
	}
	assertDecimal(t, "imported qty", agg.ImportedQty, "1")
	assertDecimal(t, "imported value", agg.ImportedValue, "50000")
}

func TestAggregateZeroQuantityWithoutNameStaysZero(t *testing.T) {
	inv := Aggregate([]models.TransactionRow{
		{DocNumber: "PN0003", DeviceCode: "C3", Quantity: "abc", Amount: "??"},
	})

	agg := inv["C3"]
	if agg == nil {
		t.Fatal("aggregate for C3 missing")
	}
	assertDecimal(t, "imported qty", agg.ImportedQty, "0")
	assertDecimal(t, "imported value", agg.ImportedValue, "0")
	if len(agg.History) != 1 {
		t.Errorf("malformed row must stay in history, got %d rows", len(agg.History))
	}
}

func TestAggregateSkipsRowsWithoutKey(t *testing.T) {
	inv := Aggregate([]models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "  ", DeviceName: " ", Quantity: "4"},
		{DocNumber: "PN0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "1"},
	})
	if len(inv) != 1 {
		t.Fatalf("expected 1 aggregate, got %v", inv.Keys())
	}
	if _, ok := inv[""]; ok {
		t.Fatal("empty key must never be aggregated")
	}
}

func TestAggregateKeepsNegativeStock(t *testing.T) {
	inv := Aggregate([]models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "1", Amount: "100"},
		{DocNumber: "px0002", DeviceCode: "A1", DeviceName: "Pump", Quantity: "3", Amount: "300"},
	})

	agg := inv["A1"]
	assertDecimal(t, "stock", agg.Stock, "-2")
	assertDecimal(t, "stock value", agg.StockValue, "-200")
	if neg := inv.Negative(); len(neg) != 1 || neg[0] != "A1" {
		t.Errorf("Negative() = %v", neg)
	}
}

func TestAggregateMetadata(t *testing.T) {
	rows := []models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "M1", DeviceName: "Máy", ModelSerial: "X-1", Specification: "220V", Warranty: "Date(2025,0,1)", UnitPrice: "100.000", Quantity: "1"},
		{DocNumber: "PN0002", DeviceCode: "M1", DeviceName: "Máy đo huyết áp", ModelSerial: "N/A", Specification: "-", Warranty: "", UnitPrice: "", Quantity: "1"},
		{DocNumber: "PN0003", DeviceCode: "M1", DeviceName: "Máy đo", ModelSerial: "X-2", Specification: "220V", Warranty: "2026-06-30", UnitPrice: "120.000", Quantity: "1"},
		{DocNumber: "PX0001", DeviceCode: "M1", DeviceName: "Máy", ModelSerial: "X-1", Warranty: "2030-01-01", UnitPrice: "999", Quantity: "1"},
	}

	agg := Aggregate(rows)["M1"]
	if agg.Name != "Máy đo huyết áp" {
		t.Errorf("name = %q, want the longest seen", agg.Name)
	}
	if len(agg.Models) != 2 || agg.Models[0] != "X-1" || agg.Models[1] != "X-2" {
		t.Errorf("models = %v", agg.Models)
	}
	if len(agg.Specifications) != 1 || agg.Specifications[0] != "220V" {
		t.Errorf("specifications = %v", agg.Specifications)
	}
	if agg.LatestWarranty != "2026-06-30" {
		t.Errorf("latest warranty = %q, issues must not overwrite", agg.LatestWarranty)
	}
	if agg.LatestPrice == nil || !agg.LatestPrice.Equal(dec("120000")) {
		t.Errorf("latest price = %v", agg.LatestPrice)
	}
}

func TestAggregateBalancedForAnyLedger(t *testing.T) {
	assertBalanced(t, Aggregate(nil))
	assertBalanced(t, Aggregate([]models.TransactionRow{{DocNumber: "PX1", DeviceName: "Solo", Quantity: "2", Amount: "10"}}))

	r := rand.New(rand.NewSource(7))
	docs := []string{"PN0001", "PX0001", "PC0001", "NB0001", "px0002"}
	names := []string{"Pump", "Cable", "Máy", ""}
	qtys := []string{"", "1", "2,5", "1.000", "x", "-1"}
	var rows []models.TransactionRow
	for i := 0; i < 300; i++ {
		rows = append(rows, models.TransactionRow{
			DocNumber:  docs[r.Intn(len(docs))],
			DeviceName: names[r.Intn(len(names))],
			Quantity:   qtys[r.Intn(len(qtys))],
			Amount:     qtys[r.Intn(len(qtys))],
		})
	}
	assertBalanced(t, Aggregate(rows))
}

func TestAggregateTotalsIndependentOfOrder(t *testing.T) {
	rows := []models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "5", Amount: "1.000.000"},
		{DocNumber: "PX0001", DeviceCode: "A1", Quantity: "2", Amount: "400.000"},
		{DocNumber: "PN0002", DeviceCode: "A1", DeviceName: "Pump", Quantity: "", Amount: "10"},
		{DocNumber: "PX0002", DeviceName: "Cable", Quantity: "3", Amount: "3,5"},
	}
	reversed := make([]models.TransactionRow, len(rows))
	for i, row := range rows {
		reversed[len(rows)-1-i] = row
	}

	forward := Aggregate(rows)
	backward := Aggregate(reversed)
	for key, a := range forward {
		b := backward[key]
		if b == nil {
			t.Fatalf("key %s missing after reorder", key)
		}
		if !a.ImportedQty.Equal(b.ImportedQty) || !a.ExportedQty.Equal(b.ExportedQty) ||
			!a.ImportedValue.Equal(b.ImportedValue) || !a.ExportedValue.Equal(b.ExportedValue) {
			t.Errorf("%s totals differ after reorder: %+v vs %+v", key, a, b)
		}
	}
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	base := Aggregate([]models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "3", Amount: "300"},
		{DocNumber: "PN0001", DeviceCode: "B2", DeviceName: "Cable", Quantity: "1", Amount: "5"},
	})
	before := base["A1"]

	next := base.Apply([]models.TransactionRow{
		{DocNumber: "PX0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "2", Amount: "200"},
	})

	assertDecimal(t, "base stock", base["A1"].Stock, "3")
	if len(base["A1"].History) != 1 {
		t.Errorf("base history mutated: %d rows", len(base["A1"].History))
	}
	assertDecimal(t, "next stock", next["A1"].Stock, "1")
	if next["A1"] == before {
		t.Error("touched aggregate must be cloned")
	}
	if next["B2"] != base["B2"] {
		t.Error("untouched aggregate should be shared")
	}
}

func TestApplyMatchesFullRecompute(t *testing.T) {
	first := []models.TransactionRow{
		{DocNumber: "PN0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "5", Amount: "1.000.000", Warranty: "2025-01-01", UnitPrice: "200.000"},
	}
	second := []models.TransactionRow{
		{DocNumber: "PX0001", DeviceCode: "A1", DeviceName: "Pump", Quantity: "2", Amount: "400.000"},
		{DocNumber: "PN0002", DeviceCode: "Z9", DeviceName: "Valve", Quantity: "1", Amount: "7"},
	}

	incremental := Aggregate(first).Apply(second)
	full := Aggregate(append(append([]models.TransactionRow(nil), first...), second...))

	for key, want := range full {
		got := incremental[key]
		if got == nil {
			t.Fatalf("%s missing from incremental result", key)
		}
		if !got.Stock.Equal(want.Stock) || !got.StockValue.Equal(want.StockValue) ||
			len(got.History) != len(want.History) || got.LatestWarranty != want.LatestWarranty {
			t.Errorf("%s: incremental %+v != full %+v", key, got, want)
		}
	}
}
