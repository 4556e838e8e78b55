package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter narrows the inventory report.
type ReportFilter struct {
	Search   string `form:"search"`
	HideZero bool   `form:"hide_zero"`
}

// ReportLine is one device row of the import/export/stock report.
type ReportLine struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Models      []string        `json:"models"`
	ImportedQty decimal.Decimal `json:"imported_qty"`
	ExportedQty decimal.Decimal `json:"exported_qty"`
	Stock       decimal.Decimal `json:"stock"`
	StockValue  decimal.Decimal `json:"stock_value"`
	Negative    bool            `json:"negative"`
}

// ReportSummary totals the visible report lines.
type ReportSummary struct {
	Items       int             `json:"items"`
	TotalImport decimal.Decimal `json:"total_import"`
	TotalExport decimal.Decimal `json:"total_export"`
	TotalStock  decimal.Decimal `json:"total_stock"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// InventoryReport bundles lines with their summary.
type InventoryReport struct {
	Lines       []ReportLine  `json:"lines"`
	Summary     ReportSummary `json:"summary"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NamedCount pairs a label with how many ledger rows reference it.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard holds the headline counters of the home screen.
type Dashboard struct {
	TotalRows       int          `json:"total_rows"`
	UniqueTickets   int          `json:"unique_tickets"`
	UniqueSections  int          `json:"unique_sections"`
	UniqueProviders int          `json:"unique_providers"`
	LatestTickets   []string     `json:"latest_tickets"`
	TopSections     []NamedCount `json:"top_sections"`
	LoadedAt        time.Time    `json:"loaded_at"`
}

// InventorySnapshot is the daily stock picture persisted to MongoDB.
type InventorySnapshot struct {
	TakenAt    time.Time      `bson:"taken_at" json:"taken_at"`
	LedgerRows int            `bson:"ledger_rows" json:"ledger_rows"`
	Items      []SnapshotLine `bson:"items" json:"items"`
	TotalStock string         `bson:"total_stock" json:"total_stock"`
	TotalValue string         `bson:"total_value" json:"total_value"`
	Negative   []string       `bson:"negative_keys" json:"negative_keys"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
}

// SnapshotLine stores decimals as strings to keep exact values in BSON.
type SnapshotLine struct {
	Key        string `bson:"key" json:"key"`
	Name       string `bson:"name" json:"name"`
	Imported   string `bson:"imported" json:"imported"`
	Exported   string `bson:"exported" json:"exported"`
	Stock      string `bson:"stock" json:"stock"`
	StockValue string `bson:"stock_value" json:"stock_value"`
}
