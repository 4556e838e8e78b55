package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Ledger column positions, 0-indexed, as stored in the spreadsheet.
const (
	ColReserved = iota
	ColDocType
	ColCounterparty
	ColSection
	ColDocNumber
	ColDocDate
	ColDeviceCode
	ColDeviceName
	ColSpecification
	ColUnit
	ColManufacturer
	ColCountry
	ColModelSerial
	ColWarranty
	ColQuantity
	ColUnitPrice
	ColAmount
	ColNotes
	ColQRContent

	// LedgerWidth is the number of columns the engine consumes.
	LedgerWidth = ColNotes + 1
)

// TransactionRow is one line item of one goods-receipt or goods-issue document.
// Cells are kept as the raw text the spreadsheet returned; numeric and date
// interpretation happens in the ledger package.
type TransactionRow struct {
	DocType       string `json:"doc_type"`
	Counterparty  string `json:"counterparty"`
	Section       string `json:"section"`
	DocNumber     string `json:"doc_number"`
	DocDate       string `json:"doc_date"`
	DeviceCode    string `json:"device_code"`
	DeviceName    string `json:"device_name"`
	Specification string `json:"specification"`
	Unit          string `json:"unit"`
	Manufacturer  string `json:"manufacturer"`
	Country       string `json:"country"`
	ModelSerial   string `json:"model_serial"`
	Warranty      string `json:"warranty"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	Amount        string `json:"amount"`
	Notes         string `json:"notes"`
	QRContent     string `json:"qr_content,omitempty"`
}

// RowFromCells maps one spreadsheet row onto a TransactionRow. Missing
// trailing cells are treated as empty.
func RowFromCells(cells []interface{}) TransactionRow {
	cell := func(i int) string {
		if i >= len(cells) {
			return ""
		}
		return CellString(cells[i])
	}

	return TransactionRow{
		DocType:       cell(ColDocType),
		Counterparty:  cell(ColCounterparty),
		Section:       cell(ColSection),
		DocNumber:     cell(ColDocNumber),
		DocDate:       cell(ColDocDate),
		DeviceCode:    cell(ColDeviceCode),
		DeviceName:    cell(ColDeviceName),
		Specification: cell(ColSpecification),
		Unit:          cell(ColUnit),
		Manufacturer:  cell(ColManufacturer),
		Country:       cell(ColCountry),
		ModelSerial:   cell(ColModelSerial),
		Warranty:      cell(ColWarranty),
		Quantity:      cell(ColQuantity),
		UnitPrice:     cell(ColUnitPrice),
		Amount:        cell(ColAmount),
		Notes:         cell(ColNotes),
		QRContent:     cell(ColQRContent),
	}
}

// IsHeader reports whether the row is a repeated column-title row rather than data.
func (r TransactionRow) IsHeader() bool {
	doc := strings.ToUpper(strings.TrimSpace(r.DocNumber))
	return doc == "SỐ PHIẾU" || strings.Contains(doc, "TICKET")
}

// CellString renders a spreadsheet cell value as text. Floats are written
// without exponent so that large amounts survive the trip.
func CellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
