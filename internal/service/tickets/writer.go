package tickets

import (
	"context"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
)

// Writer appends one ticket's ledger lines to the backend in a single request.
type Writer interface {
	WriteTicket(ctx context.Context, rows [][]interface{}) error
}

// ScriptCreator is the create_ticket side of the Apps Script client.
type ScriptCreator interface {
	CreateTicket(ctx context.Context, rows [][]interface{}) error
}

// RowAppender is the append side of the Sheets repository.
type RowAppender interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// ScriptWriter submits tickets through the spreadsheet's bound script.
type ScriptWriter struct {
	Script ScriptCreator
}

// WriteTicket implements Writer.
func (w ScriptWriter) WriteTicket(ctx context.Context, rows [][]interface{}) error {
	return w.Script.CreateTicket(ctx, rows)
}

// SheetsWriter appends tickets directly with the Sheets API.
type SheetsWriter struct {
	Sheets RowAppender
	Range  string
}

// WriteTicket implements Writer.
func (w SheetsWriter) WriteTicket(ctx context.Context, rows [][]interface{}) error {
	return w.Sheets.AppendRows(ctx, w.Range, rows)
}

// wireRows lays the draft out in ledger column order, numbers as numbers.
func wireRows(draft models.TicketDraft) [][]interface{} {
	rows := make([][]interface{}, 0, len(draft.Items))
	for _, item := range draft.Items {
		rows = append(rows, []interface{}{
			"'",
			string(draft.Type),
			draft.Partner,
			draft.Section,
			draft.Number,
			draft.Date,
			item.DeviceCode,
			item.DeviceName,
			item.Details,
			item.Unit,
			item.Manufacturer,
			item.Country,
			item.ModelSerial,
			item.Warranty,
			item.Quantity.InexactFloat64(),
			item.Price.InexactFloat64(),
			item.Total.InexactFloat64(),
			item.Notes,
		})
	}
	return rows
}

// ledgerRows renders the draft the way a reload would read it back.
func ledgerRows(draft models.TicketDraft) []models.TransactionRow {
	rows := make([]models.TransactionRow, 0, len(draft.Items))
	for _, item := range draft.Items {
		rows = append(rows, models.TransactionRow{
			DocType:       string(draft.Type),
			Counterparty:  draft.Partner,
			Section:       draft.Section,
			DocNumber:     draft.Number,
			DocDate:       draft.Date,
			DeviceCode:    item.DeviceCode,
			DeviceName:    item.DeviceName,
			Specification: item.Details,
			Unit:          item.Unit,
			Manufacturer:  item.Manufacturer,
			Country:       item.Country,
			ModelSerial:   item.ModelSerial,
			Warranty:      item.Warranty,
			Quantity:      ledger.FormatAmount(item.Quantity),
			UnitPrice:     ledger.FormatAmount(item.Price),
			Amount:        ledger.FormatAmount(item.Total),
			Notes:         item.Notes,
		})
	}
	return rows
}
