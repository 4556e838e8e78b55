package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
)

const exportSheet = "XuatNhapTon"

var exportHeaders = []string{"STT", "Tên Thiết Bị", "Model/Quy cách", "Tổng Nhập", "Tổng Xuất", "Tồn Kho", "Giá trị tồn"}

// ExportFilename names an export of the given extension after its date.
func ExportFilename(report models.InventoryReport, ext string) string {
	return fmt.Sprintf("Xuat_Nhap_Ton_%s.%s", report.GeneratedAt.Format("02-01-2006"), ext)
}

// ExportCSV writes the report lines as CSV, prefixed with a UTF-8 BOM so
// spreadsheet tools pick the right encoding for Vietnamese names.
func ExportCSV(w io.Writer, report models.InventoryReport) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for i, line := range report.Lines {
		record := []string{
			strconv.Itoa(i + 1),
			line.Name,
			strings.Join(line.Models, ", "),
			ledger.FormatAmount(line.ImportedQty),
			ledger.FormatAmount(line.ExportedQty),
			ledger.FormatAmount(line.Stock),
			ledger.FormatAmount(line.StockValue),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportXLSX writes the report as a single-sheet workbook with a totals row.
func ExportXLSX(w io.Writer, report models.InventoryReport) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	negativeStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})
	if err != nil {
		return fmt.Errorf("create negative style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, line := range report.Lines {
		rowNum := i + 2
		values := []interface{}{
			i + 1,
			line.Name,
			strings.Join(line.Models, ", "),
			line.ImportedQty.InexactFloat64(),
			line.ExportedQty.InexactFloat64(),
			line.Stock.InexactFloat64(),
			line.StockValue.InexactFloat64(),
		}
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(exportSheet, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if line.Negative {
			cell, _ := excelize.CoordinatesToCellName(6, rowNum)
			_ = f.SetCellStyle(exportSheet, cell, cell, negativeStyle)
		}
	}

	totalRow := len(report.Lines) + 2
	totals := []interface{}{
		"",
		"Tổng cộng",
		"",
		report.Summary.TotalImport.InexactFloat64(),
		report.Summary.TotalExport.InexactFloat64(),
		report.Summary.TotalStock.InexactFloat64(),
		report.Summary.TotalValue.InexactFloat64(),
	}
	start, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetSheetRow(exportSheet, start, &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	end, _ := excelize.CoordinatesToCellName(len(exportHeaders), totalRow)
	_ = f.SetCellStyle(exportSheet, start, end, headerStyle)

	_ = f.SetColWidth(exportSheet, "A", "A", 6)
	_ = f.SetColWidth(exportSheet, "B", "C", 36)
	_ = f.SetColWidth(exportSheet, "D", "G", 15)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
