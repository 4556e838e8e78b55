package reporting

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

type fixedSource struct{ snap *inventory.Snapshot }

func (f fixedSource) Snapshot() *inventory.Snapshot { return f.snap }

func row(doc, section, provider, code, name, model, qty, amount string) models.TransactionRow {
	return models.TransactionRow{
		DocType:      doc[:2],
		DocNumber:    doc,
		Section:      section,
		Counterparty: provider,
		DeviceCode:   code,
		DeviceName:   name,
		ModelSerial:  model,
		Quantity:     qty,
		Amount:       amount,
	}
}

func newTestService() *Service {
	rows := []models.TransactionRow{
		row("PN0001", "ICU", "ACME", "B1", "Bơm tiêm điện", "TE-331", "4", "4.000.000"),
		row("PN0001", "ICU", "ACME", "D1", "Đèn mổ", "", "1", "9.000.000"),
		row("PN0002", "Khoa Nhi", "Beta", "A1", "Áo chì", "X-1", "2", "200"),
		row("PX0001", "ICU", "ICU", "B1", "Bơm tiêm điện", "", "1", "1.000.000"),
		row("PX0002", "Khoa Nhi", "Khoa Nhi", "A1", "Áo chì", "", "2", "200"),
		row("PX0003", "ICU", "ICU", "Z1", "Zeta", "", "1", ""),
	}
	snap := &inventory.Snapshot{
		Rows:      rows,
		Inventory: ledger.Aggregate(rows),
		LoadedAt:  time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC),
	}
	svc := NewService(fixedSource{snap: snap}, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func names(lines []models.ReportLine) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Name)
	}
	return strings.Join(out, "|")
}

func TestReportSortsVietnameseNames(t *testing.T) {
	report := newTestService().Report(models.ReportFilter{})

	// "Đ" collates after "D" and before "Z" in Vietnamese.
	if got := names(report.Lines); got != "Áo chì|Bơm tiêm điện|Đèn mổ|Zeta" {
		t.Fatalf("order = %s", got)
	}
	if report.Summary.Items != 4 ||
		!report.Summary.TotalImport.Equal(decimal.NewFromInt(7)) ||
		!report.Summary.TotalExport.Equal(decimal.NewFromInt(4)) ||
		!report.Summary.TotalStock.Equal(decimal.NewFromInt(3)) {
		t.Errorf("summary = %+v", report.Summary)
	}
	if !report.Lines[3].Negative {
		t.Error("Zeta should be flagged negative")
	}
}

func TestReportFilters(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name   string
		filter models.ReportFilter
		want   string
	}{
		{"by name", models.ReportFilter{Search: "BƠM"}, "Bơm tiêm điện"},
		{"by model", models.ReportFilter{Search: "x-1"}, "Áo chì"},
		{"hide zero and negative", models.ReportFilter{HideZero: true}, "Bơm tiêm điện|Đèn mổ"},
		{"no match", models.ReportFilter{Search: "ventilator"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(svc.Report(tt.filter).Lines); got != tt.want {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDashboardCounters(t *testing.T) {
	d := newTestService().Dashboard()

	if d.TotalRows != 6 || d.UniqueTickets != 5 || d.UniqueSections != 2 || d.UniqueProviders != 4 {
		t.Fatalf("dashboard = %+v", d)
	}
	if strings.Join(d.LatestTickets, ",") != "PX0003,PX0002,PX0001,PN0002,PN0001" {
		t.Errorf("latest = %v", d.LatestTickets)
	}
	if len(d.TopSections) != 2 || d.TopSections[0].Name != "ICU" || d.TopSections[0].Count != 4 {
		t.Errorf("top sections = %+v", d.TopSections)
	}
}

func TestBuildSnapshotAndDigest(t *testing.T) {
	svc := newTestService()

	snap := svc.BuildSnapshot()
	if len(snap.Items) != 4 || snap.LedgerRows != 6 || snap.TotalStock != "3" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Negative) != 1 || snap.Negative[0] != "Z1" {
		t.Errorf("negative = %v", snap.Negative)
	}

	digest, ok := svc.AnomalyDigest()
	if !ok || !strings.Contains(digest, "Zeta [Z1]: -1") || !strings.Contains(digest, "02/05/2024") {
		t.Errorf("digest = %q", digest)
	}
}

func TestExportCSV(t *testing.T) {
	report := newTestService().Report(models.ReportFilter{HideZero: true})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, report); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing utf-8 bom")
	}

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 || records[1][1] != "Bơm tiêm điện" || records[1][5] != "3" || records[1][6] != "3.000.000" {
		t.Fatalf("records = %v", records)
	}
	if got := ExportFilename(report, "csv"); got != "Xuat_Nhap_Ton_02-05-2024.csv" {
		t.Errorf("filename = %q", got)
	}
}

func TestExportXLSX(t *testing.T) {
	report := newTestService().Report(models.ReportFilter{})

	var buf bytes.Buffer
	if err := ExportXLSX(&buf, report); err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want header, 4 lines and totals", len(rows))
	}
	if rows[0][1] != "Tên Thiết Bị" || rows[1][1] != "Áo chì" || rows[5][1] != "Tổng cộng" {
		t.Errorf("rows = %v", rows)
	}
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != exportSheet {
		t.Errorf("sheets = %v", sheets)
	}
}
