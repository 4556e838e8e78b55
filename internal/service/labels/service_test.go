package labels

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

type fixedSource struct{ rows []models.TransactionRow }

func (f fixedSource) Snapshot() *inventory.Snapshot {
	return &inventory.Snapshot{Rows: f.rows}
}

func TestLabelsComposeMissingQR(t *testing.T) {
	svc := NewService(fixedSource{rows: []models.TransactionRow{
		{DocNumber: "PN0001", DeviceName: "Monitor", QRContent: "QR-FROM-SHEET"},
		{DocNumber: "PX0001", Counterparty: "ICU", Section: "Hồi sức", DocDate: "Date(2024,0,5)", ModelSerial: "M-9", Warranty: "2026-01-31", QRContent: "#N/A"},
		{DocNumber: "PN0002", DeviceName: "Bơm", Counterparty: "ACME", DocDate: "05/02/2024", QRContent: "Error: loading"},
		{DocNumber: " ", DeviceName: "orphan"},
	}})

	labels := svc.Labels()
	if len(labels) != 3 {
		t.Fatalf("labels = %d, rows without ticket must be skipped", len(labels))
	}
	if labels[0].QRContent != "QR-FROM-SHEET" {
		t.Errorf("sheet qr = %q", labels[0].QRContent)
	}

	want := "Tên thiết bị: Thiết bị\nKhoa phòng: ICU\nBộ phận sử dụng: Hồi sức\nNgày cấp: 05/01/2024\nModel, Serial: M-9\nBảo hành: 31/01/2026"
	if labels[1].QRContent != want {
		t.Errorf("issue qr =\n%s\nwant\n%s", labels[1].QRContent, want)
	}
	if !strings.Contains(labels[2].QRContent, "Nhà CC: ACME") || !strings.Contains(labels[2].QRContent, "Ngày giao: 05/02/2024") {
		t.Errorf("receipt qr = %q", labels[2].QRContent)
	}
}

func TestTicketsAndItems(t *testing.T) {
	svc := NewService(fixedSource{rows: []models.TransactionRow{
		{DocNumber: "PN0001", DeviceName: "A"},
		{DocNumber: "PX0002", DeviceName: "B"},
		{DocNumber: "PN0001", DeviceName: "C"},
		{DocNumber: "PN0010", DeviceName: "D"},
	}})

	if got := strings.Join(svc.Tickets(""), ","); got != "PX0002,PN0010,PN0001" {
		t.Errorf("tickets = %s", got)
	}
	if got := strings.Join(svc.Tickets("pn"), ","); got != "PN0010,PN0001" {
		t.Errorf("filtered tickets = %s", got)
	}

	items := svc.Items("PN0001")
	if len(items) != 2 || items[0].DeviceName != "A" || items[1].DeviceName != "C" || items[1].RowID != 2 {
		t.Errorf("items = %+v", items)
	}
}

func TestSearchIsCappedAndCaseInsensitive(t *testing.T) {
	rows := make([]models.TransactionRow, 0, 150)
	for i := 0; i < 150; i++ {
		rows = append(rows, models.TransactionRow{DocNumber: fmt.Sprintf("PN%04d", i), DeviceName: "Máy thở", Section: "ICU"})
	}
	rows = append(rows, models.TransactionRow{DocNumber: "PX0001", DeviceName: "Monitor", ModelSerial: "SN-77", Section: "Khoa Nhi"})
	svc := NewService(fixedSource{rows: rows})

	tests := []struct {
		term      string
		total     int
		returned  int
		firstName string
	}{
		{"MÁY THỞ", 150, SearchLimit, "Máy thở"},
		{"sn-77", 1, 1, "Monitor"},
		{"nhi", 1, 1, "Monitor"},
		{"px0001", 1, 1, "Monitor"},
		{"", 151, SearchLimit, "Máy thở"},
		{"nothing", 0, 0, ""},
	}
	for _, tt := range tests {
		res := svc.Search(tt.term)
		if res.Total != tt.total || len(res.Labels) != tt.returned {
			t.Errorf("Search(%q) total=%d returned=%d", tt.term, res.Total, len(res.Labels))
			continue
		}
		if tt.returned > 0 && res.Labels[0].DeviceName != tt.firstName {
			t.Errorf("Search(%q) first = %q", tt.term, res.Labels[0].DeviceName)
		}
	}
}
