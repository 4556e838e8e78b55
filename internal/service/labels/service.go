package labels

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

// SearchLimit caps how many rows a lookup returns.
const SearchLimit = 100

const defaultDeviceName = "Thiết bị"

// SnapshotSource hands out the current ledger snapshot.
type SnapshotSource interface {
	Snapshot() *inventory.Snapshot
}

// SearchResult is one page of lookup hits plus the unclipped match count.
type SearchResult struct {
	Labels []models.DeviceLabel `json:"labels"`
	Total  int                  `json:"total"`
}

// Service turns ledger rows into printable device labels.
type Service struct {
	source SnapshotSource
}

// NewService wires the label service.
func NewService(source SnapshotSource) *Service {
	return &Service{source: source}
}

// Labels returns one label per ledger row that carries a ticket number.
func (s *Service) Labels() []models.DeviceLabel {
	rows := s.source.Snapshot().Rows
	labels := make([]models.DeviceLabel, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.DocNumber) == "" {
			continue
		}
		labels = append(labels, labelFor(i, row))
	}
	return labels
}

// Tickets lists the distinct ticket numbers, newest-looking first.
func (s *Service) Tickets(search string) []string {
	needle := strings.ToLower(strings.TrimSpace(search))
	seen := make(map[string]struct{})
	var tickets []string
	for _, row := range s.source.Snapshot().Rows {
		doc := strings.TrimSpace(row.DocNumber)
		if doc == "" {
			continue
		}
		if _, ok := seen[doc]; ok {
			continue
		}
		seen[doc] = struct{}{}
		if needle != "" && !strings.Contains(strings.ToLower(doc), needle) {
			continue
		}
		tickets = append(tickets, doc)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(tickets)))
	return tickets
}

// Items returns the labels of one ticket, in ledger order.
func (s *Service) Items(ticket string) []models.DeviceLabel {
	ticket = strings.TrimSpace(ticket)
	var out []models.DeviceLabel
	for _, label := range s.Labels() {
		if label.TicketNumber == ticket {
			out = append(out, label)
		}
	}
	return out
}

// Search matches term against ticket number, device name, model and section.
func (s *Service) Search(term string) SearchResult {
	all := s.Labels()
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return clip(all)
	}

	var hits []models.DeviceLabel
	for _, label := range all {
		if containsFold(label.TicketNumber, needle) ||
			containsFold(label.DeviceName, needle) ||
			containsFold(label.ModelSerial, needle) ||
			containsFold(label.Section, needle) {
			hits = append(hits, label)
		}
	}
	return clip(hits)
}

func clip(labels []models.DeviceLabel) SearchResult {
	res := SearchResult{Labels: labels, Total: len(labels)}
	if len(labels) > SearchLimit {
		res.Labels = labels[:SearchLimit]
	}
	if res.Labels == nil {
		res.Labels = []models.DeviceLabel{}
	}
	return res
}

func containsFold(value, needle string) bool {
	return strings.Contains(strings.ToLower(value), needle)
}

func labelFor(rowID int, row models.TransactionRow) models.DeviceLabel {
	name := strings.TrimSpace(row.DeviceName)
	if name == "" {
		name = defaultDeviceName
	}
	return models.DeviceLabel{
		RowID:        rowID,
		TicketNumber: strings.TrimSpace(row.DocNumber),
		QRContent:    qrContent(name, row),
		DeviceName:   name,
		Section:      row.Section,
		Provider:     row.Counterparty,
		ModelSerial:  row.ModelSerial,
	}
}

// qrContent prefers the sheet's own QR column and composes the label text
// when the formula there is missing or broken.
func qrContent(name string, row models.TransactionRow) string {
	qr := strings.TrimSpace(row.QRContent)
	if qr != "" && qr != "#N/A" && !strings.HasPrefix(qr, "Error") {
		return qr
	}

	providerLabel, dateLabel := "Nhà CC: ", "Ngày giao: "
	if ledger.IsIssue(row.DocNumber) {
		providerLabel, dateLabel = "Khoa phòng: ", "Ngày cấp: "
	}

	return fmt.Sprintf("Tên thiết bị: %s\n%s%s\nBộ phận sử dụng: %s\n%s%s\nModel, Serial: %s\nBảo hành: %s",
		name,
		providerLabel, row.Counterparty,
		row.Section,
		dateLabel, ledger.DisplayDate(strings.TrimSpace(row.DocDate)),
		row.ModelSerial,
		ledger.DisplayDate(strings.TrimSpace(row.Warranty)),
	)
}
