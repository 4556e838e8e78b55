package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

const (
	latestTicketCount = 5
	topSectionCount   = 4
)

// SnapshotSource hands out the current ledger snapshot.
type SnapshotSource interface {
	Snapshot() *inventory.Snapshot
}

// Service builds the import/export/stock report and the dashboard counters.
type Service struct {
	source SnapshotSource
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(source SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger, now: time.Now}
}

// Report lists every device balance matching filter, sorted by name the
// way Vietnamese readers expect.
func (s *Service) Report(filter models.ReportFilter) models.InventoryReport {
	snap := s.source.Snapshot()
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	lines := make([]models.ReportLine, 0, len(snap.Inventory))
	for _, agg := range snap.Inventory {
		if needle != "" && !matches(agg, needle) {
			continue
		}
		if filter.HideZero && !agg.Stock.IsPositive() {
			continue
		}
		lines = append(lines, models.ReportLine{
			Key:         agg.Key,
			Name:        agg.DisplayName(),
			Models:      append([]string(nil), agg.Models...),
			ImportedQty: agg.ImportedQty,
			ExportedQty: agg.ExportedQty,
			Stock:       agg.Stock,
			StockValue:  agg.StockValue,
			Negative:    agg.Stock.IsNegative(),
		})
	}

	sortLines(lines)

	return models.InventoryReport{
		Lines:       lines,
		Summary:     summarize(lines),
		GeneratedAt: s.now(),
	}
}

// Dashboard computes the home screen counters over the raw ledger rows.
func (s *Service) Dashboard() models.Dashboard {
	snap := s.source.Snapshot()

	tickets := make(map[string]struct{})
	var ticketOrder []string
	providers := make(map[string]struct{})
	sections := make(map[string]int)

	for _, row := range snap.Rows {
		if doc := strings.TrimSpace(row.DocNumber); doc != "" {
			if _, ok := tickets[doc]; !ok {
				tickets[doc] = struct{}{}
				ticketOrder = append(ticketOrder, doc)
			}
		}
		if p := strings.TrimSpace(row.Counterparty); p != "" {
			providers[p] = struct{}{}
		}
		if sec := strings.TrimSpace(row.Section); sec != "" {
			sections[sec]++
		}
	}

	latest := make([]string, 0, latestTicketCount)
	for i := len(ticketOrder) - 1; i >= 0 && len(latest) < latestTicketCount; i-- {
		latest = append(latest, ticketOrder[i])
	}

	top := make([]models.NamedCount, 0, len(sections))
	for name, count := range sections {
		top = append(top, models.NamedCount{Name: name, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topSectionCount {
		top = top[:topSectionCount]
	}

	return models.Dashboard{
		TotalRows:       len(snap.Rows),
		UniqueTickets:   len(tickets),
		UniqueSections:  len(sections),
		UniqueProviders: len(providers),
		LatestTickets:   latest,
		TopSections:     top,
		LoadedAt:        snap.LoadedAt,
	}
}

// BuildSnapshot captures the current balances for persistence.
func (s *Service) BuildSnapshot() models.InventorySnapshot {
	snap := s.source.Snapshot()
	now := s.now()

	out := models.InventorySnapshot{
		TakenAt:    snap.LoadedAt,
		LedgerRows: len(snap.Rows),
		Items:      make([]models.SnapshotLine, 0, len(snap.Inventory)),
		Negative:   snap.Inventory.Negative(),
		CreatedAt:  now,
	}

	totalStock, totalValue := decimal.Zero, decimal.Zero
	for _, key := range snap.Inventory.Keys() {
		agg := snap.Inventory[key]
		totalStock = totalStock.Add(agg.Stock)
		totalValue = totalValue.Add(agg.StockValue)
		out.Items = append(out.Items, models.SnapshotLine{
			Key:        agg.Key,
			Name:       agg.DisplayName(),
			Imported:   agg.ImportedQty.String(),
			Exported:   agg.ExportedQty.String(),
			Stock:      agg.Stock.String(),
			StockValue: agg.StockValue.String(),
		})
	}
	out.TotalStock = totalStock.String()
	out.TotalValue = totalValue.String()

	return out
}

// AnomalyDigest describes the devices whose derived stock is negative. It
// returns false when there is nothing to report.
func (s *Service) AnomalyDigest() (string, bool) {
	inv := s.source.Snapshot().Inventory
	negative := inv.Negative()
	if len(negative) == 0 {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock anomalies (%s): %d device(s) below zero\n", s.now().Format("02/01/2006"), len(negative))
	for _, key := range negative {
		agg := inv[key]
		fmt.Fprintf(&b, "- %s [%s]: %s\n", agg.DisplayName(), key, ledger.FormatAmount(agg.Stock))
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func matches(agg *models.InventoryAggregate, needle string) bool {
	if strings.Contains(strings.ToLower(agg.DisplayName()), needle) {
		return true
	}
	for _, m := range agg.Models {
		if strings.Contains(strings.ToLower(m), needle) {
			return true
		}
	}
	return false
}

func sortLines(lines []models.ReportLine) {
	col := collate.New(language.Vietnamese, collate.IgnoreCase)
	sort.SliceStable(lines, func(i, j int) bool {
		if c := col.CompareString(lines[i].Name, lines[j].Name); c != 0 {
			return c < 0
		}
		return lines[i].Key < lines[j].Key
	})
}

func summarize(lines []models.ReportLine) models.ReportSummary {
	sum := models.ReportSummary{
		Items:       len(lines),
		TotalImport: decimal.Zero,
		TotalExport: decimal.Zero,
		TotalStock:  decimal.Zero,
		TotalValue:  decimal.Zero,
	}
	for _, line := range lines {
		sum.TotalImport = sum.TotalImport.Add(line.ImportedQty)
		sum.TotalExport = sum.TotalExport.Add(line.ExportedQty)
		sum.TotalStock = sum.TotalStock.Add(line.Stock)
		sum.TotalValue = sum.TotalValue.Add(line.StockValue)
	}
	return sum
}
