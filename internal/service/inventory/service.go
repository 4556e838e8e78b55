package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/metrics"
)

// RangeReader is the read side of the spreadsheet transport.
type RangeReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// EndpointSetter receives the write endpoint discovered in the spreadsheet.
type EndpointSetter interface {
	SetEndpoint(url string)
	Endpoint() string
}

// Snapshot is one immutable view of the ledger and the balances derived
// from it. A new Snapshot is published on every reload and every overlay.
type Snapshot struct {
	Rows      []models.TransactionRow
	Inventory ledger.Inventory
	LoadedAt  time.Time
	Overlaid  int
}

type pendingBatch struct {
	docNumber   string
	rows        []models.TransactionRow
	submittedAt time.Time
}

// Service owns the in-memory ledger. All writes go through Reload and
// ApplySubmitted, which serialize on mu; readers take the current Snapshot
// and never block writers for longer than a pointer swap.
type Service struct {
	reader   RangeReader
	endpoint EndpointSetter
	cfg      config.LedgerConfig
	logger   *zap.Logger
	now      func() time.Time

	reloadSeq atomic.Uint64

	mu         sync.RWMutex
	snapshot   *Snapshot
	appliedSeq uint64
	pending    []pendingBatch
}

// NewService wires the ledger service. endpoint may be nil when the write
// endpoint is not discovered from the sheet.
func NewService(reader RangeReader, endpoint EndpointSetter, cfg config.LedgerConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reader:   reader,
		endpoint: endpoint,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		snapshot: &Snapshot{Inventory: ledger.Inventory{}},
	}
}

// Snapshot returns the current published state.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Reload refetches the whole ledger and recomputes every aggregate from
// scratch. When two reloads overlap, the one started last wins even if it
// resolves first; the older result is dropped.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	seq := s.reloadSeq.Add(1)
	started := s.now()

	values, err := s.reader.ReadRange(ctx, s.cfg.ReadRange())
	if err != nil {
		metrics.LedgerReloads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	rows := ParseRows(values)
	s.discoverEndpoint(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq {
		metrics.LedgerReloads.WithLabelValues("stale").Inc()
		s.logger.Info("dropping stale ledger reload", zap.Uint64("seq", seq), zap.Uint64("applied_seq", s.appliedSeq))
		return s.snapshot, nil
	}

	inv := ledger.Aggregate(rows)

	now := s.now()
	s.pending = s.reconcilePending(rows, now)
	var overlaid int
	for _, batch := range s.pending {
		rows = append(rows, batch.rows...)
		inv = inv.Apply(batch.rows)
		overlaid += len(batch.rows)
	}

	s.snapshot = &Snapshot{Rows: rows, Inventory: inv, LoadedAt: now, Overlaid: overlaid}
	s.appliedSeq = seq

	metrics.LedgerReloads.WithLabelValues("ok").Inc()
	metrics.LedgerRows.Set(float64(len(rows)))
	metrics.PendingOverlayRows.Set(float64(overlaid))

	s.logger.Info("ledger reloaded",
		zap.Int("rows", len(rows)),
		zap.Int("devices", len(inv)),
		zap.Int("pending_rows", overlaid),
		zap.Duration("duration", now.Sub(started)))

	return s.snapshot, nil
}

// ApplySubmitted folds rows the backend has just accepted into the current
// snapshot without waiting for a reload. The rows stay pending until a
// reload sees their document number or the pending TTL runs out.
func (s *Service) ApplySubmitted(rows []models.TransactionRow) *Snapshot {
	if len(rows) == 0 {
		return s.Snapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snapshot
	merged := make([]models.TransactionRow, 0, len(cur.Rows)+len(rows))
	merged = append(merged, cur.Rows...)
	merged = append(merged, rows...)

	s.snapshot = &Snapshot{
		Rows:      merged,
		Inventory: cur.Inventory.Apply(rows),
		LoadedAt:  cur.LoadedAt,
		Overlaid:  cur.Overlaid + len(rows),
	}
	s.pending = append(s.pending, pendingBatch{
		docNumber:   normalizeDocNumber(rows[0].DocNumber),
		rows:        append([]models.TransactionRow(nil), rows...),
		submittedAt: s.now(),
	})

	metrics.LedgerRows.Set(float64(len(merged)))
	metrics.PendingOverlayRows.Set(float64(s.snapshot.Overlaid))

	return s.snapshot
}

// History returns the contributing rows of one device, in ledger order.
func (s *Service) History(key string) ([]models.TransactionRow, bool) {
	agg, ok := s.Aggregate(key)
	if !ok {
		return nil, false
	}
	return agg.History, true
}

// Aggregate returns the balance record of one device.
func (s *Service) Aggregate(key string) (*models.InventoryAggregate, bool) {
	agg, ok := s.Snapshot().Inventory[strings.TrimSpace(key)]
	return agg, ok
}

// NextTicketNumber suggests the next document number for prefix against the
// current ledger, overlay included.
func (s *Service) NextTicketNumber(prefix string) string {
	return ledger.NextTicketNumber(prefix, s.Snapshot().Rows)
}

// reconcilePending keeps the batches a fresh read has not caught up with yet.
// A batch is caught up once the read holds its document number with every
// one of its device lines; another ticket that reused the number is not enough.
func (s *Service) reconcilePending(rows []models.TransactionRow, now time.Time) []pendingBatch {
	if len(s.pending) == 0 {
		return nil
	}

	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[lineKey(row)]++
	}

	var kept []pendingBatch
	for _, batch := range s.pending {
		if batchVisible(batch, seen) {
			continue
		}
		if now.Sub(batch.submittedAt) >= s.cfg.PendingTTL {
			s.logger.Warn("submitted ticket not visible in ledger after ttl, dropping overlay",
				zap.String("doc_number", batch.docNumber),
				zap.Duration("ttl", s.cfg.PendingTTL))
			continue
		}
		kept = append(kept, batch)
	}
	return kept
}

func batchVisible(batch pendingBatch, seen map[string]int) bool {
	want := make(map[string]int, len(batch.rows))
	for _, row := range batch.rows {
		want[lineKey(row)]++
	}
	for key, n := range want {
		if seen[key] < n {
			return false
		}
	}
	return true
}

func lineKey(row models.TransactionRow) string {
	return normalizeDocNumber(row.DocNumber) + "\x00" + ledger.DeviceKey(row.DeviceCode, row.DeviceName)
}

func (s *Service) discoverEndpoint(ctx context.Context) {
	if s.endpoint == nil || s.cfg.ScriptRange == "" {
		return
	}

	values, err := s.reader.ReadRange(ctx, s.cfg.ScriptRange)
	if err != nil {
		s.logger.Debug("script endpoint lookup failed", zap.Error(err))
		return
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return
	}

	url := strings.TrimSpace(models.CellString(values[0][0]))
	if !strings.HasPrefix(url, "http") || url == s.endpoint.Endpoint() {
		return
	}

	s.endpoint.SetEndpoint(url)
	s.logger.Info("script endpoint updated from sheet", zap.String("range", s.cfg.ScriptRange))
}

// ParseRows converts raw sheet values into ledger rows, dropping blank rows
// and repeated header rows.
func ParseRows(values [][]interface{}) []models.TransactionRow {
	rows := make([]models.TransactionRow, 0, len(values))
	for _, cells := range values {
		if isBlank(cells) {
			continue
		}
		row := models.RowFromCells(cells)
		if row.IsHeader() {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(cells []interface{}) bool {
	for i, cell := range cells {
		if i >= models.LedgerWidth {
			break
		}
		if i == models.ColReserved {
			continue
		}
		if strings.TrimSpace(models.CellString(cell)) != "" {
			return false
		}
	}
	return true
}

func normalizeDocNumber(doc string) string {
	return strings.ToUpper(strings.TrimSpace(doc))
}
