package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/metrics"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

var (
	// ErrIncompleteDraft is returned when number, partner or items are missing.
	ErrIncompleteDraft = errors.New("ticket needs a number, a partner and at least one item")
	// ErrInsufficientStock is returned when an issue asks for more than is in stock.
	ErrInsufficientStock = errors.New("requested quantity exceeds stock")
	// ErrSubmissionFailed wraps any backend failure during submit.
	ErrSubmissionFailed = errors.New("ticket submission failed")
	// ErrInvalidItem is returned for items without a device name or with a bad index.
	ErrInvalidItem = errors.New("invalid ticket item")
	// ErrInvalidType is returned for unknown document prefixes.
	ErrInvalidType = errors.New("invalid ticket type")
	// ErrNumberMismatch is returned when the number's prefix books the
	// ticket on the other side of the ledger than its type.
	ErrNumberMismatch = errors.New("ticket number does not match ticket type")
)

// Ledger is what the ticket service needs from the inventory service.
type Ledger interface {
	Snapshot() *inventory.Snapshot
	NextTicketNumber(prefix string) string
	ApplySubmitted(rows []models.TransactionRow) *inventory.Snapshot
}

// Shortage describes one device an issue cannot cover.
type Shortage struct {
	Key       string          `json:"key"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// StockError reports every shortage of a rejected issue.
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: requested %s, in stock %s", s.Key, s.Requested, s.Available))
	}
	return fmt.Sprintf("%s (%s)", ErrInsufficientStock, strings.Join(parts, "; "))
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Result is returned by a successful submit.
type Result struct {
	Number  string             `json:"number"`
	Type    string             `json:"type"`
	Lines   int                `json:"lines"`
	Total   string             `json:"total"`
	TraceID string             `json:"trace_id"`
	Draft   models.TicketDraft `json:"draft"`
}

// Service composes and submits tickets.
type Service struct {
	drafts *DraftStore
	ledger Ledger
	writer Writer
	logger *zap.Logger
	today  func() string
}

// NewService wires the ticket service.
func NewService(drafts *DraftStore, ledgerSvc Ledger, writer Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if drafts == nil {
		drafts = NewDraftStore()
	}
	return &Service{
		drafts: drafts,
		ledger: ledgerSvc,
		writer: writer,
		logger: logger,
		today:  todayISO,
	}
}

// Draft returns the operator's draft, starting a receipt when none exists.
func (s *Service) Draft(operator string) models.TicketDraft {
	if draft, ok := s.drafts.Get(operator); ok {
		return draft
	}
	draft, _ := s.SwitchType(operator, string(models.TicketReceipt))
	return draft
}

// SwitchType discards the operator's draft and starts a new one of the given
// type, pre-filled with the suggested number and today's date.
func (s *Service) SwitchType(operator, rawType string) (models.TicketDraft, error) {
	ticketType, ok := models.ParseTicketType(rawType)
	if !ok {
		return models.TicketDraft{}, fmt.Errorf("%w: %q", ErrInvalidType, rawType)
	}

	return s.drafts.Update(operator, func(d *models.TicketDraft) error {
		*d = models.TicketDraft{
			Type:   ticketType,
			Number: s.ledger.NextTicketNumber(string(ticketType)),
			Date:   s.today(),
		}
		return nil
	})
}

// UpdateHeader overwrites the header fields that are set in header.
func (s *Service) UpdateHeader(operator string, header models.TicketHeader) (models.TicketDraft, error) {
	s.ensureDraft(operator)
	return s.drafts.Update(operator, func(d *models.TicketDraft) error {
		if header.Number != nil {
			d.Number = strings.ToUpper(strings.TrimSpace(*header.Number))
		}
		if header.Date != nil {
			d.Date = ledger.FormatForInput(strings.TrimSpace(*header.Date))
		}
		if header.Partner != nil {
			d.Partner = strings.TrimSpace(*header.Partner)
		}
		if header.Section != nil {
			d.Section = strings.TrimSpace(*header.Section)
		}
		return nil
	})
}

// AddItem appends a line; its total is always quantity times price.
func (s *Service) AddItem(operator string, item models.TicketItem) (models.TicketDraft, error) {
	item.DeviceName = strings.TrimSpace(item.DeviceName)
	item.DeviceCode = strings.TrimSpace(item.DeviceCode)
	if item.DeviceName == "" {
		return s.Draft(operator), fmt.Errorf("%w: device name is required", ErrInvalidItem)
	}
	if !item.Quantity.IsPositive() {
		return s.Draft(operator), fmt.Errorf("%w: quantity must be positive", ErrInvalidItem)
	}
	item.Total = item.Quantity.Mul(item.Price)

	s.ensureDraft(operator)
	return s.drafts.Update(operator, func(d *models.TicketDraft) error {
		d.Items = append(d.Items, item)
		return nil
	})
}

// RemoveItem drops the line at index.
func (s *Service) RemoveItem(operator string, index int) (models.TicketDraft, error) {
	s.ensureDraft(operator)
	return s.drafts.Update(operator, func(d *models.TicketDraft) error {
		if index < 0 || index >= len(d.Items) {
			return fmt.Errorf("%w: no item at index %d", ErrInvalidItem, index)
		}
		d.Items = append(d.Items[:index], d.Items[index+1:]...)
		return nil
	})
}

// Submit validates the operator's draft, writes it in one request and folds
// it into the in-memory ledger. The draft is left untouched on any error and
// cannot be edited or submitted again while the write is in flight.
func (s *Service) Submit(ctx context.Context, operator string) (*Result, error) {
	s.ensureDraft(operator)
	draft, err := s.drafts.BeginSubmit(operator)
	if err != nil {
		metrics.TicketSubmissions.WithLabelValues(string(draft.Type), "in_progress").Inc()
		return nil, err
	}
	submitted := false
	defer func() {
		if !submitted {
			s.drafts.EndSubmit(operator, nil)
		}
	}()

	traceID := uuid.NewString()
	logger := s.logger.With(
		zap.String("trace_id", traceID),
		zap.String("operator", operatorKey(operator)),
		zap.String("number", draft.Number),
	)

	if strings.TrimSpace(draft.Number) == "" || strings.TrimSpace(draft.Partner) == "" || len(draft.Items) == 0 {
		metrics.TicketSubmissions.WithLabelValues(string(draft.Type), "incomplete").Inc()
		return nil, ErrIncompleteDraft
	}

	// The ledger books a row as an issue by its number alone.
	issue := ledger.IsIssue(draft.Number)
	if issue != draft.Type.IsIssue() {
		metrics.TicketSubmissions.WithLabelValues(string(draft.Type), "number_mismatch").Inc()
		return nil, fmt.Errorf("%w: %s on a %s ticket", ErrNumberMismatch, draft.Number, draft.Type)
	}

	if issue {
		if err := checkStock(s.ledger.Snapshot().Inventory, draft.Items); err != nil {
			metrics.TicketSubmissions.WithLabelValues(string(draft.Type), "insufficient_stock").Inc()
			logger.Info("issue rejected", zap.Error(err))
			return nil, err
		}
	}

	if err := s.writer.WriteTicket(ctx, wireRows(draft)); err != nil {
		metrics.TicketSubmissions.WithLabelValues(string(draft.Type), "error").Inc()
		logger.Error("failed to write ticket", zap.Int("lines", len(draft.Items)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.ledger.ApplySubmitted(ledgerRows(draft))

	total := decimal.Zero
	for _, item := range draft.Items {
		total = total.Add(item.Total)
	}

	submitted = true
	next := s.drafts.EndSubmit(operator, func(d *models.TicketDraft) {
		d.Number = ""
		d.Items = nil
	})

	metrics.TicketSubmissions.WithLabelValues(string(draft.Type), "ok").Inc()
	logger.Info("ticket submitted",
		zap.String("type", string(draft.Type)),
		zap.Int("lines", len(draft.Items)),
		zap.String("total", total.String()))

	return &Result{
		Number:  draft.Number,
		Type:    string(draft.Type),
		Lines:   len(draft.Items),
		Total:   ledger.FormatAmount(total),
		TraceID: traceID,
		Draft:   next,
	}, nil
}

func (s *Service) ensureDraft(operator string) {
	if _, ok := s.drafts.Get(operator); !ok {
		s.Draft(operator)
	}
}

// checkStock sums the requested quantity per device and compares it with
// the known stock. Devices the ledger has never seen have no stock.
func checkStock(inv ledger.Inventory, items []models.TicketItem) error {
	requested := make(map[string]decimal.Decimal)
	var order []string
	for _, item := range items {
		key := ledger.DeviceKey(item.DeviceCode, item.DeviceName)
		if _, ok := requested[key]; !ok {
			order = append(order, key)
		}
		requested[key] = requested[key].Add(item.Quantity)
	}

	var shortages []Shortage
	for _, key := range order {
		available := inv.StockOf(key)
		if requested[key].GreaterThan(available) {
			shortages = append(shortages, Shortage{Key: key, Requested: requested[key], Available: available})
		}
	}
	if len(shortages) > 0 {
		return &StockError{Shortages: shortages}
	}
	return nil
}

func todayISO() string {
	return time.Now().Format("2006-01-02")
}
