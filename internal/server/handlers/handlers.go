package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
	"github.com/mamadbah2/stockledger/internal/service/labels"
	"github.com/mamadbah2/stockledger/internal/service/tickets"
	"github.com/mamadbah2/stockledger/pkg/clients/anthropic"
)

// OperatorHeader identifies whose draft a request edits.
const OperatorHeader = "X-Operator-ID"

// LedgerService is the inventory side the HTTP layer reads from.
type LedgerService interface {
	Reload(ctx context.Context) (*inventory.Snapshot, error)
	Snapshot() *inventory.Snapshot
	Aggregate(key string) (*models.InventoryAggregate, bool)
	NextTicketNumber(prefix string) string
}

// ReportService builds reports and dashboard counters.
type ReportService interface {
	Report(filter models.ReportFilter) models.InventoryReport
	Dashboard() models.Dashboard
}

// SnapshotReader loads persisted snapshots.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context) (*models.InventorySnapshot, error)
}

// TicketService composes and submits drafts.
type TicketService interface {
	Draft(operator string) models.TicketDraft
	SwitchType(operator, rawType string) (models.TicketDraft, error)
	UpdateHeader(operator string, header models.TicketHeader) (models.TicketDraft, error)
	AddItem(operator string, item models.TicketItem) (models.TicketDraft, error)
	RemoveItem(operator string, index int) (models.TicketDraft, error)
	Submit(ctx context.Context, operator string) (*tickets.Result, error)
}

// LabelService serves lookups and printable labels.
type LabelService interface {
	Tickets(search string) []string
	Items(ticket string) []models.DeviceLabel
	Search(term string) labels.SearchResult
}

// CatalogService reads and extends master data.
type CatalogService interface {
	List(ctx context.Context, name, search string) ([]models.CatalogEntry, error)
	Names(ctx context.Context, name string) ([]string, error)
	Device(ctx context.Context, code string) (models.DeviceTemplate, bool, error)
	Add(ctx context.Context, name string, entry models.CatalogEntry) error
}

// Analyzer is the optional ticket analysis client.
type Analyzer = anthropic.Analyzer

func operatorID(c *gin.Context) string {
	if id := c.GetHeader(OperatorHeader); id != "" {
		return id
	}
	return tickets.DefaultOperator
}

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
