package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/service/reporting"
)

// InventoryHandler serves the ledger, balances, reports and dashboard.
type InventoryHandler struct {
	ledger    LedgerService
	reports   ReportService
	snapshots SnapshotReader
	logger    *zap.Logger
}

// NewInventoryHandler constructs the handler. snapshots may be nil.
func NewInventoryHandler(ledger LedgerService, reports ReportService, snapshots SnapshotReader, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{ledger: ledger, reports: reports, snapshots: snapshots, logger: logger}
}

type ledgerStatus struct {
	Rows     int       `json:"rows"`
	Devices  int       `json:"devices"`
	Overlaid int       `json:"overlaid"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Refresh reloads the whole ledger from the spreadsheet.
func (h *InventoryHandler) Refresh(c *gin.Context) {
	snap, err := h.ledger.Reload(c.Request.Context())
	if err != nil {
		h.logger.Error("ledger refresh failed", zap.Error(err))
		errorJSON(c, http.StatusBadGateway, "unable to load ledger, try again")
		return
	}

	c.JSON(http.StatusOK, ledgerStatus{
		Rows:     len(snap.Rows),
		Devices:  len(snap.Inventory),
		Overlaid: snap.Overlaid,
		LoadedAt: snap.LoadedAt,
	})
}

// NextNumber suggests the next document number for ?type=.
func (h *InventoryHandler) NextNumber(c *gin.Context) {
	ticketType, ok := models.ParseTicketType(c.Query("type"))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "type must be a two-letter prefix, IMPORT or EXPORT")
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": ticketType, "number": h.ledger.NextTicketNumber(string(ticketType))})
}

// Report lists device balances.
func (h *InventoryHandler) Report(c *gin.Context) {
	var filter models.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid filter")
		return
	}
	c.JSON(http.StatusOK, h.reports.Report(filter))
}

// Item returns one device balance with its history, selected by ?key=.
func (h *InventoryHandler) Item(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		errorJSON(c, http.StatusBadRequest, "key is required")
		return
	}

	agg, ok := h.ledger.Aggregate(key)
	if !ok {
		errorJSON(c, http.StatusNotFound, "device not found")
		return
	}
	c.JSON(http.StatusOK, agg)
}

// Export downloads the filtered report as csv (default) or xlsx.
func (h *InventoryHandler) Export(c *gin.Context) {
	var filter models.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid filter")
		return
	}
	report := h.reports.Report(filter)

	var err error
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		setAttachment(c, "text/csv; charset=utf-8", reporting.ExportFilename(report, "csv"))
		err = reporting.ExportCSV(c.Writer, report)
	case "xlsx":
		setAttachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", reporting.ExportFilename(report, "xlsx"))
		err = reporting.ExportXLSX(c.Writer, report)
	default:
		errorJSON(c, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	if err != nil {
		h.logger.Error("report export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// Dashboard returns the home screen counters.
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.reports.Dashboard())
}

// LatestSnapshot returns the last persisted daily snapshot.
func (h *InventoryHandler) LatestSnapshot(c *gin.Context) {
	if h.snapshots == nil {
		errorJSON(c, http.StatusServiceUnavailable, "snapshots are not enabled")
		return
	}

	snap, err := h.snapshots.LatestSnapshot(c.Request.Context())
	if errors.Is(err, mongodb.ErrNoSnapshot) {
		errorJSON(c, http.StatusNotFound, "no snapshot yet")
		return
	}
	if err != nil {
		h.logger.Error("failed to load snapshot", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "unable to load snapshot")
		return
	}
	c.JSON(http.StatusOK, snap)
}

func setAttachment(c *gin.Context, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)
}
