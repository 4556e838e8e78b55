package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/tickets"
	"github.com/mamadbah2/stockledger/pkg/clients/anthropic"
)

// TicketHandler serves drafts, submission, ticket lookup and labels.
type TicketHandler struct {
	tickets  TicketService
	labels   LabelService
	analyzer Analyzer
	logger   *zap.Logger
}

// NewTicketHandler constructs the handler. analyzer may be nil.
func NewTicketHandler(ticketSvc TicketService, labelSvc LabelService, analyzer Analyzer, logger *zap.Logger) *TicketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketHandler{tickets: ticketSvc, labels: labelSvc, analyzer: analyzer, logger: logger}
}

// CurrentDraft returns the caller's draft.
func (h *TicketHandler) CurrentDraft(c *gin.Context) {
	c.JSON(http.StatusOK, h.tickets.Draft(operatorID(c)))
}

type switchTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

// SwitchType starts a fresh draft of another document type.
func (h *TicketHandler) SwitchType(c *gin.Context) {
	var req switchTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.tickets.SwitchType(operatorID(c), req.Type)
	if err != nil {
		h.draftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateHeader edits number, date, partner or section.
func (h *TicketHandler) UpdateHeader(c *gin.Context) {
	var header models.TicketHeader
	if err := c.ShouldBindJSON(&header); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.tickets.UpdateHeader(operatorID(c), header)
	if err != nil {
		h.draftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// AddItem appends a line to the draft.
func (h *TicketHandler) AddItem(c *gin.Context) {
	var item models.TicketItem
	if err := c.ShouldBindJSON(&item); err != nil {
		errorJSON(c, http.StatusBadRequest, "device_name is required")
		return
	}

	draft, err := h.tickets.AddItem(operatorID(c), item)
	if err != nil {
		h.draftError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// RemoveItem drops the line at :index.
func (h *TicketHandler) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "index must be a number")
		return
	}

	draft, err := h.tickets.RemoveItem(operatorID(c), index)
	if err != nil {
		h.draftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Submit writes the draft to the ledger.
func (h *TicketHandler) Submit(c *gin.Context) {
	result, err := h.tickets.Submit(c.Request.Context(), operatorID(c))
	if err == nil {
		c.JSON(http.StatusCreated, result)
		return
	}

	var stockErr *tickets.StockError
	switch {
	case errors.Is(err, tickets.ErrIncompleteDraft), errors.Is(err, tickets.ErrNumberMismatch):
		errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tickets.ErrSubmitInProgress):
		errorJSON(c, http.StatusConflict, err.Error())
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": tickets.ErrInsufficientStock.Error(), "shortages": stockErr.Shortages})
	case errors.Is(err, tickets.ErrSubmissionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "ticket was not saved, try again", "retryable": true})
	default:
		h.logger.Error("unexpected submit error", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "unexpected error")
	}
}

// Tickets lists distinct ticket numbers, optionally filtered by ?search=.
func (h *TicketHandler) Tickets(c *gin.Context) {
	list := h.labels.Tickets(c.Query("search"))
	if list == nil {
		list = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"tickets": list})
}

// TicketItems returns the labels of the ticket in ?number=.
func (h *TicketHandler) TicketItems(c *gin.Context) {
	items := h.labels.Items(c.Query("number"))
	if len(items) == 0 {
		errorJSON(c, http.StatusNotFound, "ticket not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"number": c.Query("number"), "items": items})
}

// Analysis asks the model to summarize the ticket in ?number=.
func (h *TicketHandler) Analysis(c *gin.Context) {
	if h.analyzer == nil {
		errorJSON(c, http.StatusServiceUnavailable, "ticket analysis is not enabled")
		return
	}

	number := c.Query("number")
	analysis, err := h.analyzer.AnalyzeTicket(c.Request.Context(), number, h.labels.Items(number))
	if errors.Is(err, anthropic.ErrEmptyTicket) {
		errorJSON(c, http.StatusNotFound, "ticket not found")
		return
	}
	if err != nil {
		h.logger.Warn("ticket analysis failed", zap.String("number", number), zap.Error(err))
		errorJSON(c, http.StatusBadGateway, "analysis unavailable")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// SearchLabels runs the free-text device lookup.
func (h *TicketHandler) SearchLabels(c *gin.Context) {
	c.JSON(http.StatusOK, h.labels.Search(c.Query("search")))
}

func (h *TicketHandler) draftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tickets.ErrInvalidItem), errors.Is(err, tickets.ErrInvalidType):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, tickets.ErrSubmitInProgress):
		errorJSON(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("draft update failed", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "unexpected error")
	}
}
