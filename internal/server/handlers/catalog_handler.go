package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/catalog"
)

// CatalogHandler serves master data.
type CatalogHandler struct {
	svc    CatalogService
	logger *zap.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

// List returns the entries of :name.
func (h *CatalogHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Param("name"), c.Query("search"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalog": c.Param("name"), "entries": entries})
}

// Names returns the dropdown values of :name.
func (h *CatalogHandler) Names(c *gin.Context) {
	names, err := h.svc.Names(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

// Add appends an entry to :name.
func (h *CatalogHandler) Add(c *gin.Context) {
	var entry models.CatalogEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Add(c.Request.Context(), c.Param("name"), entry); err != nil {
		h.catalogError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Device returns the template for device :code.
func (h *CatalogHandler) Device(c *gin.Context) {
	tpl, ok, err := h.svc.Device(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	if !ok {
		errorJSON(c, http.StatusNotFound, "device not found")
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *CatalogHandler) catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCatalog):
		errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrMissingField):
		errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("catalog request failed", zap.Error(err))
		errorJSON(c, http.StatusBadGateway, "master data unavailable")
	}
}
