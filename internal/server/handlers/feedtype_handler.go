package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/service/registry"
)

// FeedTypeHandler adapts the feed catalog to HTTP.
type FeedTypeHandler struct {
	svc    *registry.FeedTypeService
	logger *zap.Logger
}

// NewFeedTypeHandler constructs the HTTP handler adapter.
func NewFeedTypeHandler(svc *registry.FeedTypeService, logger *zap.Logger) *FeedTypeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedTypeHandler{svc: svc, logger: logger}
}

// Create registers a new feed type.
func (h *FeedTypeHandler) Create(c *gin.Context) {
	var in registry.FeedTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	ft, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ft)
}

// List returns the whole catalog.
func (h *FeedTypeHandler) List(c *gin.Context) {
	fts, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, fts)
}

// Get returns one feed type by id.
func (h *FeedTypeHandler) Get(c *gin.Context) {
	ft, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ft)
}

// Update applies a partial catalog update, including direct stock edits.
func (h *FeedTypeHandler) Update(c *gin.Context) {
	var in registry.FeedTypeUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	ft, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ft)
}

type restockRequest struct {
	Pounds float64 `json:"pounds"`
	Reason string  `json:"reason"`
}

// Restock applies a manual stock delta through the audited escape hatch.
func (h *FeedTypeHandler) Restock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	ft, err := h.svc.Restock(c.Request.Context(), c.Param("id"), req.Pounds, req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ft)
}

// Delete removes a feed type from the catalog.
func (h *FeedTypeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
