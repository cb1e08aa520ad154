package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/service/registry"
)

// ClientHandler adapts the client registry to HTTP.
type ClientHandler struct {
	svc    *registry.ClientService
	logger *zap.Logger
}

// NewClientHandler constructs the HTTP handler adapter.
func NewClientHandler(svc *registry.ClientService, logger *zap.Logger) *ClientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientHandler{svc: svc, logger: logger}
}

// Create registers a new client.
func (h *ClientHandler) Create(c *gin.Context) {
	var in registry.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	client, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// List returns every client.
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// Get returns one client by id.
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Update overwrites a client.
func (h *ClientHandler) Update(c *gin.Context) {
	var in registry.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	client, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Delete removes a client and its animals, reporting the cascade count.
func (h *ClientHandler) Delete(c *gin.Context) {
	removed, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "animalsRemoved": removed})
}
