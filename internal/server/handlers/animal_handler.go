package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/service/ledger"
	"github.com/lagranja/livestock/internal/service/registry"
)

// AnimalHandler adapts the animal registry and the feed ledger to HTTP. The
// feeding sub-routes are thin wrappers over the ledger service; no balance
// logic lives here.
type AnimalHandler struct {
	svc    *registry.AnimalService
	ledger *ledger.Service
	logger *zap.Logger
}

// NewAnimalHandler constructs the HTTP handler adapter.
func NewAnimalHandler(svc *registry.AnimalService, ledgerSvc *ledger.Service, logger *zap.Logger) *AnimalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnimalHandler{svc: svc, ledger: ledgerSvc, logger: logger}
}

// Create registers a new animal.
func (h *AnimalHandler) Create(c *gin.Context) {
	var in registry.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	animal, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// List returns every animal with resolved references.
func (h *AnimalHandler) List(c *gin.Context) {
	animals, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animals)
}

// Get returns one animal by id.
func (h *AnimalHandler) Get(c *gin.Context) {
	animal, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Update overwrites an animal's registry fields.
func (h *AnimalHandler) Update(c *gin.Context) {
	var in registry.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	animal, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Delete removes an animal.
func (h *AnimalHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type recordFeedingRequest struct {
	FeedTypeID string  `json:"feedTypeId"`
	DosePounds float64 `json:"dosePounds"`
}

// RecordFeeding books a feeding event against the animal and the feed stock.
func (h *AnimalHandler) RecordFeeding(c *gin.Context) {
	var req recordFeedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	animal, err := h.ledger.RecordFeeding(c.Request.Context(), c.Param("id"), req.FeedTypeID, req.DosePounds)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// CorrectFeeding adjusts a feeding event's dose and/or feed type.
func (h *AnimalHandler) CorrectFeeding(c *gin.Context) {
	var corr ledger.Correction
	if err := c.ShouldBindJSON(&corr); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	animal, err := h.ledger.CorrectFeedingEvent(c.Request.Context(), c.Param("id"), c.Param("eventId"), corr)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// RemoveFeeding deletes a feeding event, returning its dose to stock when
// the feed type still exists.
func (h *AnimalHandler) RemoveFeeding(c *gin.Context) {
	animal, err := h.ledger.RemoveFeedingEvent(c.Request.Context(), c.Param("id"), c.Param("eventId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}
