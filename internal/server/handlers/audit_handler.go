package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/service/audit"
)

// AuditHandler exposes on-demand ledger audit runs.
type AuditHandler struct {
	svc    *audit.Service
	logger *zap.Logger
}

// NewAuditHandler constructs the HTTP handler adapter.
func NewAuditHandler(svc *audit.Service, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{svc: svc, logger: logger}
}

// Run executes a full ledger audit and returns the findings.
func (h *AuditHandler) Run(c *gin.Context) {
	findings, err := h.svc.Run(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"findings": findings})
}
