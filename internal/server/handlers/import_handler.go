package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/service/importer"
)

// ImportHandler adapts the CSV importer to HTTP multipart uploads.
type ImportHandler struct {
	svc    *importer.Service
	logger *zap.Logger
}

// NewImportHandler constructs the HTTP handler adapter.
func NewImportHandler(svc *importer.Service, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{svc: svc, logger: logger}
}

// Import processes a CSV upload for the kind given in the path
// (clients, animals or feedtypes).
func (h *ImportHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "no file received", Field: "file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Warn("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody{Error: "unreadable file", Field: "file"})
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.svc.Import(c.Request.Context(), c.Param("kind"), file)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
