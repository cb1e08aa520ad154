package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/faults"
)

// errorBody is the JSON error envelope shared by every REST endpoint.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// writeError maps a service error onto the HTTP response. Faults carry their
// own kind and field; anything else is an internal error and gets logged.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	if f := faults.As(err); f != nil {
		c.JSON(statusFor(f.Kind), errorBody{
			Error: f.Message,
			Kind:  string(f.Kind),
			Field: f.Field,
		})
		return
	}

	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func statusFor(kind faults.Kind) int {
	switch kind {
	case faults.KindNotFound:
		return http.StatusNotFound
	case faults.KindDuplicateKey:
		return http.StatusConflict
	case faults.KindInvalidInput, faults.KindInsufficientStock, faults.KindReadOnlyRecord:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
