package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	PendingID string `json:"pending_id,omitempty"`
	Upstream  int    `json:"upstream_status,omitempty"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs err and hides it from the client.
func respondInternalError(c *gin.Context, logger *slog.Logger, err error, op string) {
	logger.Error("request failed", "op", op, "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// parseIDParam reads a card id path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
