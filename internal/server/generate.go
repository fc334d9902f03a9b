package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/flashcards/internal/generate"
	"github.com/rcliao/flashcards/internal/model"
	"github.com/rcliao/flashcards/internal/parser"
	"github.com/rcliao/flashcards/internal/provider"
	"github.com/rcliao/flashcards/internal/store"
)

// Generator runs generations for the API.
type Generator interface {
	Process(ctx context.Context, selection string) ([]model.FlashCard, error)
	Retry(ctx context.Context, pendingID string) ([]model.FlashCard, error)
}

// PendingStore is the pending side of the store used by the API.
type PendingStore interface {
	ListPending(ctx context.Context) ([]model.Pending, error)
	RemovePending(ctx context.Context, id string) error
}

type GenerateRequest struct {
	Text string `json:"text" binding:"required"`
}

type GenerateResponse struct {
	Cards []model.FlashCard `json:"cards"`
}

type GenerateController struct {
	gen     Generator
	pending PendingStore
	logger  *slog.Logger
}

func NewGenerateController(gen Generator, pending PendingStore, logger *slog.Logger) *GenerateController {
	return &GenerateController{gen: gen, pending: pending, logger: logger}
}

// Generate creates cards from the selection.
// POST /api/generate
func (gc *GenerateController) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}
	cards, err := gc.gen.Process(c.Request.Context(), req.Text)
	if err != nil {
		gc.respondGenerateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, GenerateResponse{Cards: cards})
}

// ListPending returns queued selections.
// GET /api/pending
func (gc *GenerateController) ListPending(c *gin.Context) {
	entries, err := gc.pending.ListPending(c.Request.Context())
	if err != nil {
		respondInternalError(c, gc.logger, err, "list pending")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Retry re-runs a pending selection.
// POST /api/pending/:id/retry
func (gc *GenerateController) Retry(c *gin.Context) {
	cards, err := gc.gen.Retry(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrPendingNotFound) {
		respondNotFound(c, "pending entry")
		return
	}
	if err != nil {
		gc.respondGenerateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, GenerateResponse{Cards: cards})
}

// Dismiss drops a pending selection. Missing ids succeed.
// DELETE /api/pending/:id
func (gc *GenerateController) Dismiss(c *gin.Context) {
	id := c.Param("id")
	if err := gc.pending.RemovePending(c.Request.Context(), id); err != nil {
		respondInternalError(c, gc.logger, err, "dismiss pending")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}

func (gc *GenerateController) respondGenerateError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var pe *generate.PendingError
	if errors.As(err, &pe) {
		resp.PendingID = pe.Pending.ID
	}

	var (
		remote *provider.RemoteAPIError
		shape  *provider.ResponseShapeError
		parse  *parser.ParseError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, generate.ErrEmptySelection):
		status, resp.Code = http.StatusBadRequest, "empty_selection"
	case errors.Is(err, generate.ErrMissingAPIKey):
		status, resp.Code = http.StatusPreconditionFailed, "missing_api_key"
	case errors.As(err, &remote):
		status, resp.Code, resp.Upstream = http.StatusBadGateway, "remote_api_error", remote.StatusCode
	case errors.As(err, &shape):
		status, resp.Code = http.StatusBadGateway, "response_shape_error"
	case errors.As(err, &parse):
		status, resp.Code = http.StatusBadGateway, "parse_error"
	default:
		gc.logger.Error("generation failed", "err", err)
		resp.Error = "internal server error"
	}
	c.JSON(status, resp)
}
