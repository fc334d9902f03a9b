package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/flashcards/internal/model"
	"github.com/rcliao/flashcards/internal/parser"
	"github.com/rcliao/flashcards/internal/store"
)

// CardStore is the card side of the store used by the API.
type CardStore interface {
	ListCards(ctx context.Context, p store.ListParams) ([]model.FlashCard, error)
	GetCard(ctx context.Context, id int64) (*model.FlashCard, error)
	UpdateCard(ctx context.Context, card model.FlashCard) error
	DeleteCard(ctx context.Context, id int64) error
	ExportAll(ctx context.Context) ([]model.FlashCard, error)
}

type CardsController struct {
	store  CardStore
	logger *slog.Logger
}

func NewCardsController(s CardStore, logger *slog.Logger) *CardsController {
	return &CardsController{store: s, logger: logger}
}

// List returns cards newest first.
// GET /api/cards?tag=&q=&limit=
func (cc *CardsController) List(c *gin.Context) {
	p := store.ListParams{Tag: c.Query("tag"), Query: c.Query("q")}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		p.Limit = n
	}

	cards, err := cc.store.ListCards(c.Request.Context(), p)
	if err != nil {
		respondInternalError(c, cc.logger, err, "list cards")
		return
	}
	c.JSON(http.StatusOK, cards)
}

// GET /api/cards/:id
func (cc *CardsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	card, err := cc.store.GetCard(c.Request.Context(), id)
	if errors.Is(err, store.ErrCardNotFound) {
		respondNotFound(c, "card")
		return
	}
	if err != nil {
		respondInternalError(c, cc.logger, err, "get card")
		return
	}
	c.JSON(http.StatusOK, card)
}

// UpdateRequest changes the fields that are present.
type UpdateRequest struct {
	Front *string   `json:"front"`
	Back  *string   `json:"back"`
	Tags  *[]string `json:"tags"`
}

// PUT /api/cards/:id
func (cc *CardsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	card, err := cc.store.GetCard(ctx, id)
	if errors.Is(err, store.ErrCardNotFound) {
		respondNotFound(c, "card")
		return
	}
	if err != nil {
		respondInternalError(c, cc.logger, err, "get card")
		return
	}

	if req.Front != nil {
		card.Front = *req.Front
	}
	if req.Back != nil {
		card.Back = *req.Back
	}
	if req.Tags != nil {
		card.Tags = parser.SplitTags(strings.Join(*req.Tags, ","))
	}
	if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
		respondBadRequest(c, "front and back must not be empty")
		return
	}

	if err := cc.store.UpdateCard(ctx, *card); err != nil {
		respondInternalError(c, cc.logger, err, "update card")
		return
	}
	c.JSON(http.StatusOK, card)
}

// Delete is idempotent.
// DELETE /api/cards/:id
func (cc *CardsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.store.DeleteCard(c.Request.Context(), id); err != nil {
		respondInternalError(c, cc.logger, err, "delete card")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}

// Export downloads every card as flashcards.json.
// GET /api/export
func (cc *CardsController) Export(c *gin.Context) {
	cards, err := cc.store.ExportAll(c.Request.Context())
	if err != nil {
		respondInternalError(c, cc.logger, err, "export")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+store.ExportFileName+`"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := store.WriteExport(c.Writer, cards); err != nil {
		cc.logger.Warn("write export", "err", err)
	}
}
