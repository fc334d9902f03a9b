package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/flashcards/internal/model"
)

// writeOnlySettings can be set over HTTP but never read back.
var writeOnlySettings = map[string]bool{
	model.SettingGeminiAPIKey: true,
}

// SettingsStore is the settings side of the store used by the API.
type SettingsStore interface {
	GetSettings(ctx context.Context, keys []string) (map[string]json.RawMessage, error)
	SetSetting(ctx context.Context, key string, value any) error
}

type SettingsController struct {
	store  SettingsStore
	logger *slog.Logger
}

func NewSettingsController(s SettingsStore, logger *slog.Logger) *SettingsController {
	return &SettingsController{store: s, logger: logger}
}

// Get returns every requested key; missing ones are null. Write-only keys
// are refused.
// GET /api/settings?key=a&key=b
func (sc *SettingsController) Get(c *gin.Context) {
	keys := c.QueryArray("key")
	if len(keys) == 0 {
		respondBadRequest(c, "at least one key is required")
		return
	}
	for _, k := range keys {
		if writeOnlySettings[k] {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: k + " is write-only", Code: "write_only_setting"})
			return
		}
	}

	values, err := sc.store.GetSettings(c.Request.Context(), keys)
	if err != nil {
		respondInternalError(c, sc.logger, err, "get settings")
		return
	}
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		if v == nil {
			v = json.RawMessage("null")
		}
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

// Set stores the request body, which must be a JSON value.
// PUT /api/settings/:key
func (sc *SettingsController) Set(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		respondBadRequest(c, "body must be a JSON value")
		return
	}
	key := c.Param("key")
	if err := sc.store.SetSetting(c.Request.Context(), key, json.RawMessage(body)); err != nil {
		respondInternalError(c, sc.logger, err, "set setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "key": key})
}
