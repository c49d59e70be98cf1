package persona

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ldbrian/toughlove-ai-sub000/internal/auth"
)

// Applier is the service surface the HTTP layer needs.
type Applier interface {
	UseItem(ctx context.Context, userID, itemID, targetPersona string) (*UseResult, error)
	GetState(ctx context.Context, userID, personaName string) (*State, error)
}

type Handler struct {
	service Applier
}

func NewHandler(service Applier) *Handler {
	return &Handler{service: service}
}

type UseItemRequest struct {
	UserID        string `json:"userId" binding:"required"`
	ItemID        string `json:"itemId" binding:"required"`
	TargetPersona string `json:"targetPersona" binding:"required"`
}

// UseItem godoc
// @Summary      Use or gift an item
// @Description  Consumes the item and applies its effect to the target persona's mood and favorability.
// @Tags         persona
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        use  body      UseItemRequest  true  "Item use request"
// @Success      200  {object}  gin.H
// @Failure      400  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /api/items/use [post]
func (h *Handler) UseItem(c *gin.Context) {
	var req UseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, itemId and targetPersona are required"})
		return
	}

	if !auth.Authorized(c, req.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot use items for another user"})
		return
	}

	result, err := h.service.UseItem(c.Request.Context(), req.UserID, req.ItemID, req.TargetPersona)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "item use failed, please retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   result.Message,
		"moodBoost": result.MoodBoost,
		"favBoost":  result.FavBoost,
	})
}

// GetState godoc
// @Summary      Persona emotional state
// @Tags         persona
// @Security     BearerAuth
// @Produce      json
// @Param        userId   path      string  true  "User ID"
// @Param        persona  path      string  true  "Persona name"
// @Success      200      {object}  State
// @Failure      500      {object}  gin.H
// @Router       /api/personas/{userId}/{persona} [get]
func (h *Handler) GetState(c *gin.Context) {
	state, err := h.service.GetState(c.Request.Context(), c.Param("userId"), c.Param("persona"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load persona state"})
		return
	}

	c.JSON(http.StatusOK, state)
}
