package purchase

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ldbrian/toughlove-ai-sub000/internal/auth"
)

// Buyer is the service surface the HTTP layer needs.
type Buyer interface {
	Buy(ctx context.Context, userID, itemID string) (int64, error)
	History(ctx context.Context, userID string, limit, offset int) ([]Purchase, error)
}

type Handler struct {
	service Buyer
}

func NewHandler(service Buyer) *Handler {
	return &Handler{service: service}
}

type BuyRequest struct {
	UserID string `json:"userId" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
}

// Buy godoc
// @Summary      Purchase catalog item
// @Description  Debits the item price from the wallet and records ownership atomically.
// @Tags         purchase
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        purchase  body      BuyRequest  true  "Purchase request"
// @Success      200       {object}  gin.H
// @Failure      400       {object}  gin.H
// @Failure      402       {object}  gin.H
// @Failure      500       {object}  gin.H
// @Router       /api/purchase [post]
func (h *Handler) Buy(c *gin.Context) {
	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and itemId are required"})
		return
	}

	if !auth.Authorized(c, req.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot purchase for another user"})
		return
	}

	newBalance, err := h.service.Buy(c.Request.Context(), req.UserID, req.ItemID)
	if err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "item not found"})
		case errors.Is(err, ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed, please retry"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "newBalance": newBalance})
}

// History godoc
// @Summary      Purchase history
// @Description  Returns the user's purchase log, newest first.
// @Tags         purchase
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path   string  true   "User ID"
// @Param        limit   query  int     false  "Page size"
// @Param        offset  query  int     false  "Page offset"
// @Success      200  {array}   Purchase
// @Failure      500  {object}  gin.H
// @Router       /api/purchases/{userId} [get]
func (h *Handler) History(c *gin.Context) {
	userID := c.Param("userId")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	purchases, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchases"})
		return
	}

	c.JSON(http.StatusOK, purchases)
}
