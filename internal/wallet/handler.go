package wallet

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
)

type Handler struct {
	repo Store
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// GetBalance godoc
// @Summary      Wallet balance
// @Description  Returns the user's current Rin balance. Always answers 200; an unreadable wallet reports balance 0.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/wallet/{userId}/balance [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID := c.Param("userId")

	balance, err := h.repo.GetBalance(c.Request.Context(), userID)
	if err != nil {
		// The balance widget must never error the client; log and report 0.
		logger.Error("balance lookup failed", "user_id", userID, "err", err)
		balance = 0
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// ListEntries godoc
// @Summary      Ledger entries
// @Description  Returns the user's Rin ledger entries, newest first.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path   string  true   "User ID"
// @Param        limit   query  int     false  "Page size"
// @Param        offset  query  int     false  "Page offset"
// @Success      200  {array}   Entry
// @Failure      500  {object}  gin.H
// @Router       /api/wallet/{userId}/entries [get]
func (h *Handler) ListEntries(c *gin.Context) {
	userID := c.Param("userId")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.repo.GetEntries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ledger entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
