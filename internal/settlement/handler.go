package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
	"github.com/ldbrian/toughlove-ai-sub000/internal/metrics"
	"github.com/ldbrian/toughlove-ai-sub000/internal/signature"
)

// Settler is the service surface the HTTP layer needs.
type Settler interface {
	ProcessNotification(ctx context.Context, n Notification) (Outcome, error)
	CreateOrder(ctx context.Context, orderID, userID string, amount float64, rinQuantity int64, notifyEmail string) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

type Handler struct {
	service   Settler
	verifier  *signature.Verifier
	sigHeader string
}

func NewHandler(service Settler, verifier *signature.Verifier, sigHeader string) *Handler {
	return &Handler{service: service, verifier: verifier, sigHeader: sigHeader}
}

type CreateOrderRequest struct {
	OrderID     string  `json:"orderId" binding:"required"`
	UserID      string  `json:"userId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	RinQuantity int64   `json:"rinQuantity" binding:"required,gt=0"`
	NotifyEmail string  `json:"notifyEmail" binding:"omitempty,email"`
}

// PaymentWebhook godoc
// @Summary      Payment provider webhook
// @Description  Consumes a payment notification and settles the matching order exactly once.
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      403  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /webhook/payment [post]
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		body = nil
	}

	// The digest covers the raw bytes, so the body must be read before any
	// JSON decoding touches it.
	if !h.verifier.Verify(body, c.GetHeader(h.sigHeader)) {
		metrics.WebhookRejectedTotal.Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		// A malformed but correctly signed body is acked as an unmatched
		// notification rather than bounced back for a pointless retry.
		logger.Error("malformed webhook body", "err", err)
		n = Notification{}
	}

	outcome, err := h.service.ProcessNotification(c.Request.Context(), n)
	if err != nil {
		logger.Error("settlement failed", "order_id", n.OrderID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		return
	}

	switch outcome {
	case OutcomeAlreadyProcessed:
		c.JSON(http.StatusOK, gin.H{"message": "already processed"})
	default:
		// Fraud flags and unmatched orders are deliberately indistinguishable
		// from a plain ack.
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}

// CreateOrder godoc
// @Summary      Register checkout intent
// @Description  Records a CREATED order before the user is sent to the payment provider.
// @Tags         settlement
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        order  body      CreateOrderRequest  true  "Checkout intent"
// @Success      201    {object}  Order
// @Failure      400    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /api/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req.OrderID, req.UserID, req.Amount, req.RinQuantity, req.NotifyEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder godoc
// @Summary      Order status
// @Tags         settlement
// @Security     BearerAuth
// @Produce      json
// @Param        orderId  path      string  true  "Order ID"
// @Success      200      {object}  Order
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /api/orders/{orderId} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	c.JSON(http.StatusOK, order)
}
