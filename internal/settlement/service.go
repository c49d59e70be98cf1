package settlement

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
	"github.com/ldbrian/toughlove-ai-sub000/internal/metrics"
	"github.com/ldbrian/toughlove-ai-sub000/internal/wallet"
)

// amountEpsilon absorbs decimal rounding between the provider's reported
// amount and the order's expected amount. Underpayment beyond this margin
// is treated as tampering.
const amountEpsilon = 0.01

type Service struct {
	db       *sqlx.DB
	orders   OrderStore
	wallets  wallet.Store
	receipts ReceiptQueue
}

// NewService wires the settlement state machine. receipts may be nil when
// no notification backend is configured.
func NewService(db *sqlx.DB, orders OrderStore, wallets wallet.Store, receipts ReceiptQueue) *Service {
	return &Service{db: db, orders: orders, wallets: wallets, receipts: receipts}
}

// tradeSucceeded interprets the provider's trade-status field.
func tradeSucceeded(status string) bool {
	switch strings.ToUpper(status) {
	case "SUCCESS", "TRADE_SUCCESS", "TRADE_FINISHED":
		return true
	}
	return false
}

// ProcessNotification runs one verified webhook through the order state
// machine. The whole mutation — order status plus wallet credit — happens
// in a single transaction under the order's row lock, so a replayed
// delivery either blocks until the first one commits and then short-circuits
// on the terminal status, or observes the terminal status directly. Any
// error rolls everything back and leaves the order CREATED so a later
// provider retry can still settle it.
func (s *Service) ProcessNotification(ctx context.Context, n Notification) (Outcome, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	order, err := s.orders.GetForUpdate(ctx, tx, n.OrderID)
	if err == ErrOrderNotFound {
		// Not a caller error: ack so the provider stops retrying, but keep
		// a trace for reconciliation.
		logger.Error("webhook for unknown order", "order_id", n.OrderID)
		metrics.RecordSettlement(string(OutcomeUnmatched))
		return OutcomeUnmatched, nil
	}
	if err != nil {
		return "", err
	}

	if order.Status.Terminal() {
		metrics.RecordSettlement(string(OutcomeAlreadyProcessed))
		return OutcomeAlreadyProcessed, nil
	}

	if order.Amount-n.Amount > amountEpsilon {
		if err := s.orders.MarkScamAttempt(ctx, tx, order.OrderID); err != nil {
			return "", err
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		logger.Error("underpaid order flagged",
			"order_id", order.OrderID, "expected", order.Amount, "paid", n.Amount)
		metrics.RecordSettlement(string(OutcomeFraudFlagged))
		return OutcomeFraudFlagged, nil
	}

	if !tradeSucceeded(n.TradeStatus) {
		if err := s.orders.MarkFailed(ctx, tx, order.OrderID); err != nil {
			return "", err
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		metrics.RecordSettlement(string(OutcomeMarkedFailed))
		return OutcomeMarkedFailed, nil
	}

	if err := s.orders.MarkPaid(ctx, tx, order.OrderID); err != nil {
		return "", err
	}

	newBalance, err := s.wallets.CreditInTx(ctx, tx, order.UserID, order.RinQuantity, n.Amount, order.OrderID)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	logger.Info("order settled",
		"order_id", order.OrderID, "user_id", order.UserID,
		"rin", order.RinQuantity, "balance", newBalance)
	metrics.RecordSettlement(string(OutcomeSettled))
	metrics.RinCreditedTotal.Add(float64(order.RinQuantity))

	// Receipt delivery is best effort and must never fail a settlement
	// that already committed.
	if s.receipts != nil && order.NotifyEmail.Valid {
		if err := s.receipts.QueueRechargeReceipt(ctx, order.NotifyEmail.String, order.OrderID, order.RinQuantity, n.Amount); err != nil {
			logger.Error("failed to queue receipt", "order_id", order.OrderID, "err", err)
		}
	}

	return OutcomeSettled, nil
}

// CreateOrder registers a checkout intent.
func (s *Service) CreateOrder(ctx context.Context, orderID, userID string, amount float64, rinQuantity int64, notifyEmail string) (*Order, error) {
	return s.orders.Create(ctx, orderID, userID, amount, rinQuantity, notifyEmail)
}

// GetOrder returns the current order state.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.Get(ctx, orderID)
}
