package settlement

import (
	"database/sql"
	"time"
)

// Status is the order lifecycle. CREATED is the only non-terminal state;
// once an order reaches PAID, FAILED or SCAM_ATTEMPT it never transitions
// again.
type Status string

const (
	StatusCreated     Status = "CREATED"
	StatusPaid        Status = "PAID"
	StatusFailed      Status = "FAILED"
	StatusScamAttempt Status = "SCAM_ATTEMPT"
)

func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusScamAttempt
}

// Order is one payment attempt. The order_id comes from the payment
// provider at checkout and is the idempotency key for settlement.
type Order struct {
	OrderID     string         `db:"order_id" json:"order_id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Amount      float64        `db:"amount" json:"amount"`
	RinQuantity int64          `db:"rin_quantity" json:"rin_quantity"`
	Status      Status         `db:"status" json:"status"`
	NotifyEmail sql.NullString `db:"notify_email" json:"-"`
	PaidAt      sql.NullTime   `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Notification is the provider's webhook payload. A malformed body decodes
// to the zero value, which settles as an unmatched order.
type Notification struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	TradeStatus string  `json:"trade_status"`
}

// Outcome classifies how a notification was absorbed. Every outcome except
// a transient error is acknowledged with HTTP 200 so the provider stops
// retrying.
type Outcome string

const (
	OutcomeSettled          Outcome = "settled"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeUnmatched        Outcome = "unmatched"
	OutcomeFraudFlagged     Outcome = "fraud_flagged"
	OutcomeMarkedFailed     Outcome = "marked_failed"
)
