package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
	"github.com/ldbrian/toughlove-ai-sub000/internal/metrics"
)

const (
	queueKey       = "receipts"
	failedQueueKey = "receipts:failed"
	maxTries       = 3
)

// Job is one receipt delivery, queued in Redis so settlement never waits
// on SMTP.
type Job struct {
	To      string    `json:"to"`
	OrderID string    `json:"order_id"`
	Rin     int64     `json:"rin"`
	Amount  float64   `json:"amount"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewWithClient is used by tests to inject a mock Redis client.
func NewWithClient(client *redis.Client, fromEmail, fromName string) *Service {
	return &Service{redis: client, from: fromEmail, fromName: fromName}
}

// QueueRechargeReceipt enqueues a receipt for a settled order.
func (s *Service) QueueRechargeReceipt(ctx context.Context, email, orderID string, rin int64, amountPaid float64) error {
	job := Job{
		To:      email,
		OrderID: orderID,
		Rin:     rin,
		Amount:  amountPaid,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		return err
	}

	metrics.ReceiptsQueuedTotal.Inc()
	logger.Info("receipt queued", "order_id", orderID, "to", email)
	return nil
}

// Start runs the delivery worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("receipt worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("receipt worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad receipt job", "err", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Error("receipt delivery failed",
			"order_id", job.OrderID, "attempt", job.Tries, "err", err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			s.saveFailed(job, err)
		}
		return
	}

	logger.Info("receipt sent", "order_id", job.OrderID, "to", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: Your Rin recharge receipt (%s)\r\n", job.OrderID)
	message += "\r\n" + fmt.Sprintf(`Thanks for your purchase!

Order:  %s
Rin:    %d
Paid:   %.2f

Your balance has been updated. Spend it wisely — or don't.

- ToughLove Billing`, job.OrderID, job.Rin, job.Amount)

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Error("receipt moved to failed queue", "order_id", job.OrderID)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.ReceiptQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
