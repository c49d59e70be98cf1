package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rinledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rinledger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebhookRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rinledger_webhook_rejected_total",
			Help: "Webhook calls rejected for a bad signature",
		},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rinledger_settlements_total",
			Help: "Settlement outcomes by kind",
		},
		[]string{"outcome"},
	)

	RinCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rinledger_rin_credited_total",
			Help: "Total Rin credited by settlements",
		},
	)

	RinDebitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rinledger_rin_debited_total",
			Help: "Total Rin debited by purchases",
		},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rinledger_purchases_total",
			Help: "Catalog purchases by result",
		},
		[]string{"result"},
	)

	ItemUsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rinledger_item_uses_total",
			Help: "Item uses by whether the effect landed on its target",
		},
		[]string{"landed"},
	)

	ReceiptsQueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rinledger_receipts_queued_total",
			Help: "Recharge receipts queued for delivery",
		},
	)

	ReceiptQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rinledger_receipt_queue_length",
			Help: "Current length of the receipt delivery queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSettlement(outcome string) {
	SettlementsTotal.WithLabelValues(outcome).Inc()
}

func RecordPurchase(result string) {
	PurchasesTotal.WithLabelValues(result).Inc()
}

func RecordItemUse(landed bool) {
	if landed {
		ItemUsesTotal.WithLabelValues("yes").Inc()
	} else {
		ItemUsesTotal.WithLabelValues("no").Inc()
	}
}
