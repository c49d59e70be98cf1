package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSettlement(t *testing.T) {
	before := testutil.ToFloat64(SettlementsTotal.WithLabelValues("settled"))
	RecordSettlement("settled")
	after := testutil.ToFloat64(SettlementsTotal.WithLabelValues("settled"))

	assert.Equal(t, before+1, after)
}

func TestRecordPurchase(t *testing.T) {
	before := testutil.ToFloat64(PurchasesTotal.WithLabelValues("insufficient_funds"))
	RecordPurchase("insufficient_funds")
	after := testutil.ToFloat64(PurchasesTotal.WithLabelValues("insufficient_funds"))

	assert.Equal(t, before+1, after)
}

func TestRecordItemUse(t *testing.T) {
	landedBefore := testutil.ToFloat64(ItemUsesTotal.WithLabelValues("yes"))
	missedBefore := testutil.ToFloat64(ItemUsesTotal.WithLabelValues("no"))

	RecordItemUse(true)
	RecordItemUse(false)

	assert.Equal(t, landedBefore+1, testutil.ToFloat64(ItemUsesTotal.WithLabelValues("yes")))
	assert.Equal(t, missedBefore+1, testutil.ToFloat64(ItemUsesTotal.WithLabelValues("no")))
}

func TestReceiptQueueLengthGauge(t *testing.T) {
	ReceiptQueueLength.Set(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(ReceiptQueueLength))
}
