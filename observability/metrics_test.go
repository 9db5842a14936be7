package observability

import (
	"errors"
	"market-node/domain"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.MessageHandled(domain.ActionBid, domain.StatusProcessed, 3)
	metrics.MessageHandled(domain.ActionBid, domain.StatusProcessed, 4)
	metrics.MessageHandled("", domain.StatusParsingFailed, 1)
	metrics.NotificationPublished(nil)
	metrics.NotificationPublished(errors.New("sink down"))
	metrics.PendingBatch(7)

	req.Equal(2.0, testutil.ToFloat64(metrics.messagesHandled.WithLabelValues("MPA_BID", "PROCESSED")))
	req.Equal(1.0, testutil.ToFloat64(metrics.messagesHandled.WithLabelValues("NONE", "PARSING_FAILED")))
	req.Equal(1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("failed")))
	req.Equal(7.0, testutil.ToFloat64(metrics.pendingBatch))
}

func TestMetrics_Nil_Is_Noop(t *testing.T) {
	var metrics *Metrics
	require.NotPanics(t, func() {
		metrics.MessageHandled(domain.ActionBid, domain.StatusProcessed, 1)
		metrics.SendCompleted(domain.ActionBid, domain.SendStatusSent)
		metrics.PendingBatch(1)
	})
}
