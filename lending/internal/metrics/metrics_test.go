package metrics_test

import (
	"errors"
	"testing"

	"github.com/Astemirdum/library-lending/lending/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNotified(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Notified("due-reminder", nil)
	m.Notified("due-reminder", errors.New("down"))
	m.Notified("due-reminder", nil)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues("due-reminder", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("due-reminder", "error")))
	require.Equal(t, 2, testutil.CollectAndCount(m.Notifications))
}
