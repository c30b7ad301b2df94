package notify

import (
	"context"

	"github.com/Astemirdum/library-lending/lending/internal/metrics"
)

type instrumentedNotifier struct {
	next Notifier
	m    *metrics.Metrics
}

// WithMetrics counts every Notify call of next by kind and result.
func WithMetrics(next Notifier, m *metrics.Metrics) Notifier {
	return &instrumentedNotifier{next: next, m: m}
}

func (n *instrumentedNotifier) Notify(ctx context.Context, msg Message) error {
	err := n.next.Notify(ctx, msg)
	n.m.Notified(string(msg.Kind), err)
	return err
}
