package notify

import (
	"context"

	"github.com/Astemirdum/library-lending/pkg/circuit_breaker"
)

type breakerNotifier struct {
	next Notifier
	cb   circuit_breaker.CircuitBreaker
}

// WithBreaker stops calling next while cb is open, Notify then fails fast
// with circuit_breaker.ErrOpenCB.
func WithBreaker(next Notifier, cb circuit_breaker.CircuitBreaker) Notifier {
	return &breakerNotifier{next: next, cb: cb}
}

func (n *breakerNotifier) Notify(ctx context.Context, msg Message) error {
	return n.cb.Call(func() error {
		return n.next.Notify(ctx, msg)
	})
}
