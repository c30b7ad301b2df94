package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/lending/internal/metrics"
	"github.com/Astemirdum/library-lending/lending/internal/notify"
	"github.com/Astemirdum/library-lending/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var msg = notify.Message{
	Recipient: notify.Recipient{UserID: 7, Name: "Ann", Email: "ann@example.com"},
	Kind:      notify.KindIssueConfirmation,
	Subject:   "Book issued: Dune",
	Body:      "due 2024-01-15",
	Payload:   map[string]any{"transactionId": 3},
}

func TestKafkaNotifier(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev notify.Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.ID == "" || ev.Kind != notify.KindIssueConfirmation || ev.Recipient.Email != "ann@example.com" {
			return errors.Errorf("unexpected event %+v", ev)
		}
		return nil
	})
	n := notify.NewKafkaNotifier(producer, "lending.notifications")
	require.NoError(t, n.Notify(context.Background(), msg))
	require.NoError(t, producer.Close())
}

func TestKafkaNotifierFailure(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	n := notify.NewKafkaNotifier(producer, "lending.notifications")
	err := n.Notify(context.Background(), msg)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

type failing struct{ calls int }

func (f *failing) Notify(context.Context, notify.Message) error {
	f.calls++
	return errors.New("broker down")
}

func TestWithBreaker(t *testing.T) {
	t.Parallel()
	next := &failing{}
	n := notify.WithBreaker(next, circuit_breaker.New(1, time.Minute, 1, 1))

	require.EqualError(t, n.Notify(context.Background(), msg), "broker down")
	require.ErrorIs(t, n.Notify(context.Background(), msg), circuit_breaker.ErrOpenCB)
	require.Equal(t, 1, next.calls)
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()
	require.NoError(t, notify.NewLogNotifier(zap.NewNop()).Notify(context.Background(), msg))
}

func TestWithMetrics(t *testing.T) {
	t.Parallel()
	m := metrics.New(prometheus.NewRegistry())
	n := notify.WithMetrics(&failing{}, m)

	require.Error(t, n.Notify(context.Background(), msg))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(string(notify.KindIssueConfirmation), "error")))
}
