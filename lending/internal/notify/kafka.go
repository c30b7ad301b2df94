package notify

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is the record published for every message.
type Event struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Message   `json:",inline"`
}

type kafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewKafkaNotifier(producer sarama.SyncProducer, topic string) Notifier {
	return &kafkaNotifier{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

func (n *kafkaNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		CreatedAt: n.now().UTC(),
		Message:   msg,
	})
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	pm := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(msg.Recipient.Email),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(msg.Kind)},
		},
	}
	if _, _, err = n.producer.SendMessage(pm); err != nil {
		return errors.Wrap(err, "producer.SendMessage")
	}
	return nil
}
