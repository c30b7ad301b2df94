package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const (
	NotificationTopic = "lending.notifications"
)

type Config struct {
	Enable bool     `yaml:"enable" envconfig:"KAFKA_ENABLE"`
	Addrs  []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	Topic  string   `yaml:"topic" envconfig:"KAFKA_TOPIC" default:"lending.notifications"`
	// Partitions and Replication apply when the topic is created on startup.
	Partitions  int32 `yaml:"partitions" envconfig:"KAFKA_PARTITIONS" default:"3"`
	Replication int16 `yaml:"replication" envconfig:"KAFKA_REPLICATION" default:"1"`
}

func newConfig() *sarama.Config {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Timeout = 5 * time.Second
	return defaultCfg
}

func NewSyncProducer(cfg Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(cfg.Addrs, newConfig())
}

// CreateTopics creates the notification topic, an existing topic is not an error.
func CreateTopics(cfg Config) error {
	admin, err := sarama.NewClusterAdmin(cfg.Addrs, newConfig())
	if err != nil {
		return errors.Wrap(err, "sarama.NewClusterAdmin")
	}
	defer admin.Close()

	topic := cfg.Topic
	if topic == "" {
		topic = NotificationTopic
	}
	err = admin.CreateTopic(topic, &sarama.TopicDetail{
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: cfg.Replication,
	}, false)
	var topicErr *sarama.TopicError
	if errors.As(err, &topicErr) && topicErr.Err == sarama.ErrTopicAlreadyExists {
		return nil
	}
	return err
}
