package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	SendMessage(ctx context.Context, key string, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	logger logrus.FieldLogger
}

// NewProducer writes to topic on the first reachable broker. When no broker
// answers it falls back to a producer that only logs the messages.
func NewProducer(brokers []string, topic string, logger logrus.FieldLogger) Producer {
	logctx := logger.WithFields(logrus.Fields{"brokers": brokers, "topic": topic})

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := dialAny(ctx, brokers)
	if err != nil {
		logctx.WithError(err).Warn("Kafka connection failed, using mock producer instead")
		return &mockProducer{logger: logger}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logctx.WithError(err).Debug("Could not create topic (might already exist)")
	}

	logctx.Info("Connected to Kafka")
	return &kafkaProducer{writer: writer, logger: logger}
}

func dialAny(ctx context.Context, brokers []string) (*kafka.Conn, error) {
	var lastErr error
	for _, broker := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = kafka.BrokerNotAvailable
	}
	return nil, lastErr
}

func (p *kafkaProducer) SendMessage(ctx context.Context, key string, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: messageBytes,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithError(err).WithField("key", key).Error("Failed to write message to Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{"topic": p.writer.Topic, "key": key}).Debug("Message sent")
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// mockProducer keeps the processor usable without Kafka.
type mockProducer struct {
	logger logrus.FieldLogger
}

func (m *mockProducer) SendMessage(ctx context.Context, key string, message interface{}) error {
	m.logger.WithFields(logrus.Fields{"key": key, "message": message}).Info("MOCK: message not sent")
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
