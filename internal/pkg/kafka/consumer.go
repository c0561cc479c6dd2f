package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/internal/entity"
	"github.com/ds124wfegd/image-resizer/internal/service"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads transform jobs from a topic, runs at most workers of them
// at once and publishes one outcome event per job.
type Consumer struct {
	reader       messageReader
	service      service.TransformService
	producer     Producer
	workers      int
	retryBackoff time.Duration
	logger       logrus.FieldLogger
}

const readRetryBackoff = time.Second

func NewConsumer(brokers []string, topic, groupID string, workers int, svc service.TransformService, producer Producer, logger logrus.FieldLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return newConsumer(reader, workers, svc, producer, logger)
}

func newConsumer(reader messageReader, workers int, svc service.TransformService, producer Producer, logger logrus.FieldLogger) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{
		reader:       reader,
		service:      svc,
		producer:     producer,
		workers:      workers,
		retryBackoff: readRetryBackoff,
		logger:       logger,
	}
}

// Run consumes until ctx is cancelled or the reader is closed, then waits
// for in-flight jobs.
func (c *Consumer) Run(ctx context.Context) error {
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	c.logger.WithField("workers", c.workers).Info("Image processor consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.WithError(err).Error("Error reading message from Kafka")
			select {
			case <-time.After(c.retryBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		c.logger.WithFields(logrus.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Debug("Received message")

		req, err := parseJob(msg.Value)
		if err != nil {
			c.publish(ctx, req.ID, failedEvent(req.ID, err))
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		wg.Add(1)
		go func(req entity.TransformRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			c.process(ctx, req)
		}(req)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func parseJob(value []byte) (entity.TransformRequest, error) {
	var job entity.TransformJob
	if err := json.Unmarshal(value, &job); err != nil {
		err = entity.AtStage(entity.NewError(entity.KindInvalidRequest, err), entity.StageReceived)
		return entity.TransformRequest{}, err
	}
	return service.NewTransformRequest(job.ID, job.SourceURL, job.DestinationURL, job.Size, job.MIMEType)
}

func (c *Consumer) process(ctx context.Context, req entity.TransformRequest) {
	result, err := c.service.Transform(ctx, req)
	if err != nil {
		c.publish(ctx, req.ID, failedEvent(req.ID, err))
		return
	}
	c.publish(ctx, req.ID, entity.TransformEvent{
		JobID:  req.ID,
		Status: entity.StatusOK,
		Result: result,
	})
}

// publish outlives ctx so jobs finishing during shutdown still report.
func (c *Consumer) publish(ctx context.Context, key string, event entity.TransformEvent) {
	if err := c.producer.SendMessage(context.WithoutCancel(ctx), key, event); err != nil {
		c.logger.WithError(err).WithField("job_id", key).Error("Could not publish job outcome")
	}
}

func failedEvent(jobID string, err error) entity.TransformEvent {
	resp := entity.NewErrorResponse(jobID, err)
	return entity.TransformEvent{
		JobID:  jobID,
		Status: entity.StatusError,
		Error:  &resp,
	}
}
