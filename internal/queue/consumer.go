package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type MessageHandler func(ctx context.Context, msg jetstream.Msg) error

type Consumer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewConsumer(natsURL string) (*Consumer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Consumer{nc: nc, js: js}, nil
}

// ConsumeUploads starts consuming asset-uploaded signals.
// workerCount determines how many goroutines process signals concurrently;
// signals for different assets may run fully in parallel.
func (c *Consumer) ConsumeUploads(ctx context.Context, consumerName string, handler MessageHandler, workerCount int) error {
	return c.consume(ctx, UploadsStreamName, UploadsSubjectBase+".>", consumerName, handler, workerCount, 5*time.Minute)
}

// ConsumeJobTasks starts consuming video detection job start requests.
func (c *Consumer) ConsumeJobTasks(ctx context.Context, consumerName string, handler MessageHandler, workerCount int) error {
	return c.consume(ctx, FaceJobsStreamName, jobTaskSubject+".>", consumerName, handler, workerCount, 15*time.Minute)
}

// ConsumeJobCompletions starts consuming detection job completion signals.
func (c *Consumer) ConsumeJobCompletions(ctx context.Context, consumerName string, handler MessageHandler, workerCount int) error {
	return c.consume(ctx, FaceJobsStreamName, jobDoneSubject+".>", consumerName, handler, workerCount, 15*time.Minute)
}

func (c *Consumer) consume(ctx context.Context, streamName, filter, consumerName string, handler MessageHandler, workerCount int, ackWait time.Duration) error {
	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return fmt.Errorf("get stream %s: %w", streamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		MaxDeliver:    3,
		FilterSubject: filter,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	msgCh := make(chan jetstream.Msg, workerCount*2)

	go func() {
		for {
			select {
			case <-ctx.Done():
				close(msgCh)
				return
			default:
			}

			batch, err := cons.Fetch(workerCount, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				if ctx.Err() != nil {
					close(msgCh)
					return
				}
				slog.Warn("fetch messages error", "consumer", consumerName, "error", err)
				time.Sleep(time.Second)
				continue
			}

			for msg := range batch.Messages() {
				select {
				case msgCh <- msg:
				case <-ctx.Done():
					close(msgCh)
					return
				}
			}
		}
	}()

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			for msg := range msgCh {
				if err := handler(ctx, msg); err != nil {
					slog.Error("process message error", "consumer", consumerName, "worker", workerID, "error", err, "subject", msg.Subject())
					_ = msg.Nak()
				} else {
					_ = msg.Ack()
				}
			}
		}(i)
	}

	slog.Info("consumer started", "consumer", consumerName, "workers", workerCount)
	return nil
}

func (c *Consumer) Close() {
	c.nc.Close()
}
