// Package nats provides the NATS JetStream work queue for recompute jobs.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/lockin/domain/job"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the name of the JetStream stream for recompute jobs.
	StreamName = "LOCKIN_RECOMPUTE"
	// SubjectJobs matches every recompute subject.
	SubjectJobs = "recompute.>"
	// SubjectJobsNew is the subject new jobs are published on.
	SubjectJobsNew = "recompute.jobs"
	// ConsumerName is the name of the durable consumer.
	ConsumerName = "recompute-workers"
)

// Config holds NATS client configuration.
type Config struct {
	URL             string
	MaxDeliverCount int
	AckWait         time.Duration
}

// DefaultConfig returns the default NATS configuration.
func DefaultConfig() Config {
	return Config{
		URL:             "nats://localhost:4222",
		MaxDeliverCount: 5,
		AckWait:         30 * time.Second,
	}
}

// Client publishes and consumes recompute jobs through JetStream.
type Client struct {
	cfg      Config
	nc       *nats.Conn
	js       jetstream.JetStream
	stream   jetstream.Stream
	consumer jetstream.Consumer
}

// NewClient creates a client. Connect must be called before use.
func NewClient(cfg Config) *Client {
	if cfg.MaxDeliverCount <= 0 {
		cfg.MaxDeliverCount = DefaultConfig().MaxDeliverCount
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = DefaultConfig().AckWait
	}
	return &Client{cfg: cfg}
}

// Connect establishes the connection and declares the stream and consumer.
func (c *Client) Connect(ctx context.Context) error {
	nc, err := nats.Connect(c.cfg.URL,
		nats.Name("lockin"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	c.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	c.js = js

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Leaderboard recompute jobs",
		Subjects:    []string{SubjectJobs},
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Duplicates:  2 * time.Minute,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	c.stream = stream

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          ConsumerName,
		Durable:       ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.cfg.AckWait,
		MaxDeliver:    c.cfg.MaxDeliverCount,
		FilterSubject: SubjectJobsNew,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	c.consumer = consumer

	log.Printf("[nats] Connected to %s, stream %s and consumer %s ready", c.cfg.URL, StreamName, ConsumerName)
	return nil
}

// Publish enqueues a job. The job id doubles as the JetStream message id so
// a duplicate publish within the dedupe window is ignored.
func (c *Client) Publish(ctx context.Context, j *job.Job) error {
	if c.js == nil {
		return job.ErrQueueUnavailable
	}
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	ack, err := c.js.Publish(ctx, SubjectJobsNew, data, jetstream.WithMsgID(j.ID))
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	log.Printf("[nats] Published job %s (%s %s), sequence %d", j.ID, j.Kind, j.Target(), ack.Sequence)
	return nil
}

// Subscribe streams jobs until ctx is cancelled. Undecodable messages are
// terminated.
func (c *Client) Subscribe(ctx context.Context) (<-chan *Message, error) {
	if c.consumer == nil {
		return nil, job.ErrQueueUnavailable
	}

	iter, err := c.consumer.Messages()
	if err != nil {
		return nil, fmt.Errorf("failed to create message iterator: %w", err)
	}

	out := make(chan *Message)
	go func() {
		defer close(out)
		<-ctx.Done()
		iter.Stop()
	}()
	go func() {
		for {
			msg, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					return
				}
				log.Printf("[nats] Error fetching message: %v", err)
				continue
			}

			var j job.Job
			if err := json.Unmarshal(msg.Data(), &j); err != nil {
				log.Printf("[nats] Error unmarshaling job: %v", err)
				if err := msg.Term(); err != nil {
					log.Printf("[nats] Error terminating message: %v", err)
				}
				continue
			}

			delivered := 1
			if md, err := msg.Metadata(); err == nil && md != nil {
				delivered = int(md.NumDelivered)
			}
			j.Attempt = delivered

			select {
			case out <- &Message{Job: &j, msg: msg}:
			case <-ctx.Done():
				_ = msg.Nak()
				return
			}
		}
	}()
	return out, nil
}

// Message is a delivered job with its acknowledgement handles.
type Message struct {
	Job *job.Job
	msg jetstream.Msg
}

// Ack acknowledges successful processing.
func (m *Message) Ack() error {
	return m.msg.Ack()
}

// NakWithDelay asks for redelivery after delay.
func (m *Message) NakWithDelay(delay time.Duration) error {
	return m.msg.NakWithDelay(delay)
}

// Term stops redelivery.
func (m *Message) Term() error {
	return m.msg.Term()
}

// Close drains and closes the connection.
func (c *Client) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.Println("[nats] Connection closed")
	return nil
}

// IsConnected returns true if connected to NATS.
func (c *Client) IsConnected() bool {
	return c.nc != nil && c.nc.IsConnected()
}

// Pending returns the number of jobs waiting for the consumer.
func (c *Client) Pending(ctx context.Context) (uint64, error) {
	if c.consumer == nil {
		return 0, job.ErrQueueUnavailable
	}
	info, err := c.consumer.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read consumer info: %w", err)
	}
	return info.NumPending, nil
}
