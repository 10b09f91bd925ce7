package worker

import (
	"context"
	"log"
	"time"

	"github.com/example/lockin/domain/job"
	"github.com/example/lockin/modules/nats"
)

// Queue backends.
const (
	BackendMemory    = "memory"
	BackendJetStream = "jetstream"
)

// Delivery is one attempt at a queued job.
type Delivery interface {
	Job() *job.Job
	Ack() error
	Retry(delay time.Duration) error
	Drop() error
}

// Queue carries jobs from Submit to the workers.
type Queue interface {
	Enqueue(ctx context.Context, j *job.Job) error
	Deliveries(ctx context.Context) (<-chan Delivery, error)
}

// memoryQueue is a bounded channel. Enqueue never blocks.
type memoryQueue struct {
	jobs chan *job.Job
}

func newMemoryQueue(size int) *memoryQueue {
	if size <= 0 {
		size = 1
	}
	return &memoryQueue{jobs: make(chan *job.Job, size)}
}

func (q *memoryQueue) Enqueue(_ context.Context, j *job.Job) error {
	select {
	case q.jobs <- j:
		return nil
	default:
		return job.ErrQueueFull
	}
}

func (q *memoryQueue) Deliveries(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j := <-q.jobs:
				j.Attempt++
				select {
				case out <- &memoryDelivery{queue: q, job: j}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

type memoryDelivery struct {
	queue *memoryQueue
	job   *job.Job
}

func (d *memoryDelivery) Job() *job.Job { return d.job }
func (d *memoryDelivery) Ack() error { return nil }
func (d *memoryDelivery) Drop() error { return nil }

// Retry re-enqueues the job after delay. A full queue drops it.
func (d *memoryDelivery) Retry(delay time.Duration) error {
	time.AfterFunc(delay, func() {
		if err := d.queue.Enqueue(context.Background(), d.job); err != nil {
			log.Printf("[worker] Warning: retry of job %s dropped: %v", d.job.ID, err)
		}
	})
	return nil
}

// jetStreamQueue stores jobs in the durable LOCKIN_RECOMPUTE stream.
type jetStreamQueue struct {
	client *nats.Client
}

func (q *jetStreamQueue) Enqueue(ctx context.Context, j *job.Job) error {
	return q.client.Publish(ctx, j)
}

func (q *jetStreamQueue) Deliveries(ctx context.Context) (<-chan Delivery, error) {
	msgs, err := q.client.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for m := range msgs {
			select {
			case out <- jetStreamDelivery{m}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

type jetStreamDelivery struct {
	msg *nats.Message
}

func (d jetStreamDelivery) Job() *job.Job { return d.msg.Job }
func (d jetStreamDelivery) Ack() error { return d.msg.Ack() }
func (d jetStreamDelivery) Retry(delay time.Duration) error { return d.msg.NakWithDelay(delay) }
func (d jetStreamDelivery) Drop() error { return d.msg.Term() }
