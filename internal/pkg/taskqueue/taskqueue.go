package taskqueue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redisc "github.com/korozcolt/archive-master-app-sub004/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	queueKey    = "am:ai:runs:queue"
	popTimeout  = 5 * time.Second
	maxAttempts = 3
)

// Message is the only thing a worker needs: the run id. Everything else is
// loaded from the persisted run record.
type Message struct {
	RunID    string `json:"run_id"`
	Attempts int    `json:"attempts,omitempty"`
}

// Queue is a Redis-list backed run queue with at-least-once delivery.
type Queue struct {
	rc  *redisc.Client
	key string
}

func New(rc *redisc.Client) *Queue {
	return &Queue{rc: rc, key: queueKey}
}

// Enqueue pushes a run id for asynchronous execution.
func (q *Queue) Enqueue(ctx context.Context, runID string) error {
	return q.push(ctx, Message{RunID: runID})
}

func (q *Queue) push(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.rc.LPush(ctx, q.key, data)
}

// Handler processes one delivered run id. Returning an error triggers
// redelivery up to maxAttempts.
type Handler func(ctx context.Context, runID string) error

// Worker consumes the queue with a fixed pool of goroutines.
type Worker struct {
	queue       *Queue
	handler     Handler
	concurrency int
	logger      *zap.Logger
}

func NewWorker(queue *Queue, handler Handler, concurrency int, logger *zap.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{queue: queue, handler: handler, concurrency: concurrency, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		raw, err := w.queue.rc.BRPop(ctx, popTimeout, w.queue.key)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if raw == "" {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			w.logger.Error("discarding malformed queue message", zap.String("raw", raw), zap.Error(err))
			continue
		}

		if err := w.handler(ctx, msg.RunID); err != nil {
			msg.Attempts++
			if msg.Attempts >= maxAttempts {
				w.logger.Error("dropping run after repeated delivery failures",
					zap.String("run_id", msg.RunID),
					zap.Int("attempts", msg.Attempts),
					zap.Error(err))
				continue
			}
			w.logger.Warn("requeueing run",
				zap.String("run_id", msg.RunID),
				zap.Int("attempts", msg.Attempts),
				zap.Error(err))
			if pushErr := w.queue.push(ctx, msg); pushErr != nil {
				w.logger.Error("requeue failed", zap.String("run_id", msg.RunID), zap.Error(pushErr))
			}
		}
	}
}
