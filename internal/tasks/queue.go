// Package tasks is a small fire-and-forget work queue over a Redis list.
// Delivery is at-least-once: a task is popped before it runs, so a crash
// mid-task loses it, while a slow consumer never duplicates it; callers
// must not depend on task completion.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueKey = "tasks:queue"

// TaskSendMockEmail logs a fake email delivery after a delay.
const TaskSendMockEmail = "send_mock_email"

type Task struct {
	Name    string `json:"name"`
	Payload string `json:"payload"`
}

type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, queueKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// Handler processes one task payload.
type Handler func(ctx context.Context, payload string)

// Worker pops tasks and dispatches them by name. Unknown task names are
// logged and dropped.
type Worker struct {
	client   *redis.Client
	handlers map[string]Handler
}

func NewWorker(client *redis.Client) *Worker {
	return &Worker{client: client, handlers: make(map[string]Handler)}
}

func (w *Worker) Register(name string, h Handler) {
	w.handlers[name] = h
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		res, err := w.client.BRPop(ctx, 5*time.Second, queueKey).Result()
		if ctx.Err() != nil {
			return
		}
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Printf("task queue pop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value].
		var t Task
		if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
			log.Printf("dropping malformed task: %v", err)
			continue
		}

		h, ok := w.handlers[t.Name]
		if !ok {
			log.Printf("dropping task with unknown name %q", t.Name)
			continue
		}
		h(ctx, t.Payload)
	}
}

// SendMockEmail pretends to deliver a notification email.
func SendMockEmail(ctx context.Context, email string) {
	log.Printf("[task] sending email to %s...", email)
	select {
	case <-time.After(10 * time.Second):
	case <-ctx.Done():
		return
	}
	log.Printf("[task] email sent to %s", email)
}
