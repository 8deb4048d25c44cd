package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
)

var _ transfer.FailureQueue = (*Client)(nil)

// Client encola tareas en Redis.
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient construye el cliente asynq.
func NewClient(redisOpt asynq.RedisClientOpt, maxRetry int) *Client {
	if maxRetry <= 0 {
		maxRetry = 10
	}
	return &Client{client: asynq.NewClient(redisOpt), maxRetry: maxRetry}
}

// EnqueueFailure implementa transfer.FailureQueue. El TaskID evita duplicar la anotación de una misma solicitud.
func (c *Client) EnqueueFailure(ctx context.Context, ann transfer.FailureAnnotation) error {
	task, err := NewRecordFailureTask(ann)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueTransfers),
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(30*time.Second),
		asynq.TaskID("record_failure:"+ann.RequestID),
	)
	if err != nil {
		return fmt.Errorf("enqueue record failure: %w", err)
	}
	return nil
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
