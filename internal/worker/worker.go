// Package worker implements background task handlers for asynchronous rate ingestion.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ratehistory/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewRateIngestHandler returns a function to handle rate ingestion tasks.
// Duplicates and invalid observations are final and are not retried.
func NewRateIngestHandler(svc service.RateServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload service.IngestRatePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		pair := payload.From + "/" + payload.To
		candidate, err := payload.Candidate()
		if err != nil {
			logger.Warnw("Rejected ingest task", "pair", pair, "error", err)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}

		err = svc.Insert(ctx, candidate)
		switch {
		case err == nil:
			logger.Infow("Task completed", "pair", pair, "timestamp", payload.Timestamp)
			return nil
		case errors.Is(err, service.ErrDuplicateRate), errors.Is(err, service.ErrValidation):
			logger.Warnw("Rejected ingest task", "pair", pair, "timestamp", payload.Timestamp, "error", err)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		default:
			logger.Errorw("Task processing failed", "pair", pair, "timestamp", payload.Timestamp, "error", err)
			return err
		}
	}
}

// AsynqEnqueuer is responsible for enqueuing tasks to an Asynq queue with specific configurations for retries and timeouts.
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client, retry limit, and task timeout duration.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

var _ service.TaskEnqueuer = (*AsynqEnqueuer)(nil)

// EnqueueIngestTask enqueues one observation for ingestion.
func (e *AsynqEnqueuer) EnqueueIngestTask(ctx context.Context, payload service.IngestRatePayload) error {
	task, err := newIngestTask(payload, e.maxRetry, e.timeout)
	if err != nil {
		return err
	}

	_, err = e.client.EnqueueContext(ctx, task)
	return err
}

func newIngestTask(payload service.IngestRatePayload, maxRetry int, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(service.TaskTypeIngestRate, data,
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
	), nil
}
