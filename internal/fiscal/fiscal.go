// Package fiscal triggers fiscal-document issuance for completed
// bookings. Issuance is fire-and-forget from the scheduler's point of
// view: the completed booking never waits on, or fails with, the
// document pipeline.
package fiscal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TaskIssueDocument = "fiscal:issue_document"
	Queue             = "fiscal"
)

type Issuer interface {
	IssueDocument(ctx context.Context, bookingID uuid.UUID) error
}

type issuePayload struct {
	BookingID string `json:"booking_id"`
}

// AsynqIssuer enqueues issuance tasks on redis for the worker binary.
type AsynqIssuer struct {
	client *asynq.Client
}

func NewAsynqIssuer(redisAddr string) *AsynqIssuer {
	return &AsynqIssuer{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
	}
}

func (i *AsynqIssuer) IssueDocument(ctx context.Context, bookingID uuid.UUID) error {
	payload, err := json.Marshal(issuePayload{BookingID: bookingID.String()})
	if err != nil {
		return fmt.Errorf("fiscal: marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskIssueDocument, payload)
	_, err = i.client.EnqueueContext(ctx, task, asynq.Queue(Queue), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("fiscal: enqueue: %w", err)
	}
	return nil
}

func (i *AsynqIssuer) Close() error {
	return i.client.Close()
}
