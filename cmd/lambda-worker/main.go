package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"classroom-backend/internal/bootstrap"
	"classroom-backend/internal/shared/config"
	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/telemetry"
	"classroom-backend/internal/workerproc"
)

var (
	initOnce  sync.Once
	initErr   error
	processor workerproc.Processor
)

func initApp() {
	app, err := bootstrap.Build(context.Background(), config.Load())
	if err != nil {
		initErr = err
		return
	}
	processor = app.RunsService
}

// handleEvent processes an SQS batch. Only retryable failures are reported
// back; unreadable records are dropped so they do not loop.
func handleEvent(ctx context.Context, proc workerproc.Processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := workerproc.HandleMessage(ctx, proc, record.Body)
		var procErr workerproc.ErrProcess
		switch {
		case err == nil:
			metrics.IncWorkerJob("completed")
		case errors.As(err, &procErr):
			telemetry.Error("worker.run.failed", map[string]any{
				"run_id":         procErr.RunID,
				"request_id":     procErr.RequestID,
				"sqs_message_id": record.MessageId,
				"error":          err,
			})
			metrics.IncWorkerJob("failed")
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		default:
			telemetry.Error("worker.run.decode_failed", map[string]any{
				"sqs_message_id": record.MessageId,
				"error":          err,
			})
			metrics.IncWorkerJob("deleted_unrecoverable")
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return handleEvent(ctx, processor, event), nil
}

func main() {
	lambda.Start(handler)
}
