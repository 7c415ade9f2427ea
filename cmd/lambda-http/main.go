package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"classroom-backend/internal/bootstrap"
	"classroom-backend/internal/shared/config"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg := config.Load()
	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		initErr = err
		return
	}
	if app.LocalQueue != nil {
		// Queued runs only survive while the execution environment is warm.
		log.Printf("SQS_QUEUE_URL not set; async runs use the in-process queue")
		app.StartWorkers(context.Background())
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

// serve proxies one API Gateway request into the router. Synchronous batches
// are answered as JSON; streamed progress is buffered by API Gateway.
func serve(ctx context.Context, proxy *ginadapter.GinLambdaV2, bootErr error, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if bootErr != nil {
		log.Printf("bootstrap error: %v", bootErr)
		return errorResponse("bootstrap failed"), bootErr
	}
	if proxy == nil {
		return errorResponse("router not initialized"), nil
	}
	return proxy.ProxyWithContext(ctx, req)
}

func errorResponse(message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{"error": map[string]string{"code": "internal_error", "message": message}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	return serve(ctx, ginLambda, initErr, req)
}

func main() {
	lambda.Start(handler)
}
