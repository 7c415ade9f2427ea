package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func getRequest(path string) events.APIGatewayV2HTTPRequest {
	req := events.APIGatewayV2HTTPRequest{RawPath: path, Headers: map[string]string{}}
	req.RequestContext.HTTP.Method = http.MethodGet
	req.RequestContext.HTTP.Path = path
	return req
}

func TestServeProxiesToRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	resp, err := serve(context.Background(), ginadapter.NewV2(router), nil, getRequest("/api/v1/health"))
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	if !strings.Contains(resp.Body, `"ok"`) {
		t.Fatalf("unexpected body %s", resp.Body)
	}
}

func TestServeReportsBootstrapFailure(t *testing.T) {
	bootErr := errors.New("DATABASE_URL is required")
	resp, err := serve(context.Background(), nil, bootErr, getRequest("/api/v1/health"))
	if !errors.Is(err, bootErr) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError || !strings.Contains(resp.Body, "bootstrap failed") {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestServeWithoutRouter(t *testing.T) {
	resp, err := serve(context.Background(), nil, nil, getRequest("/"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
