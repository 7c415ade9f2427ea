package exports_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/exports"
	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/storage/object/local"
)

func TestExportsListAndDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &exports.Service{Repo: exports.NewMemoryRepo(), Store: local.New(t.TempDir())}
	created, err := svc.Create(context.Background(), exports.CreateInput{
		OwnerID:     "guest:g1",
		Title:       "Differentiated Lesson Plans",
		ContentType: "application/vnd.test",
		Ext:         "docx",
		Data:        []byte("payload"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth("dev"))
	exports.NewHandler(svc).RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	req.Header.Set("X-Guest-Id", "g1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []exports.ExportResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ExportID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/exports/"+created.ID+"/download", nil)
	req.Header.Set("X-Guest-Id", "g1")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "payload" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="differentiated-lesson-plans.docx"` {
		t.Fatalf("unexpected disposition %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/exports/"+created.ID+"/download", nil)
	req.Header.Set("X-Guest-Id", "someone-else")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner, got %d", resp.Code)
	}
}
