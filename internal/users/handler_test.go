package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	sharedauth "classroom-backend/internal/shared/auth"
	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/users"
)

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	svc := users.NewService(users.NewMemoryRepo())
	if err := svc.UpsertFromAuth(context.Background(), users.User{ID: "google:42", Email: "t@school.org", FullName: "Pat"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := sharedauth.SignJWT(sharedauth.Claims{Email: "t@school.org", RegisteredClaims: jwt.RegisteredClaims{Subject: "google:42"}})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth("dev"))
	users.NewHandler(svc).RegisterRoutes(api)
	return r, token
}

func TestMeRequiresLogin(t *testing.T) {
	router, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-Guest-Id", "g1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestMeUpdateProfile(t *testing.T) {
	router, token := newRouter(t)

	body, _ := json.Marshal(map[string]string{"schoolName": "Lincoln Elementary", "gradeLevel": "4"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var me struct {
		ID         string `json:"id"`
		FullName   string `json:"fullName"`
		SchoolName string `json:"schoolName"`
		GradeLevel string `json:"gradeLevel"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.ID != "google:42" || me.FullName != "Pat" || me.SchoolName != "Lincoln Elementary" || me.GradeLevel != "4" {
		t.Fatalf("unexpected profile %+v", me)
	}
}
