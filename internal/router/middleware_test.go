package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/groupbuy-next/internal/authz"
	"github.com/groupbuy-next/internal/config"
	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func envelopeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp.StatusCode
}

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{"wildcard", "https://shop.example.com", []string{"*"}, false, "*"},
		{"wildcard echoes origin with credentials", "https://shop.example.com", []string{"*"}, true, "https://shop.example.com"},
		{"allow list hit", "https://Admin.example.com", []string{"https://admin.example.com"}, false, "https://Admin.example.com"},
		{"allow list miss", "https://evil.example.com", []string{"https://admin.example.com"}, false, ""},
		{"empty origin", "", []string{"https://admin.example.com"}, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}, AllowCredentials: true, MaxAge: 600}))
	r.POST("/api/v1/leader/withdrawals", func(c *gin.Context) {
		t.Fatalf("preflight should not reach handler")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/leader/withdrawals", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://admin.example.com" {
		t.Fatalf("unexpected allow origin: %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("max age header missing")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, " req-123 ")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "req-123" || w.Body.String() != "req-123" {
		t.Fatalf("incoming request id should be trimmed and kept, header=%s body=%s", w.Header().Get(requestIDHeader), w.Body.String())
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := strings.TrimSpace(w2.Header().Get(requestIDHeader))
	if generated == "" || generated != w2.Body.String() {
		t.Fatalf("generated request id mismatch, header=%s body=%s", generated, w2.Body.String())
	}
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := service.NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: "middleware-test-secret"}}, nil, nil, nil)
	cases := []struct {
		name   string
		svc    *service.AuthService
		header string
	}{
		{"no auth service", nil, "Bearer abc"},
		{"missing header", authSvc, ""},
		{"wrong scheme", authSvc, "Basic abc"},
		{"garbage token", authSvc, "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(JWTAuthMiddleware(tc.svc))
			r.GET("/api/v1/leader/profile", func(c *gin.Context) {
				t.Fatalf("rejected request reached handler")
			})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/leader/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("http status want 200 got %d", w.Code)
			}
			if code := envelopeCode(t, w); code != 401 {
				t.Fatalf("status_code want 401 got %d", code)
			}
		})
	}
}

func TestRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("init authz failed: %v", err)
	}
	if err := authzSvc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	if err := authzSvc.SetUserRoles(9, []string{"leader"}); err != nil {
		t.Fatalf("bind leader failed: %v", err)
	}

	newEngine := func(principal *service.Principal) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if principal != nil {
				handlershared.SetPrincipal(c, *principal)
			}
			c.Next()
		})
		r.Use(RBACMiddleware(authzSvc))
		ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status_code": 0}) }
		r.GET("/api/v1/leader/orders", ok)
		r.GET("/api/v1/admin/orders", ok)
		return r
	}

	leader := &service.Principal{UserID: 9, Role: "leader", LeaderID: 1}
	cases := []struct {
		name      string
		principal *service.Principal
		path      string
		want      int
	}{
		{"anonymous", nil, "/api/v1/leader/orders", 401},
		{"leader own scope", leader, "/api/v1/leader/orders", 0},
		{"leader on admin scope", leader, "/api/v1/admin/orders", 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newEngine(tc.principal).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if code := envelopeCode(t, w); code != tc.want {
				t.Fatalf("status_code want %d got %d", tc.want, code)
			}
		})
	}
}
