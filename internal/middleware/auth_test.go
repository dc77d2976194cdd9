package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/ratelimit"
	"github.com/labstack/echo/v4"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                                 {}
func (nopLogger) Debug(args ...interface{})                   {}
func (nopLogger) Debugf(template string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})                    {}
func (nopLogger) Infof(template string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})                    {}
func (nopLogger) Warnf(template string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})                   {}
func (nopLogger) Errorf(template string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})                   {}
func (nopLogger) Fatalf(template string, args ...interface{}) {}

type stubLimiter struct {
	result *ratelimit.Result
	err    error
	keys   []string
}

func (s *stubLimiter) Check(ctx context.Context, key string) (*ratelimit.Result, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func makeManager(apiKeys []string, limiter ratelimit.Limiter) *MiddlewareManager {
	cfg := &config.Config{}
	cfg.Auth.APIKeys = apiKeys
	cfg.RateLimit.MaxRequests = 100
	return NewMiddlewareManager(cfg, limiter, []string{"*"}, nopLogger{})
}

func invoke(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, bool) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, reached
}

func TestAPIKeyMiddlewareMissingKey(t *testing.T) {
	mw := makeManager([]string{"key-1"}, &stubLimiter{})
	rec, reached := invoke(mw.APIKeyMiddleware(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
	if reached {
		t.Error("handler reached without an API key")
	}
}

func TestAPIKeyMiddlewareInvalidKey(t *testing.T) {
	mw := makeManager([]string{"key-1"}, &stubLimiter{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec, reached := invoke(mw.APIKeyMiddleware(), req)
	if rec.Code != http.StatusUnauthorized || reached {
		t.Errorf("status = %d reached = %v; want 401 and handler skipped", rec.Code, reached)
	}
}

func TestAPIKeyMiddlewareValidHeaderKey(t *testing.T) {
	mw := makeManager([]string{"key-1", "key-2"}, &stubLimiter{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "key-2")
	rec, reached := invoke(mw.APIKeyMiddleware(), req)
	if rec.Code != http.StatusOK || !reached {
		t.Errorf("status = %d reached = %v; want 200 and handler invoked", rec.Code, reached)
	}
}

func TestAPIKeyMiddlewareBearerToken(t *testing.T) {
	mw := makeManager([]string{"key-1"}, &stubLimiter{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer key-1")
	rec, reached := invoke(mw.APIKeyMiddleware(), req)
	if rec.Code != http.StatusOK || !reached {
		t.Errorf("status = %d reached = %v; want 200 and handler invoked", rec.Code, reached)
	}
}

func TestAPIKeyMiddlewareNoKeysConfigured(t *testing.T) {
	mw := makeManager(nil, &stubLimiter{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "anything")
	rec, reached := invoke(mw.APIKeyMiddleware(), req)
	if rec.Code != http.StatusInternalServerError || reached {
		t.Errorf("status = %d reached = %v; want 500 and handler skipped", rec.Code, reached)
	}
}

func TestRateLimitMiddlewareAllows(t *testing.T) {
	limiter := &stubLimiter{result: &ratelimit.Result{Allowed: true, Remaining: 42, ResetAfter: time.Minute}}
	mw := makeManager([]string{"key-1"}, limiter)
	rec, reached := invoke(mw.RateLimitMiddleware(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !reached {
		t.Fatalf("status = %d reached = %v; want pass-through", rec.Code, reached)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("X-RateLimit-Limit = %q; want 100", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "42" {
		t.Errorf("X-RateLimit-Remaining = %q; want 42", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimitMiddlewareDenies(t *testing.T) {
	limiter := &stubLimiter{result: &ratelimit.Result{Allowed: false, Remaining: 0, ResetAfter: 30 * time.Second}}
	mw := makeManager([]string{"key-1"}, limiter)
	rec, reached := invoke(mw.RateLimitMiddleware(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests || reached {
		t.Fatalf("status = %d reached = %v; want 429 and handler skipped", rec.Code, reached)
	}
	if rec.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q; want 30", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddlewareKeyedByAPIKey(t *testing.T) {
	limiter := &stubLimiter{result: &ratelimit.Result{Allowed: true, Remaining: 1}}
	mw := makeManager([]string{"key-1"}, limiter)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(APIKeyCtxKey, "key-1")
	handler := mw.RateLimitMiddleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "key-1" {
		t.Errorf("limiter keys = %v; want [key-1]", limiter.keys)
	}
}

func TestRateLimitMiddlewareLimiterFailureIsOpen(t *testing.T) {
	limiter := &stubLimiter{err: context.DeadlineExceeded}
	mw := makeManager([]string{"key-1"}, limiter)
	rec, reached := invoke(mw.RateLimitMiddleware(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !reached {
		t.Errorf("status = %d reached = %v; want pass-through on limiter failure", rec.Code, reached)
	}
}
