package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func echoOperator() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Operator(r.Context())))
	})
}

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestRequireAuth(t *testing.T) {
	const secret = "test-secret"
	h := RequireAuth(secret)(echoOperator())

	tests := []struct {
		name     string
		header   string
		status   int
		operator string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + sign(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}), http.StatusUnauthorized, ""},
		{"wrong algorithm", "Bearer " + sign(t, secret, jwt.SigningMethodHS384, jwt.MapClaims{"sub": "u1"}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"name claim", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "name": "Zhang"}), http.StatusOK, "Zhang"},
		{"subject only", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}), http.StatusOK, "u1"},
		{"no identity", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}), http.StatusOK, DefaultOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusOK {
				if rec.Body.String() != tt.operator {
					t.Errorf("expected operator %q, got %q", tt.operator, rec.Body.String())
				}
				return
			}
			var body map[string]string
			json.NewDecoder(rec.Body).Decode(&body)
			if body["code"] != "unauthorized" {
				t.Errorf("unexpected error body %v", body)
			}
		})
	}
}

func TestOperatorDefault(t *testing.T) {
	if Operator(context.Background()) != DefaultOperator {
		t.Fatal("expected default operator")
	}
	if Operator(WithOperator(context.Background(), "li")) != "li" {
		t.Fatal("expected stored operator")
	}
}

func TestRateLimitMemory(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	h := RateLimit(limiter, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i, want := range []int{200, 200, 429} {
		if got := hit("10.0.0.1:1234"); got != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, got)
		}
	}
	if got := hit("10.0.0.2:1234"); got != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", got)
	}

	now = now.Add(time.Minute)
	if got := hit("10.0.0.1:5678"); got != http.StatusOK {
		t.Fatalf("expected new window to pass, got %d", got)
	}

	now = now.Add(10 * time.Minute)
	limiter.sweep()
	if len(limiter.clients) != 0 {
		t.Fatalf("expected stale windows swept, got %d", len(limiter.clients))
	}
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimit(NewMemoryLimiter(), 0)(next)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected limiter disabled, got %d", rec.Code)
		}
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	limiter := NewRedisLimiter(rdb, zap.NewNop().Sugar())
	ok, err := limiter.Allow(context.Background(), "10.0.0.1", 1)
	if !ok || err != nil {
		t.Fatalf("expected fail-open, got %v (%v)", ok, err)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing security headers: %v", rec.Header())
	}
}
