// middleware_test.go tests JWT auth and rate limiting.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the middleware in the same order as the real router
// and echoes the client ID.
func newTestRouter(secret string, rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(JWTAuth(secret))
	if rl != nil {
		r.Use(rl.RateLimit())
	}
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ClientID(c))
	})
	return r
}

func doRequest(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = "192.0.2.10:4321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT("alice", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	claims, err := ParseJWT(token, testSecret)
	if err != nil {
		t.Fatalf("ParseJWT returned error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want alice", claims.Subject)
	}

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := ParseJWT(token, "another-secret"); err == nil {
			t.Error("ParseJWT accepted a token signed with a different secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := GenerateJWT("alice", testSecret, -time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ParseJWT(expired, testSecret); err == nil {
			t.Error("ParseJWT accepted an expired token")
		}
	})

	t.Run("empty subject", func(t *testing.T) {
		if _, err := GenerateJWT("", testSecret, time.Hour); err == nil {
			t.Error("GenerateJWT accepted an empty subject")
		}
	})
}

func TestJWTAuth(t *testing.T) {
	valid, err := GenerateJWT("alice", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		secret   string
		token    string
		wantCode int
		wantBody string
	}{
		{name: "auth disabled", secret: "", token: "", wantCode: http.StatusOK, wantBody: "ip:192.0.2.10"},
		{name: "missing token", secret: testSecret, token: "", wantCode: http.StatusUnauthorized},
		{name: "garbage token", secret: testSecret, token: "not-a-jwt", wantCode: http.StatusUnauthorized},
		{name: "valid token", secret: testSecret, token: valid, wantCode: http.StatusOK, wantBody: "sub:alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newTestRouter(tt.secret, nil), tt.token)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(2)
	defer rl.Stop()
	r := newTestRouter("", rl)

	for i := 1; i <= 2; i++ {
		w := doRequest(r, "")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Limit"); got != "2" {
			t.Errorf("request %d: X-RateLimit-Limit = %q, want 2", i, got)
		}
	}

	w := doRequest(r, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	defer rl.Stop()
	r := newTestRouter("", rl)

	for i := 0; i < 5; i++ {
		if w := doRequest(r, ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}

func TestRateLimiter_RefillAndEvict(t *testing.T) {
	rl := NewRateLimiter(3600) // one token per second
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3600; i++ {
		if !rl.allow("client").allowed {
			t.Fatalf("request %d rejected before the bucket was empty", i)
		}
	}
	if rl.allow("client").allowed {
		t.Fatal("request allowed with an empty bucket")
	}

	now = now.Add(2 * time.Second)
	if res := rl.allow("client"); !res.allowed {
		t.Error("request rejected after refill")
	}

	now = now.Add(2 * time.Hour)
	rl.evictIdle(time.Hour)
	rl.mu.Lock()
	n := len(rl.buckets)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("%d buckets left after eviction, want 0", n)
	}
}
