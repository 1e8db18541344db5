package router

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/config"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/middleware"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/pdftest"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/batch"
)

const testSecret = "router-test-secret-0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, secret string, rateLimit int) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Port:             "0",
		GinMode:          gin.TestMode,
		JWTSecret:        secret,
		RateLimit:        rateLimit,
		MaxFileSize:      1 << 20,
		MaxFiles:         2,
		BatchConcurrency: 2,
		AllowedOrigins:   []string{"http://localhost:5173"},
	}
	rl := middleware.NewRateLimiter(cfg.RateLimit)
	t.Cleanup(rl.Stop)
	return Setup(nil, batch.NewProcessor(nil, cfg.BatchConcurrency), rl, cfg, "test")
}

func extractRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(pdftest.Numbered(3))
	mw.WriteField("pages", "2")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pdf/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestSetup_PublicRoutes(t *testing.T) {
	r := newTestRouter(t, testSecret, 0)
	for _, path := range []string{"/", "/api/v1/health", "/api/docs", "/api/docs/openapi.yaml"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, w.Code)
		}
	}
}

func TestSetup_Auth(t *testing.T) {
	token, err := middleware.GenerateJWT("ops", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		secret   string
		token    string
		wantCode int
	}{
		{"auth disabled", "", "", http.StatusOK},
		{"missing token", testSecret, "", http.StatusUnauthorized},
		{"valid token", testSecret, token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.secret, 0)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, extractRequest(t, tt.token))
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestSetup_RateLimit(t *testing.T) {
	r := newTestRouter(t, "", 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, extractRequest(t, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, extractRequest(t, ""))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", w.Code)
	}
}

func TestSetup_CORSExposesDownloadHeaders(t *testing.T) {
	r := newTestRouter(t, "", 0)
	req := extractRequest(t, "")
	req.Header.Set("Origin", "http://localhost:5173")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(strings.ToLower(got), "x-extraction-warnings") {
		t.Errorf("Access-Control-Expose-Headers = %q, want X-Extraction-Warnings listed", got)
	}
}
