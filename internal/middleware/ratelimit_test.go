package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/newsletter/internal/model"
)

func testRateLimiterConfig(generalBurst, writeBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    generalBurst,
		WriteRate:       1,
		WriteBurst:      writeBurst,
		CleanupInterval: 1 * time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveFrom(h http.Handler, method, remoteAddr string) *http.Response {
	req := httptest.NewRequest(method, "/subscribers", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

// --- GeneralMiddleware のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(5, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		if resp := serveFrom(handler, http.MethodGet, "192.0.2.1:1234"); resp.StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, resp.StatusCode, http.StatusOK)
		}
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		serveFrom(handler, http.MethodGet, "192.0.2.1:1234")
	}

	// 3回目はレート制限に引っかかる。ポートが異なっても同一クライアント扱い
	resp := serveFrom(handler, http.MethodGet, "192.0.2.1:5678")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}

	retrySeconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After header should be a number, got %q", resp.Header.Get("Retry-After"))
	}
	if retrySeconds < 1 {
		t.Errorf("Retry-After = %d, should be at least 1", retrySeconds)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != model.ErrCodeRateLimitExceeded {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimitExceeded)
	}
}

func TestRateLimitMiddleware_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	if resp := serveFrom(handler, http.MethodGet, "192.0.2.1:1"); resp.StatusCode != http.StatusOK {
		t.Errorf("client A first request: status = %d", resp.StatusCode)
	}
	if resp := serveFrom(handler, http.MethodGet, "192.0.2.1:1"); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("client A second request: status = %d, want 429", resp.StatusCode)
	}
	// クライアントBはクライアントAのレートに影響されない
	if resp := serveFrom(handler, http.MethodGet, "198.51.100.7:1"); resp.StatusCode != http.StatusOK {
		t.Errorf("client B first request: status = %d", resp.StatusCode)
	}
}

// --- WriteMiddleware のテスト ---

func TestWriteRateLimit_SkipsReadMethods(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(100, 1))
	defer rl.Stop()

	handler := rl.WriteMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		if resp := serveFrom(handler, http.MethodGet, "192.0.2.1:1"); resp.StatusCode != http.StatusOK {
			t.Errorf("GET %d: status = %d, want 200", i, resp.StatusCode)
		}
	}
	if rl.WriteLimiterCount() != 0 {
		t.Errorf("write limiter entries = %d, want 0 for read-only traffic", rl.WriteLimiterCount())
	}
}

func TestWriteRateLimit_LimitsWriteMethods(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rl := NewRateLimiter(testRateLimiterConfig(100, 1))
			defer rl.Stop()

			handler := rl.WriteMiddleware()(okHandler())

			if resp := serveFrom(handler, method, "192.0.2.1:1"); resp.StatusCode != http.StatusOK {
				t.Errorf("first request: status = %d, want 200", resp.StatusCode)
			}
			if resp := serveFrom(handler, method, "192.0.2.1:1"); resp.StatusCode != http.StatusTooManyRequests {
				t.Errorf("second request: status = %d, want 429", resp.StatusCode)
			}
		})
	}
}

func TestWriteRateLimit_IndependentFromGeneralLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	write := rl.WriteMiddleware()(okHandler())

	// General limitを使い果たしても書き込みリミッターはまだ使える
	serveFrom(general, http.MethodGet, "192.0.2.1:1")

	if resp := serveFrom(write, http.MethodPost, "192.0.2.1:1"); resp.StatusCode != http.StatusOK {
		t.Errorf("write should still be allowed: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// --- クリーンアップのテスト ---

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	cfg := testRateLimiterConfig(5, 5)
	cfg.CleanupInterval = 50 * time.Millisecond

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	serveFrom(rl.GeneralMiddleware()(okHandler()), http.MethodGet, "192.0.2.1:1")

	if rl.GeneralLimiterCount() == 0 {
		t.Fatal("expected at least one limiter entry")
	}

	// TTLはCleanupIntervalの2倍(100ms)。余裕を見て待つ
	deadline := time.Now().Add(2 * time.Second)
	for rl.GeneralLimiterCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if count := rl.GeneralLimiterCount(); count != 0 {
		t.Errorf("expected 0 limiter entries after cleanup, got %d", count)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	rl.Stop()
}

// --- 設定値のテスト ---

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralRate != 2.0 { // 120/60 = 2
		t.Errorf("GeneralRate = %f, want 2.0", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.WriteRate != 0.5 { // 30/60
		t.Errorf("WriteRate = %f, want 0.5", cfg.WriteRate)
	}
	if cfg.WriteBurst != 30 {
		t.Errorf("WriteBurst = %d, want 30", cfg.WriteBurst)
	}
}
