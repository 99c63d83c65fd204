package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// serveFrom は指定したクライアントIPからのリクエストとしてhandlerを呼び出す。
func serveFrom(handler http.Handler, method, ip string) *http.Response {
	req := httptest.NewRequest(method, "/api/test", nil)
	req.RemoteAddr = ip + ":54321"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Result()
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// --- GeneralMiddleware (API全般) のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2, // 2 req/sec
		GeneralBurst:    5, // バースト5
		SubscribeRate:   1,
		SubscribeBurst:  10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handlerCallCount := 0
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		resp := serveFrom(handler, http.MethodGet, "192.0.2.1")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, resp.StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    2,
		SubscribeRate:   1,
		SubscribeBurst:  10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		if resp := serveFrom(handler, http.MethodGet, "192.0.2.2"); resp.StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, resp.StatusCode, http.StatusOK)
		}
	}

	// 3回目はレート制限に引っかかる
	if resp := serveFrom(handler, http.MethodGet, "192.0.2.2"); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfterHeader(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		SubscribeRate:   1,
		SubscribeBurst:  10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	serveFrom(handler, http.MethodGet, "192.0.2.3")
	resp := serveFrom(handler, http.MethodGet, "192.0.2.3")

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("expected Retry-After header to be present")
	}
	retrySeconds, err := strconv.Atoi(retryAfter)
	if err != nil {
		t.Errorf("Retry-After header should be a number, got %q", retryAfter)
	}
	if retrySeconds < 1 {
		t.Errorf("Retry-After = %d, should be at least 1", retrySeconds)
	}
}

func TestRateLimitMiddleware_IsolatesClientRateLimits(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		SubscribeRate:   1,
		SubscribeBurst:  10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	if resp := serveFrom(handler, http.MethodGet, "198.51.100.1"); resp.StatusCode != http.StatusOK {
		t.Errorf("client A first request: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if resp := serveFrom(handler, http.MethodGet, "198.51.100.1"); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("client A second request: status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	// クライアントBはクライアントAのレートに影響されない
	if resp := serveFrom(handler, http.MethodGet, "198.51.100.2"); resp.StatusCode != http.StatusOK {
		t.Errorf("client B first request: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// TestRateLimitMiddleware_IgnoresSourcePort は同一IPの異なるポートを同じクライアントとして扱うことを検証する。
func TestRateLimitMiddleware_IgnoresSourcePort(t *testing.T) {
	cfg := NewRateLimiterConfig(1, 1)
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	req1 := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req1.RemoteAddr = "192.0.2.50:1000"
	handler.ServeHTTP(httptest.NewRecorder(), req1)

	req2 := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req2.RemoteAddr = "192.0.2.50:2000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req2)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}

// --- SubscribeMiddleware (ニュースレター登録) のテスト ---

func TestSubscribeRateLimit_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    100,
		SubscribeRate:   0.1,
		SubscribeBurst:  2,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.SubscribeMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		if resp := serveFrom(handler, http.MethodPost, "192.0.2.10"); resp.StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, resp.StatusCode, http.StatusOK)
		}
	}

	resp := serveFrom(handler, http.MethodPost, "192.0.2.10")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	// 0.1 req/sec なので10秒
	if got := resp.Header.Get("Retry-After"); got != "10" {
		t.Errorf("Retry-After = %q, want %q", got, "10")
	}
}

func TestSubscribeRateLimit_IndependentFromGeneralLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		SubscribeRate:   1,
		SubscribeBurst:  5,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	subscribe := rl.SubscribeMiddleware()(okHandler())

	// API全般のバーストを使い切る
	serveFrom(general, http.MethodGet, "192.0.2.20")
	if resp := serveFrom(general, http.MethodGet, "192.0.2.20"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("general: status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}

	// ニュースレター登録は独立して通る
	if resp := serveFrom(subscribe, http.MethodPost, "192.0.2.20"); resp.StatusCode != http.StatusOK {
		t.Errorf("subscribe: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if rl.SubscribeLimiterCount() != 1 {
		t.Errorf("SubscribeLimiterCount = %d, want 1", rl.SubscribeLimiterCount())
	}
}

// --- 429レスポンスフォーマットのテスト ---

func TestRateLimitMiddleware_429ResponseIsJSON(t *testing.T) {
	cfg := NewRateLimiterConfig(60, 5)
	cfg.GeneralBurst = 1

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	serveFrom(handler, http.MethodGet, "192.0.2.30")
	resp := serveFrom(handler, http.MethodGet, "192.0.2.30")

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q, want %q", body.Code, "RATE_LIMIT_EXCEEDED")
	}
	if body.Message == "" {
		t.Error("expected 'message' field in error response")
	}
	if body.Category != "system" {
		t.Errorf("category = %q, want %q", body.Category, "system")
	}
}

// --- クリーンアップのテスト ---

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2,
		GeneralBurst:    5,
		SubscribeRate:   1,
		SubscribeBurst:  10,
		CleanupInterval: 50 * time.Millisecond,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	serveFrom(rl.GeneralMiddleware()(okHandler()), http.MethodGet, "192.0.2.40")
	serveFrom(rl.SubscribeMiddleware()(okHandler()), http.MethodPost, "192.0.2.40")

	if rl.GeneralLimiterCount() == 0 || rl.SubscribeLimiterCount() == 0 {
		t.Fatal("expected limiter entries")
	}

	// TTLは50ms * 2 = 100ms。200ms待てば削除されている
	time.Sleep(200 * time.Millisecond)

	if count := rl.GeneralLimiterCount(); count != 0 {
		t.Errorf("expected 0 general entries after cleanup, got %d", count)
	}
	if count := rl.SubscribeLimiterCount(); count != 0 {
		t.Errorf("expected 0 subscribe entries after cleanup, got %d", count)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	rl.Stop()
}

// --- ミドルウェアチェーンとの統合テスト ---

func TestRateLimitMiddleware_InChainWithCORS(t *testing.T) {
	cfg := NewRateLimiterConfig(60, 5)
	cfg.GeneralBurst = 2

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	// CORS -> RateLimit -> Handler
	handler := NewCORSMiddleware("http://localhost:3000")(rl.GeneralMiddleware()(okHandler()))

	for i := 0; i < 2; i++ {
		if resp := serveFrom(handler, http.MethodGet, "192.0.2.60"); resp.StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, resp.StatusCode, http.StatusOK)
		}
	}

	resp := serveFrom(handler, http.MethodGet, "192.0.2.60")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("request 3: status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	// 429でもCORSヘッダーが付与されていること
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}

// --- デフォルト設定値のテスト ---

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralRate != 2.0 { // 120/60 = 2
		t.Errorf("GeneralRate = %f, want 2.0", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.SubscribeRate == 0 {
		t.Error("SubscribeRate should not be 0")
	}
	if cfg.SubscribeBurst != 5 {
		t.Errorf("SubscribeBurst = %d, want 5", cfg.SubscribeBurst)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
