package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// TestRouterIntegration_SubscribeGroup はニュースレター登録ルートにだけ追加の制限がかかることを
// chi.Routerで検証する。
func TestRouterIntegration_SubscribeGroup(t *testing.T) {
	cfg := NewRateLimiterConfig(100, 1)
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	r := chi.NewRouter()
	r.Use(rl.GeneralMiddleware())

	r.Get("/api/platforms", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"twitter"})
	})
	r.With(rl.SubscribeMiddleware()).Post("/api/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	if resp := serveRoute(r, http.MethodPost, "/api/subscriptions"); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first subscribe: status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if resp := serveRoute(r, http.MethodPost, "/api/subscriptions"); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second subscribe: status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	// 他のルートは影響を受けない
	if resp := serveRoute(r, http.MethodGet, "/api/platforms"); resp.StatusCode != http.StatusOK {
		t.Errorf("platforms: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// TestRouterIntegration_RealIPKeysLimiter はX-Forwarded-ForのIPでレート制限されることを検証する。
func TestRouterIntegration_RealIPKeysLimiter(t *testing.T) {
	cfg := NewRateLimiterConfig(100, 5)
	cfg.GeneralBurst = 1
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(rl.GeneralMiddleware())
	r.Get("/api/draft", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/draft", nil)
		req.RemoteAddr = "10.0.0.1:8080"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	if got := send("203.0.113.1"); got != http.StatusOK {
		t.Errorf("first client: status = %d, want %d", got, http.StatusOK)
	}
	// 同じプロキシ経由でも別クライアントとして扱う
	if got := send("203.0.113.2"); got != http.StatusOK {
		t.Errorf("second client: status = %d, want %d", got, http.StatusOK)
	}
	if got := send("203.0.113.1"); got != http.StatusTooManyRequests {
		t.Errorf("first client again: status = %d, want %d", got, http.StatusTooManyRequests)
	}
}

func serveRoute(h http.Handler, method, path string) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}
