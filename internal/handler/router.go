package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/postmock/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェック（nil可）
	HealthChecker HealthChecker

	// メトリクス（nilの場合/metricsを公開しない）
	MetricsHandler http.Handler

	// 下書き
	DraftService  DraftServiceInterface
	MaxUploadSize int64
	IncludeHidden bool

	// ニュースレター
	SubscriptionService SubscriptionServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Recovery → SecurityHeaders → CORS → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusRecorder))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	platformHandler := NewPlatformHandler(deps.IncludeHidden)
	draftHandler := NewDraftHandler(deps.DraftService, deps.MaxUploadSize)
	subHandler := NewSubscriptionHandler(deps.SubscriptionService)

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/platforms", platformHandler.ListPlatforms)
		r.Get("/api/themes/{platform}", platformHandler.GetTheme)

		r.Route("/api/draft", func(r chi.Router) {
			r.Get("/", draftHandler.GetDraft)
			r.Patch("/", draftHandler.UpdateDraft)
			r.Post("/export", draftHandler.ExportDraft)

			r.Route("/images/{slot}", func(r chi.Router) {
				r.Put("/", draftHandler.UploadImage)
				r.Delete("/", draftHandler.DeleteImage)
			})
		})

		r.Route("/api/subscriptions", func(r chi.Router) {
			// POST /api/subscriptions - 登録専用レート制限を追加
			r.With(deps.RateLimiter.SubscribeMiddleware()).Post("/", subHandler.Subscribe)
			r.Get("/state", subHandler.GetState)
		})
	})

	return r
}
