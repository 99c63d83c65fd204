package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/postmock/internal/config"
	"github.com/hitoshi/postmock/internal/database"
	"github.com/hitoshi/postmock/internal/export"
	"github.com/hitoshi/postmock/internal/handler"
	"github.com/hitoshi/postmock/internal/intake"
	"github.com/hitoshi/postmock/internal/logger"
	"github.com/hitoshi/postmock/internal/metrics"
	"github.com/hitoshi/postmock/internal/middleware"
	"github.com/hitoshi/postmock/internal/preview"
	"github.com/hitoshi/postmock/internal/repository"
	"github.com/hitoshi/postmock/internal/security"
	"github.com/hitoshi/postmock/internal/studio"
	"github.com/hitoshi/postmock/internal/subscription"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再設定
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("subscription_configured", cfg.SubscriptionConfigured()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, migrateDirection(args))
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// application は配線済みの依存関係を保持する。
type application struct {
	router      http.Handler
	session     *studio.Session
	rateLimiter *middleware.RateLimiter
	registry    *prometheus.Registry
}

// close はバックグラウンドのゴルーチンを停止する。
func (a *application) close() {
	a.rateLimiter.Stop()
}

// newApplication は設定から全コンポーネントを組み立てる。
// dbがnilの場合、ニュースレター登録は呼び出し時に失敗する。
func newApplication(cfg *config.Config, db *sql.DB) *application {
	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 2. 画像取り込みとプレビュー
	ssrfGuard := security.NewSSRFGuard()
	loader := intake.NewLoader(cfg.ImageMaxSize, cfg.AvatarFetchTimeout, ssrfGuard)
	renderer := preview.NewRenderer()

	// 3. エクスポート
	barrier := export.NewBarrier()
	pipeline := export.NewPipeline(barrier, export.NewRasterizer(cfg.ExportScale),
		export.WithReadyTimeout(cfg.ExportReadyTimeout),
		export.WithObserver(collector),
	)

	opts := []studio.Option{
		studio.WithHiddenPlatforms(cfg.ExposeHiddenPlatforms),
		studio.WithIntakeObserver(collector),
	}
	if cfg.ExportDir != "" {
		opts = append(opts, studio.WithSaver(export.NewDirSaver(cfg.ExportDir)))
	}
	session := studio.NewSession(loader, renderer, pipeline, barrier, opts...)

	// 4. ニュースレター登録
	var store repository.SubscriberRepository = repository.UnconfiguredSubscriberRepo{}
	var healthChecker handler.HealthChecker
	if db != nil {
		store = repository.NewPostgresSubscriberRepo(db)
		healthChecker = db
	}
	subClient := subscription.NewClient(store, collector)

	// 5. ルーター
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitSubscribe),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:              slog.Default(),
		StatusRecorder:      collector,
		CORSAllowedOrigin:   cfg.CORSAllowedOrigin,
		RateLimiter:         rateLimiter,
		HealthChecker:       healthChecker,
		MetricsHandler:      metrics.Handler(reg),
		DraftService:        session,
		MaxUploadSize:       cfg.ImageMaxSize,
		IncludeHidden:       cfg.ExposeHiddenPlatforms,
		SubscriptionService: subClient,
	})

	return &application{
		router:      router,
		session:     session,
		rateLimiter: rateLimiter,
		registry:    reg,
	}
}

// runServe はAPIサーバーモードで起動する。
// DATABASE_URLが設定されていればDB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続（任意）
	var db *sql.DB
	if cfg.SubscriptionConfigured() {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			// 登録時に再接続を試みるため、起動は継続する
			slog.Warn("database is not reachable; subscriptions will fail until it recovers",
				slog.String("error", err.Error()),
			)
		} else {
			slog.Info("database connection established")
		}
		cancel()
	} else {
		slog.Warn("DATABASE_URL is not set; newsletter subscriptions are disabled")
	}

	// 2. 依存関係の組み立て
	app := newApplication(cfg, db)
	defer app.close()

	// 3. デフォルトのプロフィール画像を非同期に取得
	app.session.LoadDefaultProfile(ctx, cfg.DefaultAvatarURL)

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// directionがdownの場合は最新のマイグレーションを1つ取り消し、それ以外は未適用分を全て適用する。
func runMigrate(cfg *config.Config, direction string) error {
	if !cfg.SubscriptionConfigured() {
		return errors.New("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.String("direction", direction),
	)

	var err error
	if direction == "down" {
		err = database.RollbackMigration(cfg.DatabaseURL)
	} else {
		err = database.RunMigrations(cfg.DatabaseURL)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.Version(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
