package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/injexpro/internal/auth"
	"github.com/hitoshi/injexpro/internal/catalog"
	"github.com/hitoshi/injexpro/internal/checklist"
	"github.com/hitoshi/injexpro/internal/config"
	"github.com/hitoshi/injexpro/internal/database"
	"github.com/hitoshi/injexpro/internal/handler"
	"github.com/hitoshi/injexpro/internal/logger"
	"github.com/hitoshi/injexpro/internal/metrics"
	"github.com/hitoshi/injexpro/internal/middleware"
	"github.com/hitoshi/injexpro/internal/repository"
	"github.com/hitoshi/injexpro/internal/security"
	"github.com/hitoshi/injexpro/internal/worker/cleanup"
)

// startupPingTimeout は起動時のデータベース疎通確認のタイムアウト。
const startupPingTimeout = 5 * time.Second

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

	// 3. 設定のログレベルで再設定する
	logger.SetupDefault(w, cfg.SlogLevel())

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.Execute()
}

// application はserveモードで組み立てた依存関係を保持する。
type application struct {
	handler     http.Handler
	checklist   *checklist.Service
	rateLimiter *middleware.RateLimiter
	db          *sql.DB
}

// newApplication は設定に従って全依存関係をワイヤリングする。
// DATABASE_URLが未設定の場合、参照データは同梱データ、完了記録はメモリ上に保持する。
func newApplication(cfg *config.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer, log *slog.Logger) (*application, error) {
	// 1. メトリクス
	collector := metrics.NewCollector(reg)

	// 2. DB接続
	db, err := openDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	// 3. リポジトリの初期化
	var (
		procedureRepo    repository.ProcedureRepository    = repository.OfflineProcedureRepo{}
		complicationRepo repository.ComplicationRepository = repository.OfflineComplicationRepo{}
		recordRepo       repository.ChecklistRecordRepository
		sessionRepo      repository.SessionRepository
		healthChecker    handler.HealthChecker
	)
	if db != nil {
		procedureRepo = repository.NewPostgresProcedureRepo(db)
		complicationRepo = repository.NewPostgresComplicationRepo(db)
		recordRepo = repository.NewPostgresChecklistRecordRepo(db)
		sessionRepo = repository.NewPostgresSessionRepo(db)
		healthChecker = handler.NewDatabaseHealthChecker(db)
	} else {
		log.Warn("DATABASE_URL is not set; serving bundled reference data and keeping checklist records in memory")
		recordRepo = repository.NewMemoryChecklistRecordRepo()
	}

	// 4. 認証
	codec := auth.NewCredentialCodec(cfg.SessionSecret, cfg.SessionTTL())
	var (
		authenticator auth.Authenticator
		resolver      auth.SessionResolver
	)
	switch cfg.AuthMode {
	case config.AuthModeProvider:
		client := auth.NewGoTrueClient(auth.GoTrueConfig{
			BaseURL: cfg.AuthProviderURL,
			APIKey:  cfg.AuthProviderAPIKey,
			Timeout: cfg.AuthProviderTimeout,
		})
		provider := auth.NewProviderAuthenticator(client, sessionRepo, cfg.SessionTTL(), log)
		authenticator = provider
		resolver = provider
	default:
		authenticator = auth.NewLocalAuthenticator()
	}
	authService := auth.NewService(authenticator, codec, resolver, collector, log)

	// 5. ドメインサービスの初期化
	catalogService := catalog.NewService(
		procedureRepo, complicationRepo, security.NewReferenceSanitizer(), collector, log,
	)

	def, err := checklist.LoadDefinition(cfg.ChecklistDefinitionPath)
	if err != nil {
		closeDatabase(db)
		return nil, err
	}
	checklistService := checklist.NewService(
		checklist.ServiceConfig{SessionTTL: cfg.ChecklistSessionTTL},
		def,
		checklist.NewRepositoryWriter(recordRepo, collector),
		recordRepo,
		collector,
		log,
	)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitSignIn),
	)
	cookie := auth.CookieConfig{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain}

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		StatusRecorder:    collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig:        middleware.CSRFConfig{CookieSecure: cfg.CookieSecure, CookieDomain: cfg.CookieDomain},
		RateLimiter:       rateLimiter,
		LoginURL:          cfg.LoginURL(),
		TrustProxy:        cfg.TrustProxy,

		HealthChecker:  healthChecker,
		MetricsHandler: metrics.Handler(gatherer),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			EntryURL:     cfg.BaseURL + "/",
			DashboardURL: cfg.DashboardURL(),
			Cookie:       cookie,
		},

		CatalogService:   catalogService,
		ChecklistService: checklistService,
	})

	log.Info("application wired",
		slog.String("auth_mode", authService.Mode()),
		slog.Bool("database", db != nil),
		slog.Int("checklist_definition_version", def.Version),
	)

	return &application{
		handler:     router,
		checklist:   checklistService,
		rateLimiter: rateLimiter,
		db:          db,
	}, nil
}

// Close はバックグラウンド処理を停止し、DB接続を閉じる。
func (a *application) Close() {
	a.checklist.Stop()
	a.rateLimiter.Stop()
	closeDatabase(a.db)
}

// openDatabase はDATABASE_URLが設定されている場合にDB接続を開く。
// 未設定の場合はnilを返す。
// ローカルモードでは疎通できなくても起動を続け、参照データはフォールバックで応答する。
func openDatabase(cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := database.Ping(context.Background(), db, startupPingTimeout); err != nil {
		if cfg.AuthMode == config.AuthModeProvider {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Warn("database is unreachable; reference data will fall back to bundled data",
			slog.String("error", err.Error()),
		)
		return db, nil
	}

	log.Info("database connection established")
	return db, nil
}

func closeDatabase(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. 依存関係の構築
	app, err := newApplication(cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, slog.Default())
	if err != nil {
		return err
	}
	defer app.Close()

	// 2. 放置チェックリストの破棄を開始
	app.checklist.Start()

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、期限切れセッションのクリーンアップを定期実行する。
// metricsAddrが指定された場合は/metricsを別ポートで公開する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config, metricsAddr string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("worker requires DATABASE_URL")
	}

	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if err := database.Ping(context.Background(), db, startupPingTimeout); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	cleanupJob := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), collector, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	// 3. メトリクスサーバーの起動
	if metricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              metricsAddr,
			Handler:           metrics.SetupMetricsRoute(prometheus.DefaultGatherer),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", slog.String("error", err.Error()))
			}
		}()
		defer metricsServer.Close()
	}

	slog.Info("worker starting",
		slog.Duration("session_cleanup_interval", cfg.SessionCleanupInterval),
	)

	// クリーンアップジョブをメインgoroutineで実行（ブロッキング）
	cleanupJob.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// rollbackが正の場合はその数だけ巻き戻し、それ以外は未適用のマイグレーションを全て適用する。
func runMigrate(cfg *config.Config, rollback int) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migrate requires DATABASE_URL")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Int("rollback", rollback),
	)

	if rollback > 0 {
		if err := database.RollbackMigrations(cfg.DatabaseURL, rollback); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
	} else if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
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
func runHealthcheck(url string) error {
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

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
