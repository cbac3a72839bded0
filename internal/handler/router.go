package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/injexpro/internal/middleware"
)

// signOutPath はCSRF検証から除外するサインアウトのパス。
const signOutPath = "/auth/signout"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusRecorder    middleware.HTTPStatusRecorder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	LoginURL          string
	TrustProxy        bool

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// リファレンスデータ
	CatalogService CatalogServiceInterface

	// チェックリスト
	ChecklistService ChecklistServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → CSRF → NoStore → Identity → RateLimit(General)
//
// 認証ルート（/auth/*）と運用ルートはIdentityより外側に配置する。
// /auth/*と保護ルートのレスポンスはキャッシュさせない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// サインアウトは自分のCookieを削除するだけなので、トークン切れでも必ず通す
	csrfConfig := deps.CSRFConfig
	csrfConfig.ExemptPaths = append([]string{signOutPath}, deps.CSRFConfig.ExemptPaths...)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// プロキシ配下ではレート制限のキーにクライアントの実IPを使う
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(csrfConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	checklistHandler := NewChecklistHandler(deps.ChecklistService)

	// --- 認証不要のルート ---

	r.Method(http.MethodGet, "/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.NewNoStoreMiddleware())

		// サインイン・サインアップはクライアントIP単位で制限する
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.SignInMiddleware())
			r.Post("/signin", authHandler.SignIn)
			r.Post("/signup", authHandler.SignUp)
		})
		r.Post("/signout", authHandler.SignOut)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: NoStore → Identity → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewNoStoreMiddleware())
		r.Use(middleware.NewIdentityMiddleware(deps.AuthService, deps.LoginURL))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// リファレンスデータ
		r.Get("/api/procedures", catalogHandler.ListProcedures)
		r.Get("/api/procedures/{slug}", catalogHandler.GetProcedure)
		r.Get("/api/complications", catalogHandler.ListComplications)
		r.Get("/api/resources", catalogHandler.ListResources)

		// チェックリスト
		r.Get("/api/checklist/items", checklistHandler.Items)
		r.Get("/api/checklist-records", checklistHandler.History)
		r.Route("/api/checklists", func(r chi.Router) {
			r.Post("/", checklistHandler.Open)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", checklistHandler.Get)
				r.Delete("/", checklistHandler.Close)
				r.Put("/items/{itemId}", checklistHandler.ToggleItem)
				r.Post("/submit", checklistHandler.Submit)
			})
		})
	})

	return r
}
