package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/kakeizu/internal/metrics"
	"github.com/hitoshi/kakeizu/internal/middleware"
)

// HealthChecker はDB接続の死活確認インターフェース。
// *sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface

	// ツリー
	TreeService TreeServiceInterface

	// メンバー
	MemberService  MemberServiceInterface
	MaxUploadBytes int64

	// ファイル
	FileService FileServiceInterface

	// メトリクス（nilの場合は計測なしで動作する）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → Recovery → Logging → Metrics
//
// 読み取り系（ツリー一覧、メンバー一覧、ファイル取得）は認証不要、
// 変更系（ツリー作成、メンバー作成）とGET /auth/meは
// AuthMiddleware → RateLimit(General)の内側に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, signupRecorderOrNil(deps.Metrics))
	treeHandler := NewTreeHandler(deps.TreeService)
	memberHandler := NewMemberHandler(deps.MemberService, uploadRecorderOrNil(deps.Metrics), deps.MaxUploadBytes)
	fileHandler := NewFileHandler(deps.FileService)

	// --- 認証不要のルート ---

	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)

	r.Get("/api/trees", treeHandler.ListTrees)
	r.Get("/api/members", memberHandler.ListMembers)
	r.Get("/api/members/{id}/files/{fileId}", fileHandler.Download)

	r.Get("/healthz", newHealthzHandler(deps.HealthChecker))

	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/auth/me", authHandler.Me)
		r.Post("/api/trees", treeHandler.CreateTree)

		// メンバー作成はアップロードを伴うため専用レート制限を追加
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.UploadMiddleware()).Post("/api/members", memberHandler.CreateMember)
		} else {
			r.Post("/api/members", memberHandler.CreateMember)
		}
	})

	return r
}

// newHealthzHandler はDB疎通を含むヘルスチェックハンドラーを返す。
func newHealthzHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check: database ping failed", slog.String("error", err.Error()))
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

// signupRecorderOrNil はnilインターフェース内の型付きnilを避けるためのヘルパー。
func signupRecorderOrNil(c metrics.MetricsCollector) SignupRecorder {
	if c == nil {
		return nil
	}
	return c
}

// uploadRecorderOrNil はnilインターフェース内の型付きnilを避けるためのヘルパー。
func uploadRecorderOrNil(c metrics.MetricsCollector) UploadRecorder {
	if c == nil {
		return nil
	}
	return c
}
