package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tsubuyaki/internal/metrics"
	"github.com/hitoshi/tsubuyaki/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenParser       middleware.TokenParser
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// サービス
	UserService     UserServiceInterface
	TimelineService TimelineServiceInterface
	SocialService   SocialServiceInterface

	// ヘルスチェック
	HealthCheck func() error
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Metrics → Logging（appで適用） → [Auth → RateLimit(General)]
//
// 登録・ログイン・/health・/metricsは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}

	userHandler := NewUserHandler(deps.UserService, metricsRecorderOrNil(deps.Collector))
	timelineHandler := NewTimelineHandler(deps.TimelineService)
	socialHandler := NewSocialHandler(deps.SocialService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthCheck))

	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// アカウント登録（登録専用のIP単位レート制限を追加）とログイン
	r.With(deps.RateLimiter.SignUpMiddleware()).Post("/api/users", userHandler.SignUp)
	r.Post("/api/users/signin", userHandler.SignIn)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenParser))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/users", func(r chi.Router) {
			// top10は/{id}より先に登録する（パスの衝突回避）
			r.Get("/top10", socialHandler.Top10)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.EditUser)

				r.Get("/tweets", timelineHandler.ListTweets)
				r.Get("/likes", timelineHandler.ListLikes)
				r.Get("/replies", timelineHandler.ListReplies)
				r.Get("/followings", socialHandler.ListFollowings)
				r.Get("/followers", socialHandler.ListFollowers)
			})
		})
	})

	return r
}

// metricsRecorderOrNil はMetricsCollectorをMetricsRecorderに変換する。
// nilインターフェースの二重ラップを避ける。
func metricsRecorderOrNil(c metrics.MetricsCollector) MetricsRecorder {
	if c == nil {
		return nil
	}
	return c
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// checkがエラーを返した場合は503を返す。
func newHealthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
