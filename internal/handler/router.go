package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/newsletter/internal/metrics"
	"github.com/hitoshi/newsletter/internal/middleware"
	"github.com/hitoshi/newsletter/internal/newsletter"
	"github.com/hitoshi/newsletter/internal/subscriber"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler

	HealthChecker HealthChecker

	SubscriberService SubscriberServiceInterface
	NewsletterService NewsletterServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Metrics → Recovery → StripSlashes → SecurityHeaders → CORS
//
// /healthと/metricsはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.StripSlashes)
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	subHandler := NewSubscriberHandler(deps.SubscriberService, collector)
	nlHandler := NewNewsletterHandler(deps.NewsletterService, collector)

	// --- 運用エンドポイント ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker).Health)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- リソースAPI ---
	// ミドルウェアスタック: RateLimit(General) → RateLimit(Write)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.WriteMiddleware())
		}

		// 購読者管理
		r.Route("/subscribers", func(r chi.Router) {
			r.Get("/", subHandler.ListSubscribers)
			r.Post("/", subHandler.CreateSubscriber)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", subHandler.GetSubscriber)
				r.Put("/", subHandler.UpdateSubscriber)
				r.Patch("/", subHandler.UpdateSubscriber)
				r.Delete("/", subHandler.DeleteSubscriber)

				// GET /subscribers/{id}/newsletters - 購読者ごとのニュースレター一覧
				r.Get("/newsletters", subHandler.ListSubscriberNewsletters)
			})
		})

		// ニュースレター管理
		r.Route("/newsletters", func(r chi.Router) {
			r.Get("/", nlHandler.ListNewsletters)
			r.Post("/", nlHandler.CreateNewsletter)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", nlHandler.GetNewsletter)
				r.Put("/", nlHandler.UpdateNewsletter)
				r.Patch("/", nlHandler.UpdateNewsletter)
				r.Delete("/", nlHandler.DeleteNewsletter)
				r.Get("/preview", nlHandler.PreviewNewsletter)
			})
		})
	})

	return r
}

// --- compile-time interface checks ---

var _ SubscriberServiceInterface = (*subscriber.Service)(nil)
var _ NewsletterServiceInterface = (*newsletter.Service)(nil)
var _ HealthChecker = (*sql.DB)(nil)
