package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minsu/pcquote/internal/ai"
	"github.com/minsu/pcquote/internal/middleware"
)

// HealthChecker는 /health 엔드포인트가 의존 저장소의 생존을 확인하는 인터페이스.
// *sql.DB가 그대로 만족한다.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps는 NewRouter에 필요한 의존성을 모은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 계측
	MetricsHandler http.Handler

	// 인증
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 견적
	EstimateService EstimateServiceInterface

	// AI 채팅
	AIBackend ai.ChatBackend
	AIConfig  AIHandlerConfig
}

// NewRouter는 전체 API 엔드포인트의 라우팅과 미들웨어 체인을 구성한 chi.Router를 반환한다.
//
// 미들웨어 스택 실행 순서:
//
//	Recovery → Logging → SecurityHeaders → CORS → (CSRF) → (Session → RateLimit)
//
// /health와 /metrics는 API 미들웨어 체인 밖에 둔다.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 전 라우트 공통 미들웨어
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	estimateHandler := NewEstimateHandler(deps.EstimateService)
	aiHandler := NewAIHandler(deps.AIBackend, deps.AIConfig)

	// 생존 확인（컨테이너 헬스체크용）
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus 스크레이프
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		// 상태 변경 메서드는 전부 CSRF 토큰 검증을 거친다
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// CSRF 토큰 발급
		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// --- 인증 불필요 라우트 ---
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/auth/check", authHandler.Check)
		r.Post("/logout", authHandler.Logout)

		// --- 인증 필수 라우트 ---
		// 미들웨어 스택: Session → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			// 견적 관리
			r.Route("/estimate", func(r chi.Router) {
				r.Post("/", estimateHandler.Save)
				r.Get("/list", estimateHandler.List)
				r.Get("/gallery", estimateHandler.Gallery)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", estimateHandler.Get)
					r.Delete("/", estimateHandler.Delete)
				})
			})

			// AI 채팅（업스트림 점유 시간이 길어 전용 레이트 리밋을 추가）
			r.With(deps.RateLimiter.ChatMiddleware()).Post("/ai/chat", aiHandler.Chat)
		})
	})

	return r
}
