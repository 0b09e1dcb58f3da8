// Package app은 애플리케이션의 기동과 의존성 배선을 담당한다.
package app

import (
	"context"
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
	"golang.org/x/time/rate"

	"github.com/minsu/pcquote/internal/ai"
	"github.com/minsu/pcquote/internal/audit"
	"github.com/minsu/pcquote/internal/auth"
	"github.com/minsu/pcquote/internal/config"
	"github.com/minsu/pcquote/internal/database"
	"github.com/minsu/pcquote/internal/estimate"
	"github.com/minsu/pcquote/internal/handler"
	"github.com/minsu/pcquote/internal/logger"
	"github.com/minsu/pcquote/internal/metrics"
	"github.com/minsu/pcquote/internal/middleware"
	"github.com/minsu/pcquote/internal/model"
	"github.com/minsu/pcquote/internal/repository"
	"github.com/minsu/pcquote/internal/worker/cleanup"
)

// Init은 애플리케이션을 초기화한다.
// JSON 구조화 로그를 설정한 뒤 환경 변수에서 Config를 읽어들인다.
func Init(w io.Writer) (*config.Config, error) {
	// 설정 읽기 전에 로그를 쓸 수 있도록 로그부터 초기화한다
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run은 애플리케이션의 메인 엔트리 포인트.
// 커맨드라인 인자에서 서브커맨드를 해석해 대응 모드로 기동한다.
// args에는 os.Args[1:]를 전달한다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck는 경량 서브커맨드이므로 풀 초기화를 건너뛴다
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
		slog.String("ai_mode", string(cfg.AIMode)),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe는 API 서버 모드로 기동한다.
// DB 연결을 열고 전체 의존성을 배선한 뒤 HTTP 서버를 띄운다.
// SIGINT 또는 SIGTERM을 받으면 그레이스풀 셧다운한다.
func runServe(cfg *config.Config) error {
	// 1. DB 연결
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 리포지토리 초기화
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	estimateRepo := repository.NewPostgresEstimateRepo(db)

	// 3. 계측 초기화
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 도메인 서비스 초기화
	var recorder auth.UserRecorder
	if cfg.AuditFilePath != "" {
		recorder = audit.NewFileRecorder(cfg.AuditFilePath)
	}

	authService := auth.NewService(
		userRepo, sessionRepo, auth.NewBcryptHasher(), recorder, collector,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	estimateService := estimate.NewService(estimateRepo, collector)

	backend := newChatBackend(cfg, collector)

	// 5. 개발용 시드 계정（선택）
	if cfg.SeedTestUser {
		seedTestUser(authService)
	}

	// 6. 라우터 구성
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// config 값은 req/min 단위이므로 req/sec으로 변환한다
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.ChatRate = rate.Limit(float64(cfg.RateLimitChat) / 60.0)
	rateLimiterCfg.ChatBurst = cfg.RateLimitChat

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		HealthChecker:     db,
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		MetricsHandler: metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		EstimateService: estimateService,

		AIBackend: backend,
		AIConfig: handler.AIHandlerConfig{
			ProxyMode:      cfg.AIMode == config.AIModeProxy,
			ForwardSession: cfg.AIProxyForwardSession,
		},
	}

	router := handler.NewRouter(deps)

	// 7. 만료 세션 정리 워커（백그라운드）
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, slog.Default(), collector)
	go cleanupJob.RunPeriodic(workerCtx, cfg.SessionCleanupInterval)

	// 8. HTTP 서버 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // AI 업스트림 대기（최대 60초）보다 길게
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")
	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// newChatBackend는 설정에 따라 채팅 백엔드를 하나 선택해 생성한다.
// 선택은 기동 시 한 번이며 이후 요청 단위로 분기하지 않는다.
func newChatBackend(cfg *config.Config, collector *metrics.Collector) ai.ChatBackend {
	if cfg.AIMode == config.AIModeProxy {
		return ai.NewProxyBackend(ai.ProxyConfig{
			Endpoint:       cfg.AIProxyURL,
			ForwardSession: cfg.AIProxyForwardSession,
			Timeout:        cfg.AITimeout,
		}, collector)
	}

	return ai.NewOpenAIBackend(ai.OpenAIConfig{
		APIKey:       cfg.OpenAIAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		DefaultModel: cfg.OpenAIModel,
		Org:          cfg.OpenAIOrg,
		Project:      cfg.OpenAIProject,
		Timeout:      cfg.AITimeout,
	}, collector)
}

// seedTestUser는 개발 편의용 시드 계정을 생성한다.
// 이미 존재하면 아무것도 하지 않는다. 운영 환경에서는 끈다.
func seedTestUser(authService *auth.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := authService.Register(ctx, "test", "테스트 사용자", "test1234")
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateUsername {
			return
		}
		slog.Warn("failed to seed test user", slog.String("error", err.Error()))
		return
	}

	slog.Info("test user seeded", slog.String("username", "test"))
}

// runMigrate는 데이터베이스 마이그레이션을 실행한다.
// 적용되지 않은 마이그레이션을 순서대로 모두 적용한다.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck는 헬스체크를 실행한다.
// /health 엔드포인트에 HTTP 요청을 보내고 결과를 반환한다.
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

// maskDatabaseURL은 데이터베이스 URL의 인증 정보를 마스킹한다.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
