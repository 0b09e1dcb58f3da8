// Package config는 환경 변수 기반 설정을 제공한다.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AIMode는 채팅 게이트웨이의 업스트림 연동 방식을 나타낸다.
// 배포 시 한 번 결정되며 요청 단위로 바뀌지 않는다.
type AIMode string

const (
	// AIModeOpenAI는 완성 API 직접 호출 방식.
	AIModeOpenAI AIMode = "openai"
	// AIModeProxy는 내부 AI 서비스 프록시 방식.
	AIModeProxy AIMode = "proxy"
)

// Config는 애플리케이션 전체 설정을 보관한다.
// 기동 시 환경 변수에서 1회 읽어들이며 이후 불변으로 취급한다.
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// AI gateway
	AIMode                AIMode
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	OpenAIOrg             string
	OpenAIProject         string
	AIProxyURL            string
	AIProxyForwardSession bool
	AITimeout             time.Duration

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitChat    int

	// Audit（빈 문자열이면 기록 안 함）
	AuditFilePath string

	// 개발 편의용 시드 계정 생성 여부
	SeedTestUser bool

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load는 환경 변수에서 Config를 읽어들인다.
// .env 파일이 있으면 먼저 읽는다(이미 설정된 변수는 덮어쓰지 않는다).
// 필수 환경 변수가 빠져 있으면 에러를 반환한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)

	mode := AIMode(getEnvString("AI_MODE", string(AIModeOpenAI)))
	if mode != AIModeOpenAI && mode != AIModeProxy {
		return nil, fmt.Errorf("invalid AI_MODE: %q (want %q or %q)", mode, AIModeOpenAI, AIModeProxy)
	}
	cfg.AIMode = mode

	// API 키 누락은 기동 에러가 아니다. 게이트웨이가 호출 시점에
	// 구조화된 실패로 보고한다.
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = getEnvString("OPENAI_API_BASE", "https://api.openai.com")
	cfg.OpenAIModel = getEnvString("OPENAI_API_MODEL", "gpt-4o-mini")
	cfg.OpenAIOrg = os.Getenv("OPENAI_ORG")
	cfg.OpenAIProject = os.Getenv("OPENAI_PROJECT")
	cfg.AIProxyURL = os.Getenv("AI_PROXY_URL")
	cfg.AIProxyForwardSession = getEnvBool("AI_PROXY_FORWARD_SESSION", false)
	cfg.AITimeout = getEnvDuration("AI_TIMEOUT", 60*time.Second)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitChat = getEnvInt("RATE_LIMIT_CHAT", 10)

	cfg.AuditFilePath = getEnvString("AUDIT_FILE_PATH", "data/user_audit.tsv")
	cfg.SeedTestUser = getEnvBool("SEED_TEST_USER", false)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
