package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig는 레이트 제한 설정을 보관한다.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API 전반의 레이트(req/sec). 120/60 = 2 req/sec
	GeneralBurst    int           // API 전반의 버스트 크기
	ChatRate        rate.Limit    // AI 채팅의 레이트(req/sec). 업스트림 비용 보호용
	ChatBurst       int           // AI 채팅의 버스트 크기
	CleanupInterval time.Duration // 만료 엔트리 정리 주기
}

// DefaultRateLimiterConfig는 기본 레이트 제한 설정을 반환한다.
// API 전반 120 req/min/user, AI 채팅 10 req/min/user.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		ChatRate:        rate.Limit(10.0 / 60.0),
		ChatBurst:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter는 사용자별 리미터와 마지막 접근 시각을 보관한다.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter는 사용자별 레이트 제한을 관리한다.
// API 전반 제한과 AI 채팅 전용 제한의 두 종류를 제공한다.
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*userLimiter

	chatMu       sync.RWMutex
	chatLimiters map[string]*userLimiter

	stopCh chan struct{}
}

// NewRateLimiter는 새 RateLimiter를 생성한다.
// 백그라운드에서 만료 엔트리 정리를 시작한다.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*userLimiter),
		chatLimiters:    make(map[string]*userLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop은 정리용 백그라운드 고루틴을 멈춘다.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware는 API 전반의 레이트 제한 미들웨어를 반환한다.
// 요청 컨텍스트에 사용자 ID가 있어야 한다(SessionMiddleware 뒤에 배치).
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				writeNotAuthenticated(w)
				return
			}

			limiter := rl.getOrCreateGeneralLimiter(userID)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ChatMiddleware는 AI 채팅 전용 레이트 제한 미들웨어를 반환한다.
// 업스트림 호출 1건이 최대 60초를 점유하므로 전반 제한과 별도로 더 좁게 건다.
func (rl *RateLimiter) ChatMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				writeNotAuthenticated(w)
				return
			}

			limiter := rl.getOrCreateChatLimiter(userID)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.ChatRate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "chat"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount는 현재 관리 중인 API 전반 리미터 수를 반환한다.
// 테스트 및 메트릭 용도.
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// ChatLimiterCount는 현재 관리 중인 채팅 리미터 수를 반환한다.
// 테스트 및 메트릭 용도.
func (rl *RateLimiter) ChatLimiterCount() int {
	rl.chatMu.RLock()
	defer rl.chatMu.RUnlock()
	return len(rl.chatLimiters)
}

// getOrCreateGeneralLimiter는 사용자의 API 전반 리미터를 얻거나 만든다.
func (rl *RateLimiter) getOrCreateGeneralLimiter(userID string) *rate.Limiter {
	rl.generalMu.RLock()
	ul, exists := rl.generalLimiters[userID]
	rl.generalMu.RUnlock()

	if exists {
		rl.generalMu.Lock()
		ul.lastAccess = time.Now()
		rl.generalMu.Unlock()
		return ul.limiter
	}

	rl.generalMu.Lock()
	defer rl.generalMu.Unlock()

	// 더블 체크
	if ul, exists := rl.generalLimiters[userID]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(rl.config.GeneralRate, rl.config.GeneralBurst)
	rl.generalLimiters[userID] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// getOrCreateChatLimiter는 사용자의 채팅 리미터를 얻거나 만든다.
func (rl *RateLimiter) getOrCreateChatLimiter(userID string) *rate.Limiter {
	rl.chatMu.RLock()
	ul, exists := rl.chatLimiters[userID]
	rl.chatMu.RUnlock()

	if exists {
		rl.chatMu.Lock()
		ul.lastAccess = time.Now()
		rl.chatMu.Unlock()
		return ul.limiter
	}

	rl.chatMu.Lock()
	defer rl.chatMu.Unlock()

	// 더블 체크
	if ul, exists := rl.chatLimiters[userID]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(rl.config.ChatRate, rl.config.ChatBurst)
	rl.chatLimiters[userID] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop는 백그라운드에서 만료 엔트리를 주기적으로 정리한다.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup은 마지막 접근이 CleanupInterval의 2배를 넘은 엔트리를 삭제한다.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.generalMu.Lock()
	for userID, ul := range rl.generalLimiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.generalLimiters, userID)
		}
	}
	rl.generalMu.Unlock()

	rl.chatMu.Lock()
	for userID, ul := range rl.chatLimiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.chatLimiters, userID)
		}
	}
	rl.chatMu.Unlock()
}

// writeRateLimitResponse는 429 Too Many Requests 응답을 기록한다.
// Retry-After 헤더에는 토큰 1개가 보충될 때까지의 추정 초를 설정한다.
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    "rate_limit_exceeded",
		"message": "요청이 너무 잦습니다. 잠시 후 다시 시도해 주세요.",
	})
}
