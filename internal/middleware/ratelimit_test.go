package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     2,
		GeneralBurst:    5,
		ChatRate:        1,
		ChatBurst:       2,
		CleanupInterval: time.Minute,
	}
}

func rateLimitedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	return req.WithContext(ContextWithUserID(req.Context(), userID))
}

func TestGeneralMiddleware_AllowsRequestsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handlerCallCount := 0
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// 버스트 이내의 5개 요청은 전부 통과한다
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, rateLimitedRequest("user-1"))

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestGeneralMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 버스트 소진
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, rateLimitedRequest("user-1"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-1"))

	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestGeneralMiddleware_LimitsArePerUser(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1의 버스트 소진
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, rateLimitedRequest("user-1"))
	}

	// user-2는 영향을 받지 않는다
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-2"))

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d for a different user", w.Result().StatusCode, http.StatusOK)
	}
}

func TestChatMiddleware_HasTighterLimitThanGeneral(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.ChatMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 채팅 버스트는 2
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, rateLimitedRequest("user-1"))
		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-1"))

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d after chat burst", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}

func TestRateLimiter_TracksLimiterCounts(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	chat := rl.ChatMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	general.ServeHTTP(httptest.NewRecorder(), rateLimitedRequest("user-1"))
	general.ServeHTTP(httptest.NewRecorder(), rateLimitedRequest("user-2"))
	chat.ServeHTTP(httptest.NewRecorder(), rateLimitedRequest("user-1"))

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("general limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
	if rl.ChatLimiterCount() != 1 {
		t.Errorf("chat limiter count = %d, want 1", rl.ChatLimiterCount())
	}
}
