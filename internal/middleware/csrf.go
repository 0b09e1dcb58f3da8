package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	// csrfCookieName은 CSRF 토큰을 보관하는 쿠키 이름.
	// 프런트엔드 JavaScript가 읽을 수 있도록 HttpOnly가 아니다.
	csrfCookieName = "csrf_token"

	// csrfHeaderName은 요청 헤더에서 CSRF 토큰을 읽을 때의 헤더 이름.
	csrfHeaderName = "X-CSRF-Token"
)

// CSRFConfig는 CSRF 미들웨어의 설정.
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware는 이중 제출 쿠키 방식의 CSRF 토큰 생성/검증 미들웨어를 반환한다.
// 안전한 메서드(GET, HEAD, OPTIONS)는 검증을 건너뛰고 토큰 쿠키를 설정한다.
// 상태 변경 메서드(POST, PUT, PATCH, DELETE)는 토큰 검증을 필수로 한다.
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			cookieToken, err := r.Cookie(csrfCookieName)
			if err != nil || cookieToken.Value == "" {
				slog.Warn("CSRF validation failed: missing cookie token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeCSRFFailure(w)
				return
			}

			headerToken := r.Header.Get(csrfHeaderName)
			if headerToken == "" {
				slog.Warn("CSRF validation failed: missing header token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeCSRFFailure(w)
				return
			}

			if cookieToken.Value != headerToken {
				slog.Warn("CSRF validation failed: token mismatch",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeCSRFFailure(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewCSRFTokenHandler는 CSRF 토큰 발급 엔드포인트의 핸들러를 반환한다.
// GET /api/csrf-token
// 기존 토큰 쿠키가 있으면 그것을 반환하고 없으면 새로 생성한다.
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			newToken, err := generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token",
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			token = newToken
			setCSRFCookie(w, token, config)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
}

// isSafeMethod는 상태를 변경하지 않는 메서드인지 반환한다.
func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// ensureCSRFCookie는 토큰 쿠키가 없으면 새로 설정한다.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, config CSRFConfig) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token",
			slog.String("error", err.Error()),
		)
		return
	}
	setCSRFCookie(w, token, config)
}

// setCSRFCookie는 토큰 쿠키를 설정한다.
func setCSRFCookie(w http.ResponseWriter, token string, config CSRFConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		HttpOnly: false,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeCSRFFailure는 403 응답을 통일 포맷으로 기록한다.
func writeCSRFFailure(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    "CSRF_FAILED",
		"message": "CSRF 토큰 검증에 실패했습니다.",
	})
}

// generateCSRFToken은 암호학적으로 안전한 토큰을 생성한다.
func generateCSRFToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
