package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware는 panic 발생 시 프로세스 크래시를 막고
// 스택 트레이스를 노출하지 않는 일반 메시지의 500 응답을 반환하는
// 미들웨어를 생성한다. 상세 내용은 로그에만 남긴다.
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"success":false,"code":"INTERNAL_ERROR","message":"서버 내부 오류가 발생했습니다."}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
