// Package middleware는 HTTP 미들웨어를 제공한다.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/minsu/pcquote/internal/model"
)

// SessionCookieName은 세션 식별자를 보관하는 HTTP Only 쿠키 이름.
const SessionCookieName = "session_id"

// contextKey는 컨텍스트에 값을 저장하기 위한 타입 안전 키.
type contextKey string

// userIDContextKey는 요청 컨텍스트에 사용자 ID를 저장하는 키.
var userIDContextKey = contextKey("user_id")

// sessionIDContextKey는 요청 컨텍스트에 세션 ID를 저장하는 키.
// 프록시 방식 채팅 게이트웨이가 세션 문맥 전달에 사용한다.
var sessionIDContextKey = contextKey("session_id")

// SessionFinder는 세션 조회에 필요한 인터페이스.
// repository.SessionRepository의 부분 집합으로 정의한다.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware는 HTTP Only 쿠키에서 세션을 읽어 유효성을 검증하는
// 미들웨어를 반환한다. 인증된 사용자 ID와 세션 ID를 요청 컨텍스트에 주입한다.
// 미인증 요청에는 401과 NOT_AUTHENTICATED 본문을 반환한다.
// 세션 저장소 장애는 요청 단위 치명 에러(500)로 취급하며 복구하지 않는다.
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeNotAuthenticated(w)
				return
			}

			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if session == nil {
				writeNotAuthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			ctx = context.WithValue(ctx, sessionIDContextKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeNotAuthenticated는 401 응답을 통일 포맷으로 기록한다.
func writeNotAuthenticated(w http.ResponseWriter) {
	apiErr := model.NewNotAuthenticatedError()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"success":false,"code":%q,"message":%q}`, apiErr.Code, apiErr.Message)
}

// UserIDFromContext는 요청 컨텍스트에서 사용자 ID를 가져온다.
// 세션 미들웨어를 통과한 요청에서만 유효하다.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// SessionIDFromContext는 요청 컨텍스트에서 세션 ID를 가져온다.
func SessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("session ID not found in context")
	}
	return sessionID, nil
}

// ContextWithUserID는 컨텍스트에 사용자 ID를 주입한다.
// 테스트 등 미들웨어 밖에서의 컨텍스트 생성에 사용한다.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithSessionID는 컨텍스트에 세션 ID를 주입한다.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}
