package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/minsu/pcquote/internal/model"
)

// writeJSON은 지정 상태 코드와 본문을 JSON으로 기록한다.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeAPIError는 통일 에러 포맷으로 실패 응답을 기록한다.
// success:false에 코드/메시지/대처 방법을 함께 싣는다.
func writeAPIError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"code":    apiErr.Code,
		"message": apiErr.Message,
		"action":  apiErr.Action,
	})
}

// writeInternalError는 내부 에러의 통일 응답을 기록한다.
// 상세는 로그에만 남기고 사용자에게는 일반 메시지만 반환한다.
func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"code":    model.ErrCodeInternal,
		"message": "서버 내부 오류가 발생했습니다.",
		"action":  "잠시 후 다시 시도해 주세요.",
	})
}

// serviceErrorStatus는 서비스 계층의 APIError를 HTTP 상태 코드로 사상한다.
// APIError가 아닌 에러는 내부 에러로 취급한다.
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected service error", slog.String("error", err.Error()))
		writeInternalError(w)
		return
	}

	status := http.StatusBadRequest
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeNotAuthenticated:
		status = http.StatusUnauthorized
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeNotFound:
		status = http.StatusNotFound
	}

	writeAPIError(w, status, apiErr)
}

// userBody는 응답에 싣는 사용자 표현. 비밀번호 해시는 절대 포함하지 않는다.
func userBody(u *model.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.Name,
	}
}
