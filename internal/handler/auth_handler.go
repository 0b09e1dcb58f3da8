// Package handler는 HTTP 핸들러를 제공한다.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minsu/pcquote/internal/middleware"
	"github.com/minsu/pcquote/internal/model"
)

// AuthServiceInterface는 인증 핸들러가 필요로 하는 서비스 인터페이스.
type AuthServiceInterface interface {
	Register(ctx context.Context, username, name, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	CreateSession(ctx context.Context, userID string) (*model.Session, error)
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig는 인증 핸들러의 설정.
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // 세션 쿠키의 유효 기간(초)
}

// AuthHandler는 회원가입/로그인/세션 관리의 HTTP 핸들러.
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler는 AuthHandler를 생성한다.
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// registerRequest는 회원가입 요청 본문.
type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginRequest는 로그인 요청 본문.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register는 신규 사용자를 등록한다.
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewValidationError("본문이 JSON이 아닙니다"))
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeAPIError(w, http.StatusBadRequest, model.NewValidationError("username과 password는 필수입니다"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "회원가입 완료",
		"user":    userBody(user),
	})
}

// Login은 자격 증명을 검증하고 새 세션을 발급한다.
// 기존 세션이 쿠키에 실려 왔다면 새 세션 발급 전에 반드시 파기한다.
// 세션 고정(session fixation) 공격을 막기 위한 순서다.
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewValidationError("본문이 JSON이 아닙니다"))
		return
	}

	// 기존 세션 파기
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to invalidate previous session",
				slog.String("error", logoutErr.Error()),
			)
			writeInternalError(w)
			return
		}
	}

	user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to create session", slog.String("error", err.Error()))
		writeInternalError(w)
		return
	}

	h.setSessionCookie(w, session.ID, h.config.SessionMaxAge)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "로그인 성공",
		"user":    userBody(user),
	})
}

// Check는 로그인 상태를 반환한다.
// 세션이 없거나 만료되었거나 사용자가 사라진 경우 모두 loggedIn:false이며 에러가 아니다.
// GET /api/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	user, err := h.service.GetCurrentUser(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to resolve session", slog.String("error", err.Error()))
		writeInternalError(w)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn": true,
		"user":     userBody(user),
	})
}

// Logout은 세션을 파기하고 쿠키를 지운다.
// 파기 실패는 로그만 남긴다. 쿠키는 어느 경우든 지우고 성공으로 응답한다.
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
		}
	}

	h.setSessionCookie(w, "", -1)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "로그아웃 완료",
	})
}

// setSessionCookie는 세션 쿠키를 설정하거나(maxAge>0) 지운다(maxAge<0).
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
