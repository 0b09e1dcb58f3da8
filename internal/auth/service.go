// Package auth는 회원가입, 로그인, 세션 관리를 제공한다.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/minsu/pcquote/internal/model"
	"github.com/minsu/pcquote/internal/repository"
)

// namePolicy는 표시 이름에서 마크업을 제거하는 정책.
// 갤러리 화면에서 다른 사용자에게 노출되는 텍스트이므로 저장 전에 정리한다.
var namePolicy = bluemonday.StrictPolicy()

// UserRecorder는 가입 감사 기록의 인터페이스.
// 기록 실패는 가입 결과에 영향을 주지 않는다.
type UserRecorder interface {
	RecordUser(user *model.User) error
}

// LoginMetricsRecorder는 로그인 결과 계측의 인터페이스. nil일 수 있다.
type LoginMetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// ServiceConfig는 인증 서비스의 설정.
type ServiceConfig struct {
	SessionMaxAge int // 세션 유효 기간(초)
}

// Service는 인증에 관한 비즈니스 로직을 제공한다.
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      PasswordHasher
	recorder    UserRecorder
	metrics     LoginMetricsRecorder
	config      ServiceConfig
}

// NewService는 Service를 생성한다. recorder와 metrics는 nil일 수 있다.
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher PasswordHasher,
	recorder UserRecorder,
	metrics LoginMetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		recorder:    recorder,
		metrics:     metrics,
		config:      config,
	}
}

// Register는 신규 사용자를 생성한다.
// 아이디가 이미 존재하면 DUPLICATE_USERNAME 에러를 반환한다.
// 가입 성공 후 감사 기록을 시도하며, 기록 실패는 로그만 남기고 무시한다.
func (s *Service) Register(ctx context.Context, username, name, password string) (*model.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.NewDuplicateUsernameError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         strings.TrimSpace(namePolicy.Sanitize(name)),
		PasswordHash: hash,
		Role:         model.DefaultRole,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	// 감사 기록은 best-effort. 실패해도 가입은 이미 완료된 상태다.
	if s.recorder != nil {
		if recordErr := s.recorder.RecordUser(user); recordErr != nil {
			slog.Warn("failed to record user audit line",
				slog.String("user_id", user.ID),
				slog.String("error", recordErr.Error()),
			)
		}
	}

	return user, nil
}

// Login은 아이디와 비밀번호를 검증하고 사용자를 반환한다.
// 아이디 미존재와 비밀번호 불일치는 동일한 INVALID_CREDENTIALS 에러로 반환한다.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recordLoginFailure()
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.recordLoginFailure()
		return nil, model.NewInvalidCredentialsError()
	}

	s.recordLoginSuccess()
	return user, nil
}

func (s *Service) recordLoginSuccess() {
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
}

func (s *Service) recordLoginFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}

// CreateSession은 지정 사용자에 묶인 새 세션을 발급하고 영속화한다.
func (s *Service) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// GetCurrentUser는 세션 ID로 현재 사용자를 조회한다.
// 세션이 없거나 만료되었거나 사용자 레코드가 사라진 경우 모두 nil을 반환한다.
// "미로그인"은 정상 상태이며 에러가 아니다.
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	return user, nil
}

// Logout은 세션을 파기한다. 존재하지 않는 세션의 파기는 에러가 아니다.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// generateSessionID는 암호학적으로 안전한 세션 ID를 생성한다.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
