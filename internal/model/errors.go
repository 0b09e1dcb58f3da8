// Package model은 도메인 모델을 정의한다.
package model

import "fmt"

// APIError는 통일 에러 포맷을 나타낸다.
// UI에 표시할 원인 카테고리와 대처 방법을 포함한다.
type APIError struct {
	Code     string // 에러 코드
	Message  string // 에러 메시지
	Category string // 카테고리: auth, validation, estimate, ai, system
	Action   string // 사용자 대처 방법
}

// Error는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 정의된 에러 코드
const (
	ErrCodeDuplicateUsername   = "DUPLICATE_USERNAME"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeNotAuthenticated    = "NOT_AUTHENTICATED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeSerializationFailed = "SERIALIZATION_FAILED"
	ErrCodeUpstreamConfig      = "UPSTREAM_CONFIG"
	ErrCodeUpstreamFailure     = "UPSTREAM_FAILURE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewDuplicateUsernameError는 아이디 중복 에러를 생성한다.
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "이미 사용 중인 아이디입니다.",
		Category: "auth",
		Action:   "다른 아이디로 다시 시도해 주세요.",
	}
}

// NewInvalidCredentialsError는 인증 실패 에러를 생성한다.
// 아이디 미존재와 비밀번호 불일치를 구분하지 않는다. 계정 존재 여부 추측을 막기 위함이다.
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "아이디 또는 비밀번호가 올바르지 않습니다.",
		Category: "auth",
		Action:   "아이디와 비밀번호를 확인해 주세요.",
	}
}

// NewNotAuthenticatedError는 로그인 필요 에러를 생성한다.
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthenticated,
		Message:  "로그인이 필요합니다.",
		Category: "auth",
		Action:   "로그인 후 다시 시도해 주세요.",
	}
}

// NewForbiddenError는 소유권 불일치 에러를 생성한다.
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "해당 리소스에 대한 권한이 없습니다.",
		Category: "auth",
		Action:   "본인이 만든 항목만 삭제할 수 있습니다.",
	}
}

// NewNotFoundError는 리소스 미존재 에러를 생성한다.
func NewNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("요청한 리소스를 찾을 수 없습니다: %s", id),
		Category: "estimate",
		Action:   "ID를 확인해 주세요.",
	}
}

// NewValidationError는 요청 본문 형식 오류 에러를 생성한다.
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("요청 형식이 올바르지 않습니다: %s", reason),
		Category: "validation",
		Action:   "요청 본문을 확인해 주세요.",
	}
}

// NewSerializationError는 견적 페이로드 직렬화 실패 에러를 생성한다.
func NewSerializationError() *APIError {
	return &APIError{
		Code:     ErrCodeSerializationFailed,
		Message:  "견적 데이터를 저장 형식으로 변환하지 못했습니다.",
		Category: "estimate",
		Action:   "견적 데이터를 확인한 후 다시 시도해 주세요.",
	}
}
