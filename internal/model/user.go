// Package model은 도메인 모델을 정의한다.
package model

import "time"

// DefaultRole은 가입 시 부여되는 단일 역할. 역할 체계는 이 값 하나뿐이다.
const DefaultRole = "ROLE_USER"

// User는 서비스 이용 사용자를 나타낸다.
// PasswordHash는 외부로 직렬화하지 않는다. 응답에는 ID/Username/Name만 내보낸다.
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Session은 사용자의 로그인 세션을 나타낸다.
// 하나의 세션은 정확히 한 명의 사용자에 묶인다.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
