package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher는 단방향 해시 생성과 검증 프리미티브의 인터페이스.
// 테스트에서 bcrypt 비용 없이 대체 구현을 쓸 수 있도록 분리한다.
type PasswordHasher interface {
	// Hash는 평문 비밀번호의 해시를 생성한다.
	Hash(password string) (string, error)
	// Compare는 해시와 평문 비밀번호의 일치 여부를 반환한다.
	Compare(hash, password string) bool
}

// BcryptHasher는 bcrypt를 사용하는 PasswordHasher 구현.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher는 기본 비용의 BcryptHasher를 생성한다.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash는 bcrypt 해시를 생성한다.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare는 해시와 평문 비밀번호의 일치 여부를 반환한다.
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
