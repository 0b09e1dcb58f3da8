// Package audit는 가입 사용자의 추가 전용 감사 기록을 제공한다.
// 탭 구분 형식(id, username, name, password_hash, role) 한 줄을
// 플랫 파일에 덧붙인다. 쓰기 실패는 호출자에게 전파하되 호출자가 무시한다.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/minsu/pcquote/internal/model"
)

// FileRecorder는 파일 기반 감사 기록 구현.
// 프로세스 내 동시 가입 간 줄 섞임을 막기 위해 뮤텍스로 직렬화한다.
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

// NewFileRecorder는 지정 경로에 기록하는 FileRecorder를 생성한다.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// RecordUser는 사용자 한 명의 감사 줄을 파일 끝에 덧붙인다.
// 디렉터리가 없으면 생성한다.
func (r *FileRecorder) RecordUser(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
		user.ID, user.Username, user.Name, user.PasswordHash, user.Role)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append audit line: %w", err)
	}

	return nil
}
