// Package repository는 데이터 영속화 인터페이스를 정의한다.
package repository

import (
	"context"

	"github.com/minsu/pcquote/internal/model"
)

// UserRepository는 사용자 데이터의 영속화 인터페이스.
type UserRepository interface {
	// FindByID는 지정 ID의 사용자를 조회한다. 없으면 nil을 반환한다.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername은 아이디로 사용자를 조회한다. 없으면 nil을 반환한다.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// ExistsByUsername은 해당 아이디의 사용자 존재 여부를 반환한다.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create는 사용자를 생성한다. username 유니크 제약 위반 시 에러를 반환한다.
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository는 세션 데이터의 영속화 인터페이스.
// 만료 정책은 이 계층이 소유한다. 읽기 경로에서 만료 세션을 걸러낸다.
type SessionRepository interface {
	// Create는 세션을 생성한다.
	Create(ctx context.Context, session *model.Session) error
	// FindByID는 지정 ID의 세션을 조회한다. 없거나 만료된 경우 nil을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID는 지정 ID의 세션을 삭제한다. 없는 세션 삭제는 에러가 아니다.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID는 지정 사용자의 전체 세션을 삭제한다.
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired는 만료 시각이 지난 세션을 일괄 삭제하고 삭제 건수를 반환한다.
	DeleteExpired(ctx context.Context) (int64, error)
}

// EstimateRepository는 견적 데이터의 영속화 인터페이스.
type EstimateRepository interface {
	// Create는 견적을 생성한다.
	Create(ctx context.Context, estimate *model.Estimate) error

	// FindByID는 지정 ID의 견적을 조회한다. 없으면 nil을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Estimate, error)

	// ListByOwnerID는 지정 소유자의 견적 목록을 생성 시각 내림차순으로 반환한다.
	ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Estimate, error)

	// ListAllWithOwner는 전체 견적을 소유자 표시 이름과 결합하여 반환한다.
	// 소유자 레코드가 없는 견적은 OwnerName이 빈 문자열로 반환된다.
	ListAllWithOwner(ctx context.Context) ([]*model.GalleryEstimate, error)

	// DeleteByIDOwned는 id와 소유자가 모두 일치하는 경우에만 견적을 삭제한다.
	// 단일 조건부 DELETE로 수행하여 조회-후-삭제 사이의 경합 구간을 없앤다.
	// 삭제되면 true, 해당 조건의 행이 없으면 false를 반환한다.
	DeleteByIDOwned(ctx context.Context, id, ownerID string) (bool, error)
}
