package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/minsu/pcquote/internal/model"
)

// PostgresEstimateRepo는 PostgreSQL을 사용하는 견적 리포지토리.
type PostgresEstimateRepo struct {
	db *sql.DB
}

// NewPostgresEstimateRepo는 PostgresEstimateRepo를 생성한다.
func NewPostgresEstimateRepo(db *sql.DB) *PostgresEstimateRepo {
	return &PostgresEstimateRepo{db: db}
}

// Create는 견적을 생성한다.
func (r *PostgresEstimateRepo) Create(ctx context.Context, estimate *model.Estimate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO estimates (id, owner_id, title, total_price, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		estimate.ID, estimate.OwnerID, estimate.Title, estimate.TotalPrice,
		estimate.Payload, estimate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert estimate: %w", err)
	}
	return nil
}

// FindByID는 지정 ID의 견적을 조회한다. 없으면 nil을 반환한다.
func (r *PostgresEstimateRepo) FindByID(ctx context.Context, id string) (*model.Estimate, error) {
	estimate := &model.Estimate{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, total_price, payload, created_at
		 FROM estimates WHERE id = $1`,
		id,
	).Scan(&estimate.ID, &estimate.OwnerID, &estimate.Title, &estimate.TotalPrice,
		&estimate.Payload, &estimate.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find estimate: %w", err)
	}

	return estimate, nil
}

// ListByOwnerID는 지정 소유자의 견적 목록을 생성 시각 내림차순으로 반환한다.
func (r *PostgresEstimateRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Estimate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, total_price, payload, created_at
		 FROM estimates
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	defer rows.Close()

	var estimates []*model.Estimate
	for rows.Next() {
		e := &model.Estimate{}
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.TotalPrice, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate estimates: %w", err)
	}

	return estimates, nil
}

// ListAllWithOwner는 전체 견적을 소유자 표시 이름과 LEFT JOIN으로 결합하여 반환한다.
// 소유자 레코드가 없는 견적도 목록에서 빠지지 않는다. OwnerName은 빈 문자열이 된다.
func (r *PostgresEstimateRepo) ListAllWithOwner(ctx context.Context) ([]*model.GalleryEstimate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.owner_id, e.title, e.total_price, e.payload, e.created_at,
		        COALESCE(u.name, '')
		 FROM estimates e
		 LEFT JOIN users u ON u.id = e.owner_id
		 ORDER BY e.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates with owner: %w", err)
	}
	defer rows.Close()

	var estimates []*model.GalleryEstimate
	for rows.Next() {
		g := &model.GalleryEstimate{}
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Title, &g.TotalPrice, &g.Payload,
			&g.CreatedAt, &g.OwnerName); err != nil {
			return nil, fmt.Errorf("failed to scan gallery estimate: %w", err)
		}
		estimates = append(estimates, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gallery estimates: %w", err)
	}

	return estimates, nil
}

// DeleteByIDOwned는 id와 소유자가 모두 일치하는 경우에만 견적을 삭제한다.
// 조건을 DELETE 문 자체에 포함시켜 조회와 삭제 사이의 경합 구간을 없앤다.
func (r *PostgresEstimateRepo) DeleteByIDOwned(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM estimates WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete estimate: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ EstimateRepository = (*PostgresEstimateRepo)(nil)
