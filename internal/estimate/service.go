// Package estimate는 견적 저장/조회/삭제의 비즈니스 로직을 제공한다.
// 소유권 불변식을 이 계층에서 강제한다. 견적은 생성 시의 소유자만 삭제할 수 있다.
package estimate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/minsu/pcquote/internal/model"
	"github.com/minsu/pcquote/internal/repository"
)

// titlePolicy는 제목에서 마크업을 제거하는 정책.
// 갤러리에서 다른 사용자에게 노출되는 텍스트다.
var titlePolicy = bluemonday.StrictPolicy()

// SaveMetricsRecorder는 견적 저장 계측의 인터페이스. nil일 수 있다.
type SaveMetricsRecorder interface {
	RecordEstimateSaved()
}

// Service는 견적에 관한 비즈니스 로직을 제공한다.
type Service struct {
	estimateRepo repository.EstimateRepository
	metrics      SaveMetricsRecorder
}

// NewService는 Service를 생성한다. metrics는 nil일 수 있다.
func NewService(estimateRepo repository.EstimateRepository, metrics SaveMetricsRecorder) *Service {
	return &Service{estimateRepo: estimateRepo, metrics: metrics}
}

// Save는 인증된 소유자의 견적을 저장하고 생성된 ID를 반환한다.
// payload에서 title과 totalPrice만 추출하고 나머지는 해석하지 않는다.
// ownerID는 호출자가 활성 세션에서 해석한 값이어야 한다. 여기서는 검증하지 않는다.
func (s *Service) Save(ctx context.Context, ownerID string, payload map[string]any) (string, error) {
	title := model.DefaultEstimateTitle
	if v, ok := payload["title"].(string); ok && strings.TrimSpace(v) != "" {
		title = strings.TrimSpace(titlePolicy.Sanitize(v))
	}

	totalPrice := 0
	// JSON 디코드를 거친 숫자는 float64로 들어온다.
	switch v := payload["totalPrice"].(type) {
	case float64:
		totalPrice = int(v)
	case int:
		totalPrice = v
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("estimate payload is not serializable",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return "", model.NewSerializationError()
	}

	estimate := &model.Estimate{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Title:      title,
		TotalPrice: totalPrice,
		Payload:    string(raw),
		CreatedAt:  time.Now(),
	}

	if err := s.estimateRepo.Create(ctx, estimate); err != nil {
		return "", fmt.Errorf("failed to save estimate: %w", err)
	}

	slog.Info("estimate saved",
		slog.String("estimate_id", estimate.ID),
		slog.String("owner_id", ownerID),
		slog.Int("total_price", totalPrice),
	)

	if s.metrics != nil {
		s.metrics.RecordEstimateSaved()
	}

	return estimate.ID, nil
}

// FindOwned는 id의 견적을 요청자가 소유한 경우에만 반환한다.
// 미존재와 비소유는 구분하지 않고 동일한 NOT_FOUND 에러로 보고한다.
func (s *Service) FindOwned(ctx context.Context, id, requesterID string) (*model.Estimate, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find estimate: %w", err)
	}
	if estimate == nil || estimate.OwnerID != requesterID {
		return nil, model.NewNotFoundError(id)
	}
	return estimate, nil
}

// ListByOwner는 지정 소유자의 견적만 반환한다. 다른 사용자의 견적은 섞이지 않는다.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*model.Estimate, error) {
	estimates, err := s.estimateRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	return estimates, nil
}

// ListGallery는 전체 견적을 소유자 표시 이름과 함께 반환한다.
// 소유자 레코드가 사라진 견적은 목록에서 빼지 않고 대체 이름으로 채운다.
func (s *Service) ListGallery(ctx context.Context) ([]*model.GalleryEstimate, error) {
	estimates, err := s.estimateRepo.ListAllWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery estimates: %w", err)
	}

	for _, g := range estimates {
		if g.OwnerName == "" {
			g.OwnerName = model.UnknownOwnerName
		}
	}

	return estimates, nil
}

// Delete는 id와 요청자 소유가 일치하는 경우에만 견적을 삭제하고 true를 반환한다.
// 견적 미존재와 소유권 불일치는 내부적으로 구분해 로그를 남기지만
// 호출자에게는 동일하게 false로 반환한다.
func (s *Service) Delete(ctx context.Context, id, requesterID string) (bool, error) {
	deleted, err := s.estimateRepo.DeleteByIDOwned(ctx, id, requesterID)
	if err != nil {
		return false, fmt.Errorf("failed to delete estimate: %w", err)
	}
	if deleted {
		slog.Info("estimate deleted",
			slog.String("estimate_id", id),
			slog.String("owner_id", requesterID),
		)
		return true, nil
	}

	// 어느 쪽이었는지는 진단용으로만 기록한다.
	existing, findErr := s.estimateRepo.FindByID(ctx, id)
	switch {
	case findErr != nil:
		slog.Warn("failed to inspect undeleted estimate",
			slog.String("estimate_id", id),
			slog.String("error", findErr.Error()),
		)
	case existing == nil:
		slog.Info("delete requested for missing estimate",
			slog.String("estimate_id", id),
		)
	default:
		slog.Warn("delete requested by non-owner",
			slog.String("estimate_id", id),
			slog.String("requester_id", requesterID),
		)
	}

	return false, nil
}
