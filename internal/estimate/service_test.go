package estimate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/minsu/pcquote/internal/model"
	"github.com/minsu/pcquote/internal/repository"
)

// --- 모의 객체 정의 ---

type mockEstimateRepo struct {
	createFn           func(ctx context.Context, estimate *model.Estimate) error
	findByIDFn         func(ctx context.Context, id string) (*model.Estimate, error)
	listByOwnerIDFn    func(ctx context.Context, ownerID string) ([]*model.Estimate, error)
	listAllWithOwnerFn func(ctx context.Context) ([]*model.GalleryEstimate, error)
	deleteByIDOwnedFn  func(ctx context.Context, id, ownerID string) (bool, error)
}

func (m *mockEstimateRepo) Create(ctx context.Context, estimate *model.Estimate) error {
	if m.createFn != nil {
		return m.createFn(ctx, estimate)
	}
	return nil
}

func (m *mockEstimateRepo) FindByID(ctx context.Context, id string) (*model.Estimate, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEstimateRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Estimate, error) {
	if m.listByOwnerIDFn != nil {
		return m.listByOwnerIDFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockEstimateRepo) ListAllWithOwner(ctx context.Context) ([]*model.GalleryEstimate, error) {
	if m.listAllWithOwnerFn != nil {
		return m.listAllWithOwnerFn(ctx)
	}
	return nil, nil
}

func (m *mockEstimateRepo) DeleteByIDOwned(ctx context.Context, id, ownerID string) (bool, error) {
	if m.deleteByIDOwnedFn != nil {
		return m.deleteByIDOwnedFn(ctx, id, ownerID)
	}
	return false, nil
}

// --- compile-time interface check ---
var _ repository.EstimateRepository = (*mockEstimateRepo)(nil)

// --- 테스트 ---

func TestSave_ExtractsTitleAndTotalPrice(t *testing.T) {
	ctx := context.Background()

	var saved *model.Estimate
	repo := &mockEstimateRepo{
		createFn: func(ctx context.Context, estimate *model.Estimate) error {
			saved = estimate
			return nil
		},
	}
	svc := NewService(repo, nil)

	payload := map[string]any{
		"title":      "게이밍 PC 견적",
		"totalPrice": float64(1500000),
		"parts":      []any{map[string]any{"category": "CPU", "name": "Ryzen 7"}},
	}

	id, err := svc.Save(ctx, "user-1", payload)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if id == "" {
		t.Error("expected non-empty estimate ID")
	}

	if saved == nil {
		t.Fatal("expected estimate to be persisted")
	}
	if saved.Title != "게이밍 PC 견적" {
		t.Errorf("title = %q, want %q", saved.Title, "게이밍 PC 견적")
	}
	if saved.TotalPrice != 1500000 {
		t.Errorf("totalPrice = %d, want %d", saved.TotalPrice, 1500000)
	}
	if saved.OwnerID != "user-1" {
		t.Errorf("ownerID = %q, want %q", saved.OwnerID, "user-1")
	}

	// 전체 페이로드가 그대로 직렬화되어 보존된다
	var round map[string]any
	if err := json.Unmarshal([]byte(saved.Payload), &round); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if _, ok := round["parts"]; !ok {
		t.Error("expected parts to be preserved in payload")
	}
}

func TestSave_MissingTitleAndPrice_UsesDefaults(t *testing.T) {
	ctx := context.Background()

	var saved *model.Estimate
	repo := &mockEstimateRepo{
		createFn: func(ctx context.Context, estimate *model.Estimate) error {
			saved = estimate
			return nil
		},
	}
	svc := NewService(repo, nil)

	if _, err := svc.Save(ctx, "user-1", map[string]any{"parts": []any{}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if saved.Title != model.DefaultEstimateTitle {
		t.Errorf("title = %q, want %q", saved.Title, model.DefaultEstimateTitle)
	}
	if saved.TotalPrice != 0 {
		t.Errorf("totalPrice = %d, want 0", saved.TotalPrice)
	}
}

func TestSave_SanitizesTitle(t *testing.T) {
	ctx := context.Background()

	var saved *model.Estimate
	repo := &mockEstimateRepo{
		createFn: func(ctx context.Context, estimate *model.Estimate) error {
			saved = estimate
			return nil
		},
	}
	svc := NewService(repo, nil)

	payload := map[string]any{"title": `<img src=x onerror=alert(1)>조립 견적`}
	if _, err := svc.Save(ctx, "user-1", payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// 제목은 갤러리에서 타인에게 노출되므로 마크업이 제거되어야 한다
	if saved.Title != "조립 견적" {
		t.Errorf("title = %q, want %q", saved.Title, "조립 견적")
	}
}

func TestSave_UnserializablePayload_ReturnsSerializationError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockEstimateRepo{}, nil)

	// 채널은 JSON으로 직렬화할 수 없다
	payload := map[string]any{"bad": make(chan int)}

	_, err := svc.Save(ctx, "user-1", payload)
	if err == nil {
		t.Fatal("expected error for unserializable payload")
	}

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeSerializationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeSerializationFailed)
	}
}

func TestFindOwned_OwnedEstimate_ReturnsIt(t *testing.T) {
	repo := &mockEstimateRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Estimate, error) {
			return &model.Estimate{ID: id, OwnerID: "user-1"}, nil
		},
	}
	svc := NewService(repo, nil)

	estimate, err := svc.FindOwned(context.Background(), "est-1", "user-1")
	if err != nil {
		t.Fatalf("FindOwned() error = %v", err)
	}
	if estimate.ID != "est-1" {
		t.Errorf("estimate ID = %q, want %q", estimate.ID, "est-1")
	}
}

func TestFindOwned_MissingAndForeign_ReturnSameError(t *testing.T) {
	ctx := context.Background()

	missingRepo := &mockEstimateRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Estimate, error) {
			return nil, nil
		},
	}
	svc := NewService(missingRepo, nil)
	_, errMissing := svc.FindOwned(ctx, "est-1", "user-1")

	foreignRepo := &mockEstimateRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Estimate, error) {
			return &model.Estimate{ID: id, OwnerID: "someone-else"}, nil
		},
	}
	svc = NewService(foreignRepo, nil)
	_, errForeign := svc.FindOwned(ctx, "est-1", "user-1")

	// 미존재와 비소유는 구분 불가능해야 한다(존재 여부 추측 방지)
	apiErr1, ok1 := errMissing.(*model.APIError)
	apiErr2, ok2 := errForeign.(*model.APIError)
	if !ok1 || !ok2 {
		t.Fatalf("expected APIErrors, got %T / %T", errMissing, errForeign)
	}
	if apiErr1.Code != model.ErrCodeNotFound || apiErr2.Code != model.ErrCodeNotFound {
		t.Errorf("codes = %q / %q, want both %q", apiErr1.Code, apiErr2.Code, model.ErrCodeNotFound)
	}
}

func TestListGallery_FillsUnknownOwnerName(t *testing.T) {
	repo := &mockEstimateRepo{
		listAllWithOwnerFn: func(ctx context.Context) ([]*model.GalleryEstimate, error) {
			return []*model.GalleryEstimate{
				{Estimate: model.Estimate{ID: "est-1"}, OwnerName: "김민수"},
				{Estimate: model.Estimate{ID: "est-2"}, OwnerName: ""},
			}, nil
		},
	}
	svc := NewService(repo, nil)

	entries, err := svc.ListGallery(context.Background())
	if err != nil {
		t.Fatalf("ListGallery() error = %v", err)
	}

	if entries[0].OwnerName != "김민수" {
		t.Errorf("ownerName = %q, want %q", entries[0].OwnerName, "김민수")
	}
	// 소유자가 삭제된 견적은 목록에 남고 대체 이름으로 표시된다
	if entries[1].OwnerName != model.UnknownOwnerName {
		t.Errorf("ownerName = %q, want %q", entries[1].OwnerName, model.UnknownOwnerName)
	}
}

func TestDelete_OwnedEstimate_ReturnsTrue(t *testing.T) {
	var gotID, gotOwner string
	repo := &mockEstimateRepo{
		deleteByIDOwnedFn: func(ctx context.Context, id, ownerID string) (bool, error) {
			gotID, gotOwner = id, ownerID
			return true, nil
		},
	}
	svc := NewService(repo, nil)

	deleted, err := svc.Delete(context.Background(), "est-1", "user-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("expected deleted = true")
	}
	if gotID != "est-1" || gotOwner != "user-1" {
		t.Errorf("delete called with (%q, %q), want (%q, %q)", gotID, gotOwner, "est-1", "user-1")
	}
}

func TestDelete_MissingAndForeign_BothReturnFalse(t *testing.T) {
	ctx := context.Background()

	// 미존재
	missingRepo := &mockEstimateRepo{
		deleteByIDOwnedFn: func(ctx context.Context, id, ownerID string) (bool, error) {
			return false, nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Estimate, error) {
			return nil, nil
		},
	}
	svc := NewService(missingRepo, nil)
	deleted, err := svc.Delete(ctx, "est-1", "user-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("expected deleted = false for missing estimate")
	}

	// 비소유
	foreignRepo := &mockEstimateRepo{
		deleteByIDOwnedFn: func(ctx context.Context, id, ownerID string) (bool, error) {
			return false, nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Estimate, error) {
			return &model.Estimate{ID: id, OwnerID: "someone-else"}, nil
		},
	}
	svc = NewService(foreignRepo, nil)
	deleted, err = svc.Delete(ctx, "est-1", "user-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("expected deleted = false for foreign estimate")
	}
}
