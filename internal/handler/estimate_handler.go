package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minsu/pcquote/internal/middleware"
	"github.com/minsu/pcquote/internal/model"
)

// EstimateServiceInterface는 견적 핸들러가 필요로 하는 서비스 인터페이스.
type EstimateServiceInterface interface {
	Save(ctx context.Context, ownerID string, payload map[string]any) (string, error)
	FindOwned(ctx context.Context, id, ownerID string) (*model.Estimate, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Estimate, error)
	ListGallery(ctx context.Context) ([]*model.GalleryEstimate, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// EstimateHandler는 견적 저장/조회/삭제의 HTTP 핸들러.
type EstimateHandler struct {
	service EstimateServiceInterface
}

// NewEstimateHandler는 EstimateHandler를 생성한다.
func NewEstimateHandler(service EstimateServiceInterface) *EstimateHandler {
	return &EstimateHandler{service: service}
}

// estimateBody는 한 건의 견적 응답 표현.
// Payload는 저장 시 직렬화한 JSON 문자열 그대로이므로 RawMessage로 그대로 내보낸다.
func estimateBody(e *model.Estimate) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"title":      e.Title,
		"totalPrice": e.TotalPrice,
		"payload":    json.RawMessage(e.Payload),
		"createdAt":  e.CreatedAt,
	}
}

// Save는 현재 사용자의 새 견적을 저장한다.
// POST /api/estimate
func (h *EstimateHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewValidationError("본문이 JSON 객체가 아닙니다"))
		return
	}

	id, err := h.service.Save(r.Context(), userID, payload)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "견적 저장 완료",
		"id":      id,
	})
}

// List는 현재 사용자가 소유한 견적 목록을 반환한다.
// GET /api/estimate/list
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
		return
	}

	estimates, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list estimates", slog.String("error", err.Error()))
		writeInternalError(w)
		return
	}

	items := make([]map[string]any, 0, len(estimates))
	for _, e := range estimates {
		items = append(items, estimateBody(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"estimates": items,
	})
}

// Gallery는 모든 사용자의 견적을 소유자 이름과 함께 반환한다.
// 소유자가 삭제된 견적은 대체 이름으로 표시된다.
// GET /api/estimate/gallery
func (h *EstimateHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListGallery(r.Context())
	if err != nil {
		slog.Error("failed to list gallery", slog.String("error", err.Error()))
		writeInternalError(w)
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, g := range entries {
		body := estimateBody(&g.Estimate)
		body["ownerName"] = g.OwnerName
		items = append(items, body)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"estimates": items,
	})
}

// Get은 현재 사용자가 소유한 견적 한 건을 반환한다.
// 존재하지 않는 견적과 남의 견적은 모두 404로 응답한다.
// GET /api/estimate/{id}
func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
		return
	}

	id := chi.URLParam(r, "id")
	estimate, err := h.service.FindOwned(r.Context(), id, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := estimateBody(estimate)
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// Delete는 현재 사용자가 소유한 견적을 삭제한다.
// 미존재와 비소유는 구분하지 않고 403으로 응답한다.
// DELETE /api/estimate/{id}
func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.service.Delete(r.Context(), id, userID)
	if err != nil {
		slog.Error("failed to delete estimate", slog.String("error", err.Error()))
		writeInternalError(w)
		return
	}
	if !deleted {
		writeAPIError(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "견적 삭제 완료",
	})
}
