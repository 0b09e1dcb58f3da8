package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/minsu/pcquote/internal/ai"
	"github.com/minsu/pcquote/internal/middleware"
	"github.com/minsu/pcquote/internal/model"
)

// AIHandlerConfig는 채팅 핸들러의 동작 방식 설정.
// ForwardSession은 프록시 변형 중 세션 문맥 전달 변형 여부다.
type AIHandlerConfig struct {
	ProxyMode      bool
	ForwardSession bool
}

// AIHandler는 채팅 게이트웨이의 HTTP 핸들러.
// 업스트림 실패는 HTTP 200에 구조화된 본문으로 보고한다.
// 클라이언트 입장에서 업스트림 실패는 대화의 정상적인 한 결과이기 때문이다.
type AIHandler struct {
	backend ai.ChatBackend
	config  AIHandlerConfig
}

// NewAIHandler는 AIHandler를 생성한다.
func NewAIHandler(backend ai.ChatBackend, config AIHandlerConfig) *AIHandler {
	return &AIHandler{backend: backend, config: config}
}

// chatRequestBody는 채팅 요청 본문. 모드에 따라 필수 필드가 다르다.
type chatRequestBody struct {
	Messages    []ai.Message `json:"messages"`
	Message     string       `json:"message"`
	Model       string       `json:"model"`
	MaxTokens   *int         `json:"maxTokens"`
	Temperature *float64     `json:"temperature"`
}

// Chat은 채팅 요청을 설정된 백엔드로 전달한다.
// POST /api/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewValidationError("본문이 JSON이 아닙니다"))
		return
	}

	if apiErr := h.validate(&body); apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	req := &ai.ChatRequest{
		Messages:    body.Messages,
		Message:     body.Message,
		Model:       body.Model,
		MaxTokens:   body.MaxTokens,
		Temperature: body.Temperature,
	}
	if h.config.ProxyMode && h.config.ForwardSession {
		if sessionID, err := middleware.SessionIDFromContext(r.Context()); err == nil {
			req.SessionID = sessionID
		}
	}

	result := h.backend.Chat(r.Context(), req)
	if result.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"response": result.Payload,
		})
		return
	}

	failure := map[string]any{
		"message": result.Failure.Message,
	}
	if result.Failure.Status != 0 {
		failure["status"] = result.Failure.Status
	}
	if result.Failure.Body != nil {
		failure["body"] = result.Failure.Body
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"code":    model.ErrCodeUpstreamFailure,
		"error":   failure,
	})
}

// validate는 모드별 필수 필드를 검사한다.
func (h *AIHandler) validate(body *chatRequestBody) *model.APIError {
	if h.config.ProxyMode && h.config.ForwardSession {
		if strings.TrimSpace(body.Message) == "" {
			return model.NewValidationError("message는 필수입니다")
		}
		return nil
	}
	if len(body.Messages) == 0 {
		return model.NewValidationError("messages는 필수입니다")
	}
	for _, m := range body.Messages {
		if m.Role == "" || m.Content == "" {
			return model.NewValidationError("messages의 각 항목에는 role과 content가 필요합니다")
		}
	}
	return nil
}
