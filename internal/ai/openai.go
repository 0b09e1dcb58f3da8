package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUpstreamTimeout은 업스트림 호출의 기본 제한 시간.
const DefaultUpstreamTimeout = 60 * time.Second

// OpenAIConfig는 직접 호출 방식의 설정.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // 예: https://api.openai.com
	DefaultModel string
	Org          string // 비어 있으면 헤더를 붙이지 않는다
	Project      string // 비어 있으면 헤더를 붙이지 않는다
	Timeout      time.Duration
}

// OpenAIBackend는 완성 API를 직접 호출하는 ChatBackend 구현.
type OpenAIBackend struct {
	client  *resty.Client
	config  OpenAIConfig
	metrics MetricsRecorder
}

// NewOpenAIBackend는 OpenAIBackend를 생성한다. metrics는 nil일 수 있다.
func NewOpenAIBackend(config OpenAIConfig, metrics MetricsRecorder) *OpenAIBackend {
	if config.Timeout <= 0 {
		config.Timeout = DefaultUpstreamTimeout
	}

	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetHeader("Content-Type", "application/json; charset=UTF-8")

	return &OpenAIBackend{
		client:  client,
		config:  config,
		metrics: metrics,
	}
}

// Chat은 완성 API를 정확히 한 번 호출하고 결과를 값으로 반환한다.
// 자격 증명이 설정되지 않은 경우 네트워크 호출 없이 설정 실패를 반환한다.
func (b *OpenAIBackend) Chat(ctx context.Context, req *ChatRequest) *Result {
	if strings.TrimSpace(b.config.APIKey) == "" {
		slog.Warn("chat requested without configured API key")
		return configFailure("OPENAI_API_KEY is not configured.")
	}

	model := b.config.DefaultModel
	if strings.TrimSpace(req.Model) != "" {
		model = req.Model
	}

	payload := map[string]any{
		"model":    model,
		"messages": req.Messages,
	}
	if req.MaxTokens != nil {
		payload["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		payload["temperature"] = *req.Temperature
	}

	r := b.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+b.config.APIKey).
		SetBody(payload)

	if strings.TrimSpace(b.config.Org) != "" {
		r.SetHeader("OpenAI-Organization", b.config.Org)
	}
	if strings.TrimSpace(b.config.Project) != "" {
		r.SetHeader("OpenAI-Project", b.config.Project)
	}

	start := time.Now()
	resp, err := r.Post(b.config.BaseURL + "/v1/chat/completions")
	b.recordLatency(time.Since(start))

	if err != nil {
		slog.Error("chat completions request failed",
			slog.String("error", err.Error()),
		)
		b.recordTransportError()
		return transportFailure(err)
	}

	b.recordStatus(resp.StatusCode())

	if resp.IsSuccess() {
		return successResult(resp.Body())
	}

	slog.Warn("chat completions upstream error",
		slog.Int("status", resp.StatusCode()),
		slog.String("body", string(resp.Body())),
	)
	return upstreamFailure("chat completions request failed", resp.StatusCode(), resp.Body())
}

func (b *OpenAIBackend) recordStatus(code int) {
	if b.metrics != nil {
		b.metrics.RecordChatUpstreamStatus(code)
	}
}

func (b *OpenAIBackend) recordTransportError() {
	if b.metrics != nil {
		b.metrics.RecordChatTransportError()
	}
}

func (b *OpenAIBackend) recordLatency(d time.Duration) {
	if b.metrics != nil {
		b.metrics.RecordChatLatency(d)
	}
}

// compile-time interface check
var _ ChatBackend = (*OpenAIBackend)(nil)
