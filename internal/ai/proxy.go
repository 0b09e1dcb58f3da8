package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// sessionHeaderName은 프록시 방식의 세션 문맥 전달 변형에서
// 세션 식별자를 싣는 헤더 이름. 대화 기억은 내부 서비스가
// 세션 키 기반 저장소로 복원하며 게이트웨이는 이력을 들고 있지 않는다.
const sessionHeaderName = "X-Session-Id"

// ProxyConfig는 내부 프록시 방식의 설정.
type ProxyConfig struct {
	// Endpoint는 내부 AI 서비스의 채팅 엔드포인트 URL.
	Endpoint string
	// ForwardSession이 true면 현재 메시지 한 건과 세션 식별자 헤더를 전달하고,
	// false면 전체 메시지 시퀀스만 전달한다. 배포 세대에 따라 결정된다.
	ForwardSession bool
	Timeout        time.Duration
}

// ProxyBackend는 내부 AI 서비스로 요청을 전달하는 ChatBackend 구현.
type ProxyBackend struct {
	client  *resty.Client
	config  ProxyConfig
	metrics MetricsRecorder
}

// NewProxyBackend는 ProxyBackend를 생성한다. metrics는 nil일 수 있다.
func NewProxyBackend(config ProxyConfig, metrics MetricsRecorder) *ProxyBackend {
	if config.Timeout <= 0 {
		config.Timeout = DefaultUpstreamTimeout
	}

	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetHeader("Content-Type", "application/json; charset=UTF-8")

	return &ProxyBackend{
		client:  client,
		config:  config,
		metrics: metrics,
	}
}

// Chat은 내부 AI 서비스를 정확히 한 번 호출하고 결과를 값으로 반환한다.
// 엔드포인트가 설정되지 않은 경우 네트워크 호출 없이 설정 실패를 반환한다.
func (b *ProxyBackend) Chat(ctx context.Context, req *ChatRequest) *Result {
	if strings.TrimSpace(b.config.Endpoint) == "" {
		slog.Warn("chat requested without configured proxy endpoint")
		return configFailure("AI proxy endpoint is not configured.")
	}

	r := b.client.R().SetContext(ctx)

	if b.config.ForwardSession {
		r.SetHeader(sessionHeaderName, req.SessionID)
		r.SetBody(map[string]any{"message": req.Message})
	} else {
		r.SetBody(map[string]any{"messages": req.Messages})
	}

	start := time.Now()
	resp, err := r.Post(b.config.Endpoint)
	b.recordLatency(time.Since(start))

	if err != nil {
		slog.Error("ai proxy request failed",
			slog.String("endpoint", b.config.Endpoint),
			slog.String("error", err.Error()),
		)
		b.recordTransportError()
		return transportFailure(err)
	}

	b.recordStatus(resp.StatusCode())

	if resp.IsSuccess() {
		return successResult(resp.Body())
	}

	slog.Warn("ai proxy upstream error",
		slog.Int("status", resp.StatusCode()),
		slog.String("body", string(resp.Body())),
	)
	return upstreamFailure("AI proxy request failed", resp.StatusCode(), resp.Body())
}

func (b *ProxyBackend) recordStatus(code int) {
	if b.metrics != nil {
		b.metrics.RecordChatUpstreamStatus(code)
	}
}

func (b *ProxyBackend) recordTransportError() {
	if b.metrics != nil {
		b.metrics.RecordChatTransportError()
	}
}

func (b *ProxyBackend) recordLatency(d time.Duration) {
	if b.metrics != nil {
		b.metrics.RecordChatLatency(d)
	}
}

// compile-time interface check
var _ ChatBackend = (*ProxyBackend)(nil)
