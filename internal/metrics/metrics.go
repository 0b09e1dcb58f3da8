// Package metrics는 Prometheus 메트릭 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector는 Prometheus 메트릭을 수집하는 구현.
// AI 업스트림 호출과 도메인 이벤트(로그인, 견적 저장)를 계측한다.
type Collector struct {
	chatUpstreamStatus *prometheus.CounterVec
	chatTransportError prometheus.Counter
	chatLatency        prometheus.Histogram
	loginSuccess       prometheus.Counter
	loginFailure       prometheus.Counter
	estimatesSaved     prometheus.Counter
	sessionsPurged     prometheus.Counter
}

// NewCollector는 새 Collector를 생성하고 지정 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		chatUpstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pcquote_chat_upstream_status_total",
			Help: "AI 업스트림 HTTP 상태 코드별 응답 수",
		}, []string{"status_code"}),
		chatTransportError: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcquote_chat_transport_error_total",
			Help: "AI 업스트림 전송 계층 실패의 합계",
		}),
		chatLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcquote_chat_latency_seconds",
			Help:    "AI 업스트림 호출 레이턴시(초)",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcquote_login_success_total",
			Help: "로그인 성공의 합계",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcquote_login_failure_total",
			Help: "로그인 실패의 합계",
		}),
		estimatesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcquote_estimates_saved_total",
			Help: "저장된 견적의 합계",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcquote_sessions_purged_total",
			Help: "정리 워커가 삭제한 만료 세션의 합계",
		}),
	}

	reg.MustRegister(
		c.chatUpstreamStatus,
		c.chatTransportError,
		c.chatLatency,
		c.loginSuccess,
		c.loginFailure,
		c.estimatesSaved,
		c.sessionsPurged,
	)

	return c
}

// RecordChatUpstreamStatus는 업스트림 HTTP 상태 코드를 기록한다.
func (c *Collector) RecordChatUpstreamStatus(statusCode int) {
	c.chatUpstreamStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordChatTransportError는 전송 계층 실패를 기록한다.
func (c *Collector) RecordChatTransportError() {
	c.chatTransportError.Inc()
}

// RecordChatLatency는 업스트림 호출 레이턴시를 기록한다.
func (c *Collector) RecordChatLatency(duration time.Duration) {
	c.chatLatency.Observe(duration.Seconds())
}

// RecordLoginSuccess는 로그인 성공을 기록한다.
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure는 로그인 실패를 기록한다.
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordEstimateSaved는 견적 저장을 기록한다.
func (c *Collector) RecordEstimateSaved() {
	c.estimatesSaved.Inc()
}

// RecordSessionsPurged는 삭제된 만료 세션 수를 기록한다.
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// Handler는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
