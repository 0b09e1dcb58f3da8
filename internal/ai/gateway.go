// Package ai는 대화형 AI 백엔드에 대한 채팅 게이트웨이를 제공한다.
//
// 서로 호환되지 않는 두 가지 업스트림 연동 방식(완성 API 직접 호출, 내부 AI
// 서비스 프록시)을 하나의 Chat 계약 뒤에 정규화한다. 어느 방식을 쓸지는
// 기동 시 설정으로 한 번 결정되며 요청 단위로 분기하지 않는다.
//
// Chat은 업스트림 상황을 절대 Go 에러나 패닉으로 전파하지 않는다.
// 모든 결과는 Result 값이다. 시도는 정확히 한 번이며 재시도나 백오프는 없다.
package ai

import (
	"context"
	"encoding/json"
	"time"
)

// Message는 대화의 역할/내용 쌍을 나타낸다.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest는 게이트웨이에 전달되는 요청이다.
// 직접 호출 방식은 Messages와 모델 파라미터를 사용하고,
// 프록시 방식은 Message(세션 문맥 전달 변형) 또는 Messages(전체 전달 변형)를 사용한다.
type ChatRequest struct {
	Messages    []Message
	Message     string
	SessionID   string
	Model       string
	MaxTokens   *int
	Temperature *float64
}

// Failure는 구조화된 실패를 나타낸다.
// Status는 업스트림 HTTP 상태 코드이며 전송 계층 실패는 0이다.
// Body는 업스트림 응답 본문의 best-effort 재파싱 결과(맵 또는 원문 문자열)다.
type Failure struct {
	Message string
	Status  int
	Body    any
}

// Result는 Chat의 반환 값. 성공이면 업스트림 응답 본문을 그대로 담고,
// 실패면 Failure를 담는다. 두 경우 모두 값이며 예외가 아니다.
type Result struct {
	Success bool
	Payload map[string]any
	Failure *Failure
}

// ChatBackend는 채팅 게이트웨이의 공개 계약.
// 구현은 OpenAIBackend(직접 호출)와 ProxyBackend(내부 프록시) 둘뿐이다.
type ChatBackend interface {
	Chat(ctx context.Context, req *ChatRequest) *Result
}

// MetricsRecorder는 업스트림 호출 결과의 계측 인터페이스. nil일 수 있다.
type MetricsRecorder interface {
	RecordChatUpstreamStatus(statusCode int)
	RecordChatTransportError()
	RecordChatLatency(duration time.Duration)
}

// configFailure는 호출을 시도하기 전의 설정 누락 실패를 만든다.
func configFailure(message string) *Result {
	return &Result{
		Success: false,
		Failure: &Failure{Message: message},
	}
}

// transportFailure는 전송 계층 실패(타임아웃, 연결 실패 등)를 만든다.
// 예외 메시지를 그대로 실어 호출자에게 값으로 돌려준다.
func transportFailure(err error) *Result {
	return &Result{
		Success: false,
		Failure: &Failure{Message: err.Error()},
	}
}

// upstreamFailure는 2xx가 아닌 업스트림 응답을 구조화된 실패로 만든다.
func upstreamFailure(message string, status int, body []byte) *Result {
	return &Result{
		Success: false,
		Failure: &Failure{
			Message: message,
			Status:  status,
			Body:    reparseBody(body),
		},
	}
}

// reparseBody는 업스트림 본문을 JSON 맵으로 재파싱을 시도하고,
// 실패하면 원문 문자열로 폴백한다.
func reparseBody(body []byte) any {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body)
	}
	return parsed
}

// successResult는 2xx 업스트림 본문을 파싱해 그대로 통과시킨다.
// 본문이 JSON 객체가 아니면 전송 실패와 동일하게 구조화된 실패로 보고한다.
func successResult(body []byte) *Result {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return &Result{
			Success: false,
			Failure: &Failure{Message: "malformed upstream response: " + err.Error()},
		}
	}
	return &Result{Success: true, Payload: payload}
}
