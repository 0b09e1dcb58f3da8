package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestProxyChat_BlankEndpoint_FailsWithoutNetworkCall(t *testing.T) {
	backend := NewProxyBackend(ProxyConfig{Endpoint: ""}, nil)

	result := backend.Chat(context.Background(), &ChatRequest{Message: "안녕"})

	if result.Success {
		t.Fatal("expected failure for missing endpoint")
	}
	if result.Failure.Message == "" {
		t.Error("expected failure message")
	}
	if result.Failure.Status != 0 {
		t.Errorf("status = %d, want 0 (no upstream call)", result.Failure.Status)
	}
}

func TestProxyChat_ForwardSession_SendsSingleMessageWithSessionHeader(t *testing.T) {
	var gotSessionID string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID = r.Header.Get("X-Session-Id")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"reply":"추천 견적입니다"}`))
	}))
	defer server.Close()

	backend := NewProxyBackend(ProxyConfig{
		Endpoint:       server.URL,
		ForwardSession: true,
	}, nil)

	result := backend.Chat(context.Background(), &ChatRequest{
		Message:   "100만원 게이밍 PC 추천해줘",
		SessionID: "session-abc",
		// 이 변형에서 Messages는 무시된다
		Messages: []Message{{Role: "user", Content: "무시되어야 함"}},
	})

	if !result.Success {
		t.Fatalf("expected success, got failure: %+v", result.Failure)
	}
	if gotSessionID != "session-abc" {
		t.Errorf("X-Session-Id = %q, want %q", gotSessionID, "session-abc")
	}
	if gotBody["message"] != "100만원 게이밍 PC 추천해줘" {
		t.Errorf("message = %v, want request message", gotBody["message"])
	}
	if _, ok := gotBody["messages"]; ok {
		t.Error("messages must not be sent in session-forwarding mode")
	}
}

func TestProxyChat_FullMessages_SendsMessageSequence(t *testing.T) {
	var gotSessionID string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID = r.Header.Get("X-Session-Id")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"reply":"ok"}`))
	}))
	defer server.Close()

	backend := NewProxyBackend(ProxyConfig{
		Endpoint:       server.URL,
		ForwardSession: false,
	}, nil)

	result := backend.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "user", Content: "첫 질문"},
			{Role: "assistant", Content: "첫 답변"},
			{Role: "user", Content: "둘째 질문"},
		},
	})

	if !result.Success {
		t.Fatalf("expected success, got failure: %+v", result.Failure)
	}
	if gotSessionID != "" {
		t.Errorf("X-Session-Id = %q, want empty in full-messages mode", gotSessionID)
	}

	messages, ok := gotBody["messages"].([]any)
	if !ok {
		t.Fatalf("expected messages array, got %T", gotBody["messages"])
	}
	if len(messages) != 3 {
		t.Errorf("messages length = %d, want 3", len(messages))
	}
}

func TestProxyChat_UpstreamError_ReturnsStructuredFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	metrics := &mockMetrics{}
	backend := NewProxyBackend(ProxyConfig{Endpoint: server.URL}, metrics)

	result := backend.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})

	if result.Success {
		t.Fatal("expected failure for 500 upstream response")
	}
	if result.Failure.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", result.Failure.Status, http.StatusInternalServerError)
	}

	body, ok := result.Failure.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected map body, got %T", result.Failure.Body)
	}
	if body["error"] != "boom" {
		t.Errorf("body error = %v, want %q", body["error"], "boom")
	}
	if len(metrics.statusCodes) != 1 || metrics.statusCodes[0] != 500 {
		t.Errorf("recorded status codes = %v, want [500]", metrics.statusCodes)
	}
}

func TestProxyChat_Timeout_ReturnsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	metrics := &mockMetrics{}
	backend := NewProxyBackend(ProxyConfig{
		Endpoint: server.URL,
		Timeout:  50 * time.Millisecond,
	}, metrics)

	result := backend.Chat(context.Background(), &ChatRequest{Message: "hi"})

	if result.Success {
		t.Fatal("expected failure for timed-out request")
	}
	if result.Failure.Status != 0 {
		t.Errorf("status = %d, want 0 for transport failure", result.Failure.Status)
	}
	if atomic.LoadInt32(&metrics.transportErrors) != 1 {
		t.Errorf("transport errors = %d, want 1", metrics.transportErrors)
	}
}

func TestProxyChat_MalformedSuccessBody_ReturnsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a json object"))
	}))
	defer server.Close()

	backend := NewProxyBackend(ProxyConfig{Endpoint: server.URL}, nil)

	result := backend.Chat(context.Background(), &ChatRequest{Message: "hi"})

	// 2xx라도 JSON 객체가 아니면 구조화된 실패로 보고한다
	if result.Success {
		t.Fatal("expected failure for malformed success body")
	}
	if result.Failure.Message == "" {
		t.Error("expected failure message")
	}
}
