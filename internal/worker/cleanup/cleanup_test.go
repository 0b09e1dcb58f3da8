package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// --- 모의 객체 정의 ---

type mockPurger struct {
	deleteExpiredFunc func(ctx context.Context) (int64, error)
	numCalls          atomic.Int64
}

func (m *mockPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.numCalls.Add(1)
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockPurgeMetrics struct {
	purged atomic.Int64
}

func (m *mockPurgeMetrics) RecordSessionsPurged(count int64) {
	m.purged.Add(count)
}

var (
	_ SessionPurger        = (*mockPurger)(nil)
	_ PurgeMetricsRecorder = (*mockPurgeMetrics)(nil)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- 테스트 ---

func TestCleanupJob_Run_RecordsDeletedCount(t *testing.T) {
	purger := &mockPurger{
		deleteExpiredFunc: func(ctx context.Context) (int64, error) {
			return 7, nil
		},
	}
	metrics := &mockPurgeMetrics{}
	job := NewCleanupJob(purger, testLogger(), metrics)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := metrics.purged.Load(); got != 7 {
		t.Errorf("recorded purge count = %d, want 7", got)
	}
}

func TestCleanupJob_Run_NothingToDelete_IsNotAnError(t *testing.T) {
	purger := &mockPurger{}
	job := NewCleanupJob(purger, testLogger(), nil)

	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestCleanupJob_Run_PropagatesPurgeError(t *testing.T) {
	purger := &mockPurger{
		deleteExpiredFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}
	metrics := &mockPurgeMetrics{}
	job := NewCleanupJob(purger, testLogger(), metrics)

	if err := job.Run(context.Background()); err == nil {
		t.Error("expected error from failing purge")
	}
	if got := metrics.purged.Load(); got != 0 {
		t.Errorf("metrics recorded on failure: %d", got)
	}
}

func TestCleanupJob_RunPeriodic_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	purger := &mockPurger{}
	job := NewCleanupJob(purger, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.RunPeriodic(ctx, time.Hour)
		close(done)
	}()

	// 기동 직후 1회 실행을 기다린다
	deadline := time.After(2 * time.Second)
	for purger.numCalls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial run did not happen")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not stop after cancel")
	}
}

func TestCleanupJob_RunPeriodic_ContinuesAfterFailure(t *testing.T) {
	var calls atomic.Int64
	purger := &mockPurger{
		deleteExpiredFunc: func(ctx context.Context) (int64, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("transient failure")
			}
			return 1, nil
		},
	}
	job := NewCleanupJob(purger, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		job.RunPeriodic(ctx, 20*time.Millisecond)
		close(done)
	}()

	// 첫 실행이 실패해도 다음 주기는 돈다
	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("periodic run did not continue after a failure")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
