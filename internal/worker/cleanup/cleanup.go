// Package cleanup은 만료 세션의 자동 삭제 잡을 제공한다.
// expires_at이 지난 세션을 주기 배치로 삭제한다. 세션 조회 경로는
// 만료 세션을 이미 무시하므로 이 잡은 저장 공간 회수만 담당한다.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger는 만료 세션 일괄 삭제를 추상화하는 인터페이스.
// repository.SessionRepository의 부분 집합이다.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// PurgeMetricsRecorder는 삭제 건수 계측의 인터페이스. nil일 수 있다.
type PurgeMetricsRecorder interface {
	RecordSessionsPurged(count int64)
}

// CleanupJob은 만료 세션의 자동 삭제 잡.
// 멱등한 삭제 처리를 보장하며 삭제 대상이 없어도 에러가 아니다.
type CleanupJob struct {
	purger  SessionPurger
	logger  *slog.Logger
	metrics PurgeMetricsRecorder
}

// NewCleanupJob은 새 CleanupJob을 생성한다. metrics는 nil일 수 있다.
func NewCleanupJob(purger SessionPurger, logger *slog.Logger, metrics PurgeMetricsRecorder) *CleanupJob {
	return &CleanupJob{
		purger:  purger,
		logger:  logger,
		metrics: metrics,
	}
}

// Run은 만료 세션을 삭제한다.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.purger.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("failed to purge expired sessions",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsPurged(deletedCount)
	}

	duration := time.Since(start)
	j.logger.Info("session cleanup finished",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunPeriodic은 지정 간격으로 Run을 반복 실행한다.
// 기동 직후 한 번 실행한 뒤 ticker 주기로 돈다. ctx 취소로 종료한다.
// 개별 실행의 실패는 로그만 남기고 다음 주기를 계속한다.
func (j *CleanupJob) RunPeriodic(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("session cleanup run failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session cleanup worker stopped")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("session cleanup run failed", slog.String("error", err.Error()))
			}
		}
	}
}
