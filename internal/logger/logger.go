// Package logger는 구조화 로그 설정을 제공한다.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup은 JSON 구조화 로그를 출력하는 slog.Logger를 생성해 반환한다.
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault는 JSON 구조화 로그를 전역 로거로 설정한다.
// 운영 환경에서는 os.Stdout을 전달하는 것을 상정한다.
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}
