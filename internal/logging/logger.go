// Package logging : структурированный логгер с контекстом.
// Аргументы после сообщения: пары ключ-значение:
//
//	logger.Info(ctx, "сессия создана", "user_uuid", userUUID)
package logging

import "context"

type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With возвращает дочерний логгер с постоянными атрибутами
	With(args ...any) Logger
}
