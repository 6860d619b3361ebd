// Обертка ошибок с точками вызова и контекстом для журнала.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/labstack/echo/v4"
)

type TrackerError struct {
	Context  map[string]any
	ErrStack []slog.Attr
	cause    error
}

// TrackErrorStack оборачивает ошибку (или дополняет уже обернутую) точкой вызова.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, callerAttr(err))
		return te
	}

	return &TrackerError{
		Context:  make(map[string]any),
		ErrStack: []slog.Attr{callerAttr(err)},
		cause:    err,
	}
}

// AddContext добавляет значение в контекст. Уже заданные ключи не перезаписываются.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// LogAttrs возвращает атрибуты ошибки для slog: контекст в порядке ключей и стек вызовов.
func LogAttrs(err error) []any {
	var te *TrackerError
	if !errors.As(err, &te) {
		return []any{slog.String("err", err.Error())}
	}

	keys := make([]string, 0, len(te.Context))
	for k := range te.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys)+2)
	attrs = append(attrs, slog.String("err", te.Error()))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, te.Context[k]))
	}
	trace := make([]any, 0, len(te.ErrStack))
	for _, a := range te.ErrStack {
		trace = append(trace, a.Value.String())
	}
	attrs = append(attrs, slog.Any("trace", trace))
	return attrs
}

// GetError пишет ошибку в журнал вместе с данными запроса.
func GetError(c echo.Context, err error) {
	attrs := LogAttrs(err)
	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
	}
	slog.With(attrs...).Error("stack error")
}

func callerAttr(err error) slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.String("trace", "unknown")
	}
	_, file := filepath.Split(path)
	return slog.String("trace", fmt.Sprintf("%s:%d %s", file, no, err.Error()))
}
