package contextkeys

import (
	"context"
)

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

// ContextWithTraceID помещает trace_id в контекст
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext извлекает trace_id из контекста.
// Возвращает пустую строку, если trace_id не найден
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

type profileKeyType struct{}

var profileKey = profileKeyType{}

// ContextWithProfileID сохраняет id авторизованного администратора.
func ContextWithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileKey, id)
}

func ProfileIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(profileKey).(string); ok {
		return id
	}
	return ""
}
