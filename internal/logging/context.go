package logging

import (
	"context"
	"maps"
)

type contextKey string

const contextFieldsKey contextKey = "pagebuilder.logging.fields"

// ContextWithFields layers fields over those already carried by ctx. Loggers
// pick them up through WithContext, so a generator run can tag every entry
// of the document builds it starts.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields carried by ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextFieldsKey).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}
