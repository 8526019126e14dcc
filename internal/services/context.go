package services

import "context"

// ctxKey scopes the values this package stores on a context.
type ctxKey int

const (
	keyStage ctxKey = iota
	keyRequestID
)

// WithStage tags ctx with the engine stage ("probe", "encode"). A blank
// stage leaves ctx untouched.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, keyStage, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return lookup(ctx, keyStage)
}

// WithRequestID attaches the correlation id shared by every log line and
// history row of one engine run.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, keyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return lookup(ctx, keyRequestID)
}

func withValue(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, _ := ctx.Value(key).(string)
	return value, value != ""
}
